package flowtable

import "fmt"

// commandRule describes the decision variable the compiler expects an Action
// command to declare. Mirror commands route on their own output value, so
// their decision variable must equal the Output field.
type commandRule struct {
	expect        string
	mirrorsOutput bool
}

// commandRules is seeded from observed compiler behavior. It is inherently
// incomplete for unknown commands; additions are data edits, not code changes.
var commandRules = map[string]commandRule{
	"set-variable":       {expect: "success"},
	"unset-variable":     {expect: "success"},
	"invoke-toolkit":     {expect: "success"},
	"http-request":       {expect: "status"},
	"send-email":         {expect: "success"},
	"multi-match-router": {mirrorsOutput: true},
	"switch":             {mirrorsOutput: true},
}

// applyAutoFixes normalizes a record in place before column mapping and
// returns a note per correction. This is defensive normalization, not
// validation: nothing here rejects a record.
func applyAutoFixes(n *NodeRecord) []string {
	var notes []string

	if n.Kind == KindDecision {
		// Generation occasionally leaves Action-only fields on Decision
		// nodes. Strip them instead of failing the batch.
		if n.Command != "" {
			notes = append(notes, fmt.Sprintf("node %d: stripped command %q from decision node", n.Num, n.Command))
			n.Command = ""
		}
		if n.DecisionVariable != "" {
			notes = append(notes, fmt.Sprintf("node %d: stripped decision variable %q from decision node", n.Num, n.DecisionVariable))
			n.DecisionVariable = ""
		}
		if len(n.WhatNext) > 0 {
			notes = append(notes, fmt.Sprintf("node %d: stripped what-next routing from decision node", n.Num))
			n.WhatNext = nil
		}
		if len(n.ParamInput) > 0 {
			notes = append(notes, fmt.Sprintf("node %d: stripped parameter input from decision node", n.Num))
			n.ParamInput = nil
		}
		if n.Output != "" {
			notes = append(notes, fmt.Sprintf("node %d: stripped output %q from decision node", n.Num, n.Output))
			n.Output = ""
		}
		return notes
	}

	if n.Command == "" {
		return notes
	}

	rule, known := commandRules[n.Command]
	if !known {
		return notes
	}

	want := rule.expect
	if rule.mirrorsOutput {
		want = n.Output
	}
	if want != "" && n.DecisionVariable != want {
		notes = append(notes, fmt.Sprintf(
			"node %d: decision variable %q corrected to %q for command %q",
			n.Num, n.DecisionVariable, want, n.Command))
		n.DecisionVariable = want
	}
	return notes
}
