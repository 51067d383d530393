package flowtable

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Serialize converts a batch of records into the canonical 26-column table.
// It never fails: the auto-fix pass normalizes field inconsistencies, and a
// record missing its identity fields (num, kind, name) is skipped, not fatal.
// The returned notes record every correction and skip for diagnostics.
func Serialize(nodes []NodeRecord) (string, []string) {
	var b strings.Builder
	var notes []string

	b.WriteString(Header())
	b.WriteByte('\n')

	for _, n := range nodes {
		if n.Num <= 0 || n.Kind == "" || n.Name == "" {
			notes = append(notes, fmt.Sprintf("node %d: skipped, missing identity fields", n.Num))
			continue
		}

		notes = append(notes, applyAutoFixes(&n)...)

		row, rowNotes := renderRow(&n)
		notes = append(notes, rowNotes...)
		b.WriteString(row)
		b.WriteByte('\n')
	}

	return b.String(), notes
}

func renderRow(n *NodeRecord) (string, []string) {
	var notes []string
	fields := make([]string, ColumnCount)

	fields[0] = strconv.Itoa(n.Num)
	fields[1] = string(n.Kind)
	fields[2] = n.Name
	fields[3] = n.Intent
	fields[4] = n.EntityType
	fields[5] = n.Entity
	fields[6] = renderBool(n.NLUDisabled)
	if n.NextNodes != nil {
		fields[7] = strconv.Itoa(*n.NextNodes)
	}
	fields[8] = n.Message
	if n.Rich != nil {
		content, err := n.Rich.Content()
		if err != nil {
			notes = append(notes, fmt.Sprintf("node %d: dropped rich asset: %v", n.Num, err))
		} else {
			fields[9] = n.Rich.AssetType()
			fields[10] = content
		}
	}
	fields[11] = renderBool(n.AnswerRequired)
	fields[12] = n.Behaviors
	fields[13] = n.Command
	fields[14] = n.Description
	fields[15] = n.Output
	fields[16] = n.Input
	if len(n.ParamInput) > 0 {
		data, err := json.Marshal(n.ParamInput)
		if err == nil {
			fields[17] = string(data)
		}
	}
	fields[18] = n.DecisionVariable
	wn, wnNotes := renderWhatNext(n.Num, n.WhatNext)
	fields[19] = wn
	notes = append(notes, wnNotes...)
	if len(n.WhatNext) > 0 && !n.HasFallback() {
		notes = append(notes, fmt.Sprintf("node %d: what-next routing has no %q branch", n.Num, FallbackMatch))
	}
	fields[20] = n.Tags
	fields[21] = n.Skill
	fields[22] = n.Variable
	fields[23] = n.Platform
	fields[24] = n.Flows
	fields[25] = n.CSSClass

	for i, f := range fields {
		fields[i] = escape(f)
	}
	return strings.Join(fields, string(separator)), notes
}

func renderBool(v bool) string {
	if v {
		return "1"
	}
	return ""
}

// renderWhatNext writes the pipe-delimited match~target grammar. A match
// value carrying a reserved delimiter would shift every case after it, so
// the offending case is dropped with a note, same as a bad rich asset.
func renderWhatNext(num int, cases []WhatNextCase) (string, []string) {
	var notes []string
	parts := make([]string, 0, len(cases))
	for _, c := range cases {
		if strings.ContainsAny(c.Match, "|~") {
			notes = append(notes, fmt.Sprintf("node %d: dropped what-next case %q: match contains a reserved delimiter", num, c.Match))
			continue
		}
		parts = append(parts, c.Match+"~"+strconv.Itoa(c.Target))
	}
	return strings.Join(parts, "|"), notes
}

// escape wraps a value in quotes when it contains the separator, a quote,
// or a line break, doubling interior quotes.
func escape(v string) string {
	if !strings.ContainsAny(v, ",\"\n\r") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
