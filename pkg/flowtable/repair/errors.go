package repair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValidationError is the single internal shape every compiler error payload
// is normalized into before the engine touches it.
type ValidationError struct {
	TargetNodeID int    `json:"node_num"`
	Category     string `json:"category"`
	Field        string `json:"field,omitempty"`
	Message      string `json:"message"`
}

// Describe formats one error the way the repair prompt (and the StillBroken
// list) presents it: node <id>: [<category>/<field>] <message>.
func (e ValidationError) Describe() string {
	tag := e.Category
	if e.Field != "" {
		tag = e.Category + "/" + e.Field
	}
	return fmt.Sprintf("node %d: [%s] %s", e.TargetNodeID, tag, e.Message)
}

// nodeErrorTuple is the structured shape the compiler emits:
// { node_num, err_msgs: [[category, field, message], ...] }.
// err_msgs entries also show up as plain strings or short arrays.
type nodeErrorTuple struct {
	NodeNum int               `json:"node_num"`
	ErrMsgs []json.RawMessage `json:"err_msgs"`
}

var nodeRefPattern = regexp.MustCompile(`(?i)\bnode\s+#?(\d+)`)

// NormalizeErrors accepts every observed compiler error payload shape (an
// array of node/err_msgs tuples, or a flat array of strings) and returns
// the uniform internal representation. Unknown shapes fail loudly rather
// than silently repairing the wrong rows.
func NormalizeErrors(raw json.RawMessage) ([]ValidationError, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" {
		return nil, nil
	}

	// Shape 1: array of {node_num, err_msgs} tuples
	var tuples []nodeErrorTuple
	if err := json.Unmarshal(raw, &tuples); err == nil && len(tuples) > 0 && hasTupleShape(raw) {
		return fromTuples(tuples)
	}

	// Shape 2: flat array of strings
	var flat []string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return fromStrings(flat), nil
	}

	return nil, fmt.Errorf("unrecognized validation error payload: %s", snippet(trimmed))
}

func hasTupleShape(raw json.RawMessage) bool {
	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	for _, m := range probe {
		if _, ok := m["node_num"]; !ok {
			return false
		}
	}
	return len(probe) > 0
}

func fromTuples(tuples []nodeErrorTuple) ([]ValidationError, error) {
	var out []ValidationError
	for _, t := range tuples {
		if len(t.ErrMsgs) == 0 {
			out = append(out, ValidationError{TargetNodeID: t.NodeNum, Category: "general", Message: "validation failed"})
			continue
		}
		for _, rawMsg := range t.ErrMsgs {
			ve, err := parseErrMsg(t.NodeNum, rawMsg)
			if err != nil {
				return nil, err
			}
			out = append(out, ve)
		}
	}
	return out, nil
}

// parseErrMsg handles the inner err_msgs entry variants:
// [category, field, message], [category, message], ["message"], "message".
func parseErrMsg(nodeNum int, raw json.RawMessage) (ValidationError, error) {
	var parts []string
	if err := json.Unmarshal(raw, &parts); err == nil {
		switch len(parts) {
		case 0:
			return ValidationError{TargetNodeID: nodeNum, Category: "general", Message: "validation failed"}, nil
		case 1:
			return ValidationError{TargetNodeID: nodeNum, Category: "general", Message: parts[0]}, nil
		case 2:
			return ValidationError{TargetNodeID: nodeNum, Category: parts[0], Message: parts[1]}, nil
		default:
			return ValidationError{TargetNodeID: nodeNum, Category: parts[0], Field: parts[1], Message: strings.Join(parts[2:], " ")}, nil
		}
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return ValidationError{TargetNodeID: nodeNum, Category: "general", Message: msg}, nil
	}

	return ValidationError{}, fmt.Errorf("unrecognized err_msgs entry for node %d: %s", nodeNum, snippet(string(raw)))
}

func fromStrings(lines []string) []ValidationError {
	out := make([]ValidationError, 0, len(lines))
	for _, line := range lines {
		ve := ValidationError{Category: "general", Message: line}
		if m := nodeRefPattern.FindStringSubmatch(line); m != nil {
			if num, err := strconv.Atoi(m[1]); err == nil {
				ve.TargetNodeID = num
			}
		}
		out = append(out, ve)
	}
	return out
}

func snippet(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
