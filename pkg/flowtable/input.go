package flowtable

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NodeInput is the JSON schema node producers (the generation service,
// hand-written plans, the repair loop) emit. Field names mirror the wire
// columns in short form; anything unspecified defaults to empty.
type NodeInput struct {
	Num         int               `json:"num"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Intent      string            `json:"intent,omitempty"`
	EntityType  string            `json:"entityType,omitempty"`
	Entity      string            `json:"entity,omitempty"`
	NLUDisabled bool              `json:"nluDisabled,omitempty"`
	NextNodes   *int              `json:"nextNodes,omitempty"`
	Message     string            `json:"message,omitempty"`
	RichType    string            `json:"richType,omitempty"`
	RichContent json.RawMessage   `json:"richContent,omitempty"`
	AnsReq      bool              `json:"ansReq,omitempty"`
	Behaviors   string            `json:"behaviors,omitempty"`
	Command     string            `json:"command,omitempty"`
	Description string            `json:"description,omitempty"`
	Output      string            `json:"output,omitempty"`
	Input       string            `json:"input,omitempty"`
	ParamInput  map[string]string `json:"paramInput,omitempty"`
	DecVar      string            `json:"decVar,omitempty"`
	WhatNext    []WhatNextCase    `json:"whatNext,omitempty"`
	Tags        string            `json:"tags,omitempty"`
	Skill       string            `json:"skill,omitempty"`
	Variable    string            `json:"variable,omitempty"`
	Platform    string            `json:"platform,omitempty"`
	Flows       string            `json:"flows,omitempty"`
	CSSClass    string            `json:"cssClass,omitempty"`
}

// Record converts the input into a NodeRecord, parsing the rich asset
// payload into its typed variant. On error the returned record is still the
// best-effort conversion (minus the failing piece) so callers can choose to
// keep or drop it.
func (in *NodeInput) Record() (NodeRecord, error) {
	var firstErr error

	kind, err := parseKind(in.Type)
	if err != nil {
		firstErr = fmt.Errorf("node %d: %w", in.Num, err)
	}

	rich, err := ParseRichAsset(in.RichType, in.RichContent)
	if err != nil && firstErr == nil {
		firstErr = fmt.Errorf("node %d: %w", in.Num, err)
	}

	return NodeRecord{
		Num:              in.Num,
		Kind:             kind,
		Name:             in.Name,
		Intent:           in.Intent,
		EntityType:       in.EntityType,
		Entity:           in.Entity,
		NLUDisabled:      in.NLUDisabled,
		NextNodes:        in.NextNodes,
		WhatNext:         in.WhatNext,
		Rich:             rich,
		Message:          in.Message,
		AnswerRequired:   in.AnsReq,
		Command:          in.Command,
		Output:           in.Output,
		Input:            in.Input,
		ParamInput:       in.ParamInput,
		DecisionVariable: in.DecVar,
		Behaviors:        in.Behaviors,
		Description:      in.Description,
		Tags:             in.Tags,
		Skill:            in.Skill,
		Variable:         in.Variable,
		Platform:         in.Platform,
		Flows:            in.Flows,
		CSSClass:         in.CSSClass,
	}, firstErr
}

// Records converts a batch, collecting per-node conversion problems as
// notes instead of failing the batch. A node whose rich asset cannot be
// parsed keeps its other fields and drops the asset; the serializer's
// identity check handles nodes that are unusable beyond that.
func Records(inputs []NodeInput) ([]NodeRecord, []string) {
	records := make([]NodeRecord, 0, len(inputs))
	var notes []string
	for i := range inputs {
		rec, err := inputs[i].Record()
		if err != nil {
			notes = append(notes, err.Error())
		}
		records = append(records, rec)
	}
	return records, notes
}

func parseKind(t string) (NodeKind, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "d", "decision":
		return KindDecision, nil
	case "a", "action":
		return KindAction, nil
	case "":
		return "", nil // caught by the serializer's identity check
	default:
		return "", fmt.Errorf("unknown node type %q", t)
	}
}
