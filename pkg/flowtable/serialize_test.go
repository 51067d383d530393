package flowtable

import (
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestSerializeColumnCount(t *testing.T) {
	nodes := []NodeRecord{
		{Num: 1, Kind: KindDecision, Name: "greeting", Message: "Hello, how can I help?", NextNodes: intPtr(2)},
		{Num: 2, Kind: KindAction, Name: "lookup", Command: "http-request", Output: "result", DecisionVariable: "status"},
		{Num: 3, Kind: KindDecision, Name: "with, comma", Message: "line one\nline two"},
	}

	table, _ := Serialize(nodes)
	rows := SplitRows(table)

	if len(rows) != 4 { // header + 3 data rows
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	for i, row := range rows {
		fields := Fields(row)
		if len(fields) != ColumnCount {
			t.Errorf("row %d has %d columns, want %d: %q", i, len(fields), ColumnCount, row)
		}
	}
}

func TestSerializeSkipsMalformedRecords(t *testing.T) {
	nodes := []NodeRecord{
		{Num: 1, Kind: KindDecision, Name: "ok", Message: "hi"},
		{Num: 0, Kind: KindDecision, Name: "no num"},
		{Num: 2, Kind: "", Name: "no kind"},
		{Num: 3, Kind: KindAction, Name: ""},
	}

	table, notes := Serialize(nodes)
	rows := SplitRows(table)

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (header + 1 valid)", len(rows))
	}
	if len(notes) != 3 {
		t.Fatalf("notes = %v, want 3 skip notes", notes)
	}
	for _, n := range notes {
		if !strings.Contains(n, "skipped") {
			t.Errorf("note %q should mention the skip", n)
		}
	}
}

func TestAutoFixDecisionStripping(t *testing.T) {
	// A Decision node accidentally carrying Action-only fields must emit a
	// row with those columns empty, plus logged corrections.
	nodes := []NodeRecord{
		{Num: 105, Kind: KindDecision, Name: "ask", Message: "pick one",
			Command: "X", DecisionVariable: "y"},
	}

	table, notes := Serialize(nodes)
	rows := SplitRows(table)
	fields := Fields(rows[1])

	if fields[13] != "" {
		t.Errorf("Command column = %q, want empty", fields[13])
	}
	if fields[18] != "" {
		t.Errorf("Decision Variable column = %q, want empty", fields[18])
	}
	if len(notes) != 2 {
		t.Errorf("notes = %v, want 2 strip corrections", notes)
	}
}

func TestAutoFixCommandExpectations(t *testing.T) {
	tests := []struct {
		name    string
		node    NodeRecord
		wantVar string
		wantFix bool
	}{
		{
			name:    "set-variable expects success",
			node:    NodeRecord{Num: 10, Kind: KindAction, Name: "set", Command: "set-variable", DecisionVariable: "done"},
			wantVar: "success",
			wantFix: true,
		},
		{
			name:    "mirror command takes its own output",
			node:    NodeRecord{Num: 11, Kind: KindAction, Name: "route", Command: "multi-match-router", Output: "next_node", DecisionVariable: "wrong"},
			wantVar: "next_node",
			wantFix: true,
		},
		{
			name:    "already correct is untouched",
			node:    NodeRecord{Num: 12, Kind: KindAction, Name: "set", Command: "set-variable", DecisionVariable: "success"},
			wantVar: "success",
			wantFix: false,
		},
		{
			name:    "unknown command is left alone",
			node:    NodeRecord{Num: 13, Kind: KindAction, Name: "custom", Command: "frobnicate", DecisionVariable: "whatever"},
			wantVar: "whatever",
			wantFix: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, notes := Serialize([]NodeRecord{tt.node})
			fields := Fields(SplitRows(table)[1])
			if fields[18] != tt.wantVar {
				t.Errorf("Decision Variable = %q, want %q", fields[18], tt.wantVar)
			}
			if tt.wantFix && len(notes) == 0 {
				t.Errorf("expected a correction note, got none")
			}
			if !tt.wantFix && len(notes) != 0 {
				t.Errorf("unexpected notes: %v", notes)
			}
		})
	}
}

func TestAutoFixDeterminism(t *testing.T) {
	node := NodeRecord{Num: 7, Kind: KindAction, Name: "route", Command: "switch", Output: "intent", DecisionVariable: "bad"}

	first, _ := Serialize([]NodeRecord{node})
	second, _ := Serialize([]NodeRecord{node})

	if first != second {
		t.Errorf("serializing the same node twice diverged:\n%s\nvs\n%s", first, second)
	}
}

func TestSerializeEscaping(t *testing.T) {
	nodes := []NodeRecord{
		{Num: 1, Kind: KindDecision, Name: `He said "go"`, Message: "a,b\nc"},
	}

	table, _ := Serialize(nodes)
	row := SplitRows(table)[1]
	fields := Fields(row)

	if fields[2] != `He said "go"` {
		t.Errorf("Name round trip = %q", fields[2])
	}
	if fields[8] != "a,b\nc" {
		t.Errorf("Message round trip = %q", fields[8])
	}
}

func TestSerializeButtonsMiniGrammar(t *testing.T) {
	nodes := []NodeRecord{
		{Num: 1, Kind: KindDecision, Name: "menu", Message: "choose",
			Rich: &Buttons{Items: []Button{{Label: "Sales", Target: 10}, {Label: "Support", Target: 20}}}},
	}

	table, _ := Serialize(nodes)
	fields := Fields(SplitRows(table)[1])

	if fields[9] != AssetButtons {
		t.Errorf("Rich Asset Type = %q", fields[9])
	}
	if fields[10] != "Sales~10|Support~20" {
		t.Errorf("Rich Asset Content = %q", fields[10])
	}
}

func TestSerializeWhatNextMiniGrammar(t *testing.T) {
	nodes := []NodeRecord{
		{Num: 4, Kind: KindAction, Name: "route", Command: "frobnicate",
			WhatNext: []WhatNextCase{
				{Match: "yes", Target: 10},
				{Match: "no", Target: 20},
				{Match: FallbackMatch, Target: 99},
			}},
	}

	table, notes := Serialize(nodes)
	fields := Fields(SplitRows(table)[1])

	if fields[19] != "yes~10|no~20|error~99" {
		t.Errorf("What Next column = %q", fields[19])
	}
	if len(notes) != 0 {
		t.Errorf("unexpected notes: %v", notes)
	}
}

func TestSerializeWhatNextDropsReservedDelimiters(t *testing.T) {
	nodes := []NodeRecord{
		{Num: 5, Kind: KindAction, Name: "route", Command: "frobnicate",
			WhatNext: []WhatNextCase{
				{Match: "a|b", Target: 10},
				{Match: "c~d", Target: 20},
				{Match: "ok", Target: 30},
				{Match: FallbackMatch, Target: 99},
			}},
	}

	table, notes := Serialize(nodes)
	fields := Fields(SplitRows(table)[1])

	if fields[19] != "ok~30|error~99" {
		t.Errorf("What Next column = %q, want the clean cases only", fields[19])
	}
	dropNotes := 0
	for _, n := range notes {
		if strings.Contains(n, "reserved delimiter") {
			dropNotes++
		}
	}
	if dropNotes != 2 {
		t.Errorf("notes = %v, want 2 delimiter drops", notes)
	}
}

func TestSerializeNotesMissingFallbackBranch(t *testing.T) {
	nodes := []NodeRecord{
		{Num: 6, Kind: KindAction, Name: "route", Command: "frobnicate",
			WhatNext: []WhatNextCase{{Match: "yes", Target: 10}}},
	}

	_, notes := Serialize(nodes)

	found := false
	for _, n := range notes {
		if strings.Contains(n, `no "error" branch`) {
			found = true
		}
	}
	if !found {
		t.Errorf("notes = %v, want a missing-fallback note", notes)
	}
}

func TestHeaderShape(t *testing.T) {
	h := Header()
	if got := len(Fields(h)); got != ColumnCount {
		t.Fatalf("header has %d columns, want %d", got, ColumnCount)
	}
	if !strings.HasPrefix(h, HeaderPrefix) {
		t.Fatalf("header %q does not start with HeaderPrefix", h)
	}
}
