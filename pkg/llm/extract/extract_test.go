package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestJSONObjectCascade(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{
			name: "whole response is json",
			raw:  `{"nodes": [1, 2]}`,
			want: `{"nodes": [1, 2]}`,
		},
		{
			name: "fenced block",
			raw:  "Sure, here you go:\n```json\n{\"a\": 1}\n```\nAnything else?",
			want: `{"a": 1}`,
		},
		{
			name: "brace substring",
			raw:  `The result is {"a": {"b": 2}} as requested.`,
			want: `{"a": {"b": 2}}`,
		},
		{
			name:    "truncated payload",
			raw:     `{"nodes": [{"num": 1}, {"num": 2`,
			wantErr: ErrTruncated,
		},
		{
			name:    "no payload at all",
			raw:     "I cannot produce that.",
			wantErr: ErrUnparsable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSONObject(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("JSONObject: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

const header = "Node Number,Node Type,Node Name"

func TestTableExtraction(t *testing.T) {
	table := header + ",Intent\n1,D,greet,\n2,A,do,\n"

	tests := []struct {
		name string
		raw  string
	}{
		{"bare table", table},
		{"commentary around table", "Here is the fixed table:\n\n" + table + "\nLet me know if that helps."},
		{"fenced table", "```\n" + table + "```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Table(tt.raw, header)
			if err != nil {
				t.Fatalf("Table: %v", err)
			}
			if got != table {
				t.Errorf("got %q, want %q", got, table)
			}
		})
	}
}

func TestTableStopsAtNonRow(t *testing.T) {
	raw := header + "\n1,D,a,\n2,A,b,\nThat's all the rows I changed."

	got, err := Table(raw, header)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if strings.Contains(got, "That's all") {
		t.Errorf("trailing commentary leaked into the table: %q", got)
	}
	if !strings.Contains(got, "2,A,b,") {
		t.Errorf("lost a data row: %q", got)
	}
}

func TestTableKeepsQuotedMultilineRows(t *testing.T) {
	raw := header + "\n1,D,\"line one\nline two\",\n2,A,b,\n"

	got, err := Table(raw, header)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if !strings.Contains(got, "line two") {
		t.Errorf("quoted continuation dropped: %q", got)
	}
	if !strings.Contains(got, "2,A,b,") {
		t.Errorf("row after the multiline field dropped: %q", got)
	}
}

func TestTableMissingHeader(t *testing.T) {
	if _, err := Table("no table here", header); !errors.Is(err, ErrUnparsable) {
		t.Fatalf("err = %v, want ErrUnparsable", err)
	}
}

func TestTruncated(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`{"a": 1}`, false},
		{`{"a": [1, 2`, true},
		{`{"a": "brace in string {"}`, false},
		{`[[1], [2]`, true},
		{"plain text", false},
	}
	for _, tt := range tests {
		if got := Truncated(tt.raw); got != tt.want {
			t.Errorf("Truncated(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
