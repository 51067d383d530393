package flowtable

import (
	"encoding/json"
	"testing"
)

func TestParseRichAssetVariants(t *testing.T) {
	tests := []struct {
		name      string
		assetType string
		raw       string
		wantDest  int
		wantErr   bool
	}{
		{"buttons mini grammar", AssetButtons, `"Yes~5|No~6"`, 2, false},
		{"buttons json", AssetButtons, `{"items":[{"label":"Yes","target":5}]}`, 1, false},
		{"buttons malformed entry", AssetButtons, `"Yes-5"`, 0, true},
		{"list picker", AssetListPicker, `{"title":"Pick","items":[{"label":"A","value":"a","target":3},{"label":"B","value":"b","target":4}]}`, 2, false},
		{"quick reply", AssetQuickReply, `{"replies":[{"label":"OK","target":9}]}`, 1, false},
		{"date picker", AssetDatePicker, `{"prompt":"When?","target":11}`, 1, false},
		{"time picker", AssetTimePicker, `{"target":12}`, 1, false},
		{"file upload", AssetFileUpload, `{"accept":["pdf"],"target":13}`, 1, false},
		{"webview string destination", AssetWebview, `{"url":"https://example.com/form","return":14}`, 1, false},
		{"carousel counts card buttons", AssetCarousel, `{"cards":[{"title":"One","buttons":[{"label":"Go","target":7},{"label":"Back","target":8}]},{"title":"Two","buttons":[{"label":"Go","target":9}]}]}`, 3, false},
		{"unknown type", "Hologram", `{}`, 0, true},
		{"empty content", AssetListPicker, ``, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := ParseRichAsset(tt.assetType, json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %#v", asset)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if asset.AssetType() != tt.assetType {
				t.Errorf("AssetType = %q, want %q", asset.AssetType(), tt.assetType)
			}
			if got := asset.DestinationCount(); got != tt.wantDest {
				t.Errorf("DestinationCount = %d, want %d", got, tt.wantDest)
			}
		})
	}
}

func TestButtonsContentRejectsDelimiterInLabel(t *testing.T) {
	b := &Buttons{Items: []Button{{Label: "a|b", Target: 1}}}
	if _, err := b.Content(); err == nil {
		t.Fatal("expected delimiter error")
	}
}

func TestNodeInputRecord(t *testing.T) {
	in := NodeInput{
		Num:     42,
		Type:    "decision",
		Name:    "menu",
		Message: "choose",
		RichType: AssetButtons,
		RichContent: json.RawMessage(`"Sales~10|Support~20"`),
	}

	rec, err := in.Record()
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.Kind != KindDecision {
		t.Errorf("Kind = %q", rec.Kind)
	}
	if rec.Rich == nil || rec.Rich.DestinationCount() != 2 {
		t.Errorf("Rich = %#v", rec.Rich)
	}
	if rec.OutDegree() != 2 {
		t.Errorf("OutDegree = %d, want 2", rec.OutDegree())
	}
}

func TestNodeInputRecordBadAssetKeepsNode(t *testing.T) {
	in := NodeInput{
		Num:         7,
		Type:        "D",
		Name:        "broken asset",
		RichType:    AssetButtons,
		RichContent: json.RawMessage(`"no-delimiter"`),
	}

	rec, err := in.Record()
	if err == nil {
		t.Fatal("expected error for malformed asset")
	}
	if rec.Num != 7 || rec.Name != "broken asset" {
		t.Errorf("best-effort record lost fields: %#v", rec)
	}
	if rec.Rich != nil {
		t.Errorf("Rich should be nil on parse failure")
	}
}
