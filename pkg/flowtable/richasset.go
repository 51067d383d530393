package flowtable

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RichAsset is a structured UI affordance attached to a Decision node.
// It is a closed set: every variant carries only the fields valid for its
// type, and parsing validates the shape up front instead of duck-typing
// a loose map at render time.
type RichAsset interface {
	// AssetType returns the wire name written to the Rich Asset Type column.
	AssetType() string

	// Content renders the Rich Asset Content column.
	Content() (string, error)

	// DestinationCount counts the routing destinations the asset carries.
	DestinationCount() int
}

const (
	AssetButtons    = "Buttons"
	AssetListPicker = "ListPicker"
	AssetQuickReply = "QuickReply"
	AssetDatePicker = "DatePicker"
	AssetTimePicker = "TimePicker"
	AssetFileUpload = "FileUpload"
	AssetWebview    = "Webview"
	AssetCarousel   = "Carousel"
)

// Button is one entry of a Buttons asset. Labels must not contain the
// pipe or tilde delimiters of the button mini-grammar.
type Button struct {
	Label  string `json:"label"`
	Target int    `json:"target"`
}

type Buttons struct {
	Items []Button `json:"items"`
}

func (b *Buttons) AssetType() string { return AssetButtons }

func (b *Buttons) DestinationCount() int { return len(b.Items) }

// Content renders the pipe-delimited label~destination grammar.
func (b *Buttons) Content() (string, error) {
	parts := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		if strings.ContainsAny(item.Label, "|~") {
			return "", fmt.Errorf("button label %q contains a reserved delimiter", item.Label)
		}
		parts = append(parts, item.Label+"~"+strconv.Itoa(item.Target))
	}
	return strings.Join(parts, "|"), nil
}

type ListItem struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Target int    `json:"target"`
}

type ListPicker struct {
	Title string     `json:"title,omitempty"`
	Items []ListItem `json:"items"`
}

func (l *ListPicker) AssetType() string      { return AssetListPicker }
func (l *ListPicker) DestinationCount() int  { return len(l.Items) }
func (l *ListPicker) Content() (string, error) { return marshalContent(l) }

type QuickReply struct {
	Replies []Button `json:"replies"`
}

func (q *QuickReply) AssetType() string      { return AssetQuickReply }
func (q *QuickReply) DestinationCount() int  { return len(q.Replies) }
func (q *QuickReply) Content() (string, error) { return marshalContent(q) }

type DatePicker struct {
	Prompt string `json:"prompt,omitempty"`
	Target int    `json:"target"`
}

func (d *DatePicker) AssetType() string      { return AssetDatePicker }
func (d *DatePicker) DestinationCount() int  { return 1 }
func (d *DatePicker) Content() (string, error) { return marshalContent(d) }

type TimePicker struct {
	Prompt string `json:"prompt,omitempty"`
	Target int    `json:"target"`
}

func (t *TimePicker) AssetType() string      { return AssetTimePicker }
func (t *TimePicker) DestinationCount() int  { return 1 }
func (t *TimePicker) Content() (string, error) { return marshalContent(t) }

type FileUpload struct {
	Accept []string `json:"accept,omitempty"`
	Target int      `json:"target"`
}

func (f *FileUpload) AssetType() string      { return AssetFileUpload }
func (f *FileUpload) DestinationCount() int  { return 1 }
func (f *FileUpload) Content() (string, error) { return marshalContent(f) }

// Webview is the one asset whose destination is a URL, not a node id.
type Webview struct {
	Title  string `json:"title,omitempty"`
	URL    string `json:"url"`
	Return int    `json:"return"` // node resumed after the webview closes
}

func (w *Webview) AssetType() string      { return AssetWebview }
func (w *Webview) DestinationCount() int  { return 1 }
func (w *Webview) Content() (string, error) { return marshalContent(w) }

type CarouselCard struct {
	Title    string   `json:"title"`
	ImageURL string   `json:"image_url,omitempty"`
	Buttons  []Button `json:"buttons"`
}

type Carousel struct {
	Cards []CarouselCard `json:"cards"`
}

func (c *Carousel) AssetType() string { return AssetCarousel }

func (c *Carousel) DestinationCount() int {
	count := 0
	for _, card := range c.Cards {
		count += len(card.Buttons)
	}
	return count
}

func (c *Carousel) Content() (string, error) { return marshalContent(c) }

func marshalContent(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseRichAsset builds the typed variant for a wire type name and its raw
// content payload. Buttons accept either the mini-grammar string or a JSON
// object; every other type expects its JSON object shape.
func ParseRichAsset(assetType string, raw json.RawMessage) (RichAsset, error) {
	if assetType == "" {
		return nil, nil
	}

	switch assetType {
	case AssetButtons:
		return parseButtons(raw)
	case AssetListPicker:
		var a ListPicker
		return unmarshalAsset(&a, raw)
	case AssetQuickReply:
		var a QuickReply
		return unmarshalAsset(&a, raw)
	case AssetDatePicker:
		var a DatePicker
		return unmarshalAsset(&a, raw)
	case AssetTimePicker:
		var a TimePicker
		return unmarshalAsset(&a, raw)
	case AssetFileUpload:
		var a FileUpload
		return unmarshalAsset(&a, raw)
	case AssetWebview:
		var a Webview
		return unmarshalAsset(&a, raw)
	case AssetCarousel:
		var a Carousel
		return unmarshalAsset(&a, raw)
	default:
		return nil, fmt.Errorf("unknown rich asset type %q", assetType)
	}
}

func unmarshalAsset[T RichAsset](dst T, raw json.RawMessage) (RichAsset, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("rich asset %s: empty content", dst.AssetType())
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("rich asset %s: %w", dst.AssetType(), err)
	}
	return dst, nil
}

func parseButtons(raw json.RawMessage) (RichAsset, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("rich asset Buttons: empty content")
	}

	// JSON object form
	if raw[0] == '{' {
		var b Buttons
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("rich asset Buttons: %w", err)
		}
		return &b, nil
	}

	// Mini-grammar string form: label~dest|label~dest
	var grammar string
	if err := json.Unmarshal(raw, &grammar); err != nil {
		grammar = string(raw)
	}
	b := &Buttons{}
	for _, part := range strings.Split(grammar, "|") {
		if part == "" {
			continue
		}
		label, destStr, ok := strings.Cut(part, "~")
		if !ok {
			return nil, fmt.Errorf("rich asset Buttons: malformed entry %q", part)
		}
		dest, err := strconv.Atoi(strings.TrimSpace(destStr))
		if err != nil {
			return nil, fmt.Errorf("rich asset Buttons: destination of %q is not a node id", label)
		}
		b.Items = append(b.Items, Button{Label: label, Target: dest})
	}
	if len(b.Items) == 0 {
		return nil, fmt.Errorf("rich asset Buttons: no entries")
	}
	return b, nil
}
