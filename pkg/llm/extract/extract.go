// Package extract pulls structured payloads out of free-form generation
// output. Models that are asked for a JSON object or a table routinely wrap
// it in commentary or code fences, or truncate it mid-stream; callers need
// those two failure modes told apart.
package extract

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrUnparsable means no structured payload could be located at all.
	ErrUnparsable = errors.New("no structured payload found in response")

	// ErrTruncated means a payload was located but its brackets do not
	// balance, which indicates the response was cut off. Callers react
	// differently (shrink the request) than to generic garbage (retry).
	ErrTruncated = errors.New("response appears truncated")
)

// JSONObject runs the extraction cascade for a JSON payload, stopping at the
// first success: whole response, fenced code block, then the substring
// between the first '{' and the last '}'.
func JSONObject(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)

	// 1. The whole response is the object
	if json.Valid([]byte(trimmed)) && len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return json.RawMessage(trimmed), nil
	}

	// 2. Fenced code block
	if block, ok := fencedBlock(trimmed); ok {
		block = strings.TrimSpace(block)
		if json.Valid([]byte(block)) {
			return json.RawMessage(block), nil
		}
	}

	// 3. First '{' .. last '}'
	open := strings.IndexByte(trimmed, '{')
	closing := strings.LastIndexByte(trimmed, '}')
	if open >= 0 && closing > open {
		candidate := trimmed[open : closing+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}

	// 4. Fail explicitly, distinguishing truncation
	if Truncated(trimmed) {
		return nil, ErrTruncated
	}
	return nil, ErrUnparsable
}

// Table locates a tabular block by its header inside free-form output and
// returns the header plus every following line that still resembles a table
// row. The haystack is scanned after fences are stripped so fenced tables
// work too.
func Table(raw, headerPrefix string) (string, error) {
	text := strings.TrimSpace(raw)
	if block, ok := fencedBlock(text); ok {
		if strings.Contains(block, headerPrefix) {
			text = block
		}
	}

	idx := strings.Index(text, headerPrefix)
	if idx < 0 {
		if Truncated(text) {
			return "", ErrTruncated
		}
		return "", ErrUnparsable
	}

	var rows []string
	lines := strings.Split(text[idx:], "\n")
	rows = append(rows, strings.TrimRight(lines[0], "\r"))

	inQuotes := recountQuotes(rows)
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if !inQuotes && !looksLikeRow(line) {
			break
		}
		// either a fresh row or the continuation of a quoted multiline field
		rows = append(rows, line)
		inQuotes = recountQuotes(rows)
	}

	return strings.Join(rows, "\n") + "\n", nil
}

// Truncated reports whether open brackets/braces outnumber closing ones,
// the signature of a response cut off by a token budget.
func Truncated(s string) bool {
	braces, brackets := 0, 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				braces++
			}
		case '}':
			if !inString {
				braces--
			}
		case '[':
			if !inString {
				brackets++
			}
		case ']':
			if !inString {
				brackets--
			}
		}
	}
	return braces > 0 || brackets > 0
}

func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	// skip the language tag line
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		// unterminated fence: take everything after the opener
		return rest, true
	}
	return rest[:end], true
}

// looksLikeRow accepts data rows (leading node number), comment-marked
// context rows, and rows whose first field is quoted.
func looksLikeRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "#") {
		return true
	}
	if trimmed[0] == '"' {
		return true
	}
	comma := strings.IndexByte(trimmed, ',')
	first := trimmed
	if comma >= 0 {
		first = trimmed[:comma]
	}
	for _, r := range first {
		if r < '0' || r > '9' {
			return false
		}
	}
	return first != ""
}

func recountQuotes(rows []string) bool {
	count := 0
	for _, r := range rows {
		count += strings.Count(r, `"`)
	}
	return count%2 == 1
}
