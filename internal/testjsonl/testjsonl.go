// Package testjsonl provides shared JSONL fixture builders for
// Codex session test data. Used by the parser, sessions and CLI
// test packages.
package testjsonl

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// SessionMetaJSON returns a Codex session_meta record. Empty cwd
// and timestamp are omitted from the payload.
func SessionMetaJSON(id, cwd, timestamp string) string {
	payload := map[string]any{"id": id}
	if cwd != "" {
		payload["cwd"] = cwd
	}
	if timestamp != "" {
		payload["timestamp"] = timestamp
	}
	return mustMarshal(map[string]any{
		"type":    "session_meta",
		"payload": payload,
	})
}

// SessionMetaPayloadJSON returns a session_meta record with an
// arbitrary payload value.
func SessionMetaPayloadJSON(payload any) string {
	return mustMarshal(map[string]any{
		"type":    "session_meta",
		"payload": payload,
	})
}

// UserMsgJSON returns a user message response_item whose content
// is a single input_text segment.
func UserMsgJSON(text, timestamp string) string {
	return UserContentJSON(
		[]map[string]string{
			{"type": "input_text", "text": text},
		},
		timestamp,
	)
}

// UserContentJSON returns a user message response_item with the
// given content value (string, array of segments, or anything
// else). An empty timestamp is omitted.
func UserContentJSON(content any, timestamp string) string {
	return ResponseItemJSON("user", "message", content, timestamp)
}

// AssistantMsgJSON returns an assistant message response_item.
func AssistantMsgJSON(text, timestamp string) string {
	return ResponseItemJSON(
		"assistant", "message",
		[]map[string]string{
			{"type": "output_text", "text": text},
		},
		timestamp,
	)
}

// ResponseItemJSON returns a response_item record with the given
// payload role, payload type and content.
func ResponseItemJSON(
	role, payloadType string, content any, timestamp string,
) string {
	m := map[string]any{
		"type": "response_item",
		"payload": map[string]any{
			"role":    role,
			"type":    payloadType,
			"content": content,
		},
	}
	if timestamp != "" {
		m["timestamp"] = timestamp
	}
	return mustMarshal(m)
}

// JoinJSONL joins JSON lines with newlines and appends a
// trailing newline.
func JoinJSONL(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// SessionBuilder constructs JSONL session content using a
// fluent API.
type SessionBuilder struct {
	lines []string
}

// NewSessionBuilder returns a builder whose first line is a
// session_meta record.
func NewSessionBuilder(id, cwd, timestamp string) *SessionBuilder {
	return &SessionBuilder{
		lines: []string{SessionMetaJSON(id, cwd, timestamp)},
	}
}

// AddUser appends a user message line.
func (b *SessionBuilder) AddUser(
	timestamp, text string,
) *SessionBuilder {
	b.lines = append(b.lines, UserMsgJSON(text, timestamp))
	return b
}

// AddAssistant appends an assistant message line.
func (b *SessionBuilder) AddAssistant(
	timestamp, text string,
) *SessionBuilder {
	b.lines = append(b.lines, AssistantMsgJSON(text, timestamp))
	return b
}

// AddRaw appends a raw line verbatim.
func (b *SessionBuilder) AddRaw(line string) *SessionBuilder {
	b.lines = append(b.lines, line)
	return b
}

// String returns the JSONL content.
func (b *SessionBuilder) String() string {
	return JoinJSONL(b.lines...)
}

// WriteSessionFile writes content to root/<date>/<name>, where
// date is a slash-separated "YYYY/MM/DD" partition, creating
// directories as needed. It returns the file path.
func WriteSessionFile(root, date, name, content string) (string, error) {
	dir := filepath.Join(root, filepath.FromSlash(date))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func mustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
