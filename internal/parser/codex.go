package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// codexSessionBuilder folds response_item lines into a running
// summary after the session_meta line has been accepted.
type codexSessionBuilder struct {
	path            string
	lastTimestamp   time.Time
	lastUserMessage string
}

func newCodexSessionBuilder(
	path string, startedAt time.Time,
) *codexSessionBuilder {
	return &codexSessionBuilder{
		path:          path,
		lastTimestamp: startedAt,
	}
}

// processLine handles a single line after the metadata line.
// Lines that are not valid JSON are skipped.
func (b *codexSessionBuilder) processLine(lineNo int, line string) {
	if !gjson.Valid(line) {
		log.Debug().
			Str("path", b.path).
			Int("line", lineNo).
			Msg("skipping malformed codex line")
		return
	}
	if gjson.Get(line, "type").Str != codexTypeResponseItem {
		return
	}

	payload := gjson.Get(line, "payload")
	if !payload.IsObject() {
		return
	}
	b.handleResponseItem(payload, gjson.Get(line, "timestamp"))
}

func (b *codexSessionBuilder) handleResponseItem(
	payload, tsField gjson.Result,
) {
	if payload.Get("role").Str != string(RoleUser) ||
		payload.Get("type").Str != "message" {
		return
	}

	if ts, ok := parseTimestampField(tsField); ok &&
		ts.After(b.lastTimestamp) {
		b.lastTimestamp = ts
	}

	// Later lines always win, even when their timestamp did not
	// advance lastTimestamp.
	if msg, ok := extractUserMessage(payload); ok &&
		strings.TrimSpace(msg) != "" {
		b.lastUserMessage = msg
	}
}

// ParseCodexSession parses a Codex JSONL session file. It
// returns a nil session without error when the file is empty or
// its first record is not session_meta. A first line that is not
// valid JSON, or a session_meta without a string id, is an
// error. Malformed lines after the first are skipped.
func ParseCodexSession(path string) (*Session, error) {
	f, err := openNoFollow(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	lr := newLineReader(f, maxLineSize)

	first, oversized, ok := lr.next()
	if !ok {
		if err := lr.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return nil, nil
	}
	if oversized {
		return nil, fmt.Errorf(
			"parsing session meta in %s: line exceeds %d bytes",
			path, maxLineSize,
		)
	}
	if !gjson.Valid(first) {
		return nil, fmt.Errorf(
			"parsing session meta in %s: invalid JSON", path,
		)
	}

	if gjson.Get(first, "type").Str != codexTypeSessionMeta {
		return nil, nil
	}

	payload := gjson.Get(first, "payload")
	if !payload.IsObject() {
		return nil, fmt.Errorf(
			"session payload is missing in %s", path,
		)
	}
	id := payload.Get("id")
	if id.Type != gjson.String {
		return nil, fmt.Errorf("session id missing in %s", path)
	}

	startedAt, _ := parseTimestampField(payload.Get("timestamp"))
	b := newCodexSessionBuilder(path, startedAt)

	lineNo := 1
	for {
		line, oversized, ok := lr.next()
		if !ok {
			break
		}
		lineNo++
		if oversized {
			log.Debug().
				Str("path", path).
				Int("line", lineNo).
				Msg("skipping oversized codex line")
			continue
		}
		b.processLine(lineNo, line)
	}
	if err := lr.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &Session{
		ID:              id.Str,
		Cwd:             payload.Get("cwd").Str,
		LastTimestamp:   b.lastTimestamp,
		LastUserMessage: b.lastUserMessage,
		Path:            path,
	}, nil
}

// parseTimestampField parses an RFC 3339 string field. Missing,
// non-string, and unparsable values all report ok=false.
func parseTimestampField(v gjson.Result) (time.Time, bool) {
	if v.Type != gjson.String {
		return time.Time{}, false
	}
	return parseTimestamp(v.Str)
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		log.Debug().Str("timestamp", s).Msg("unparsable timestamp")
		return time.Time{}, false
	}
	return t.UTC(), true
}
