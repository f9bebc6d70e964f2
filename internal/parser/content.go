package parser

import (
	"strings"

	"github.com/tidwall/gjson"
)

// extractUserMessage returns the text of a response_item
// payload's content field. Array content joins each item's
// "text" string (or, failing that, its nested "content" string)
// with newlines. Any other content counts only when it is a plain
// string. ok is false when nothing text-shaped was found.
func extractUserMessage(payload gjson.Result) (string, bool) {
	content := payload.Get("content")
	if !content.Exists() {
		return "", false
	}

	if !content.IsArray() {
		if content.Type == gjson.String {
			return content.Str, true
		}
		return "", false
	}

	var segments []string
	content.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		if text := item.Get("text"); text.Type == gjson.String {
			segments = append(segments, text.Str)
		} else if inner := item.Get("content"); inner.Type == gjson.String {
			segments = append(segments, inner.Str)
		}
		return true
	})
	if len(segments) == 0 {
		return "", false
	}
	return strings.Join(segments, "\n"), true
}
