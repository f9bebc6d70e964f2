package parser

import (
	"time"
)

// Codex JSONL entry types.
const (
	codexTypeSessionMeta  = "session_meta"
	codexTypeResponseItem = "response_item"
)

// RoleType identifies the role of a message sender.
type RoleType string

const RoleUser RoleType = "user"

// Session summarizes one Codex session log file.
type Session struct {
	// ID is copied verbatim from the session_meta payload.
	ID string
	// Cwd is the working directory as written in the log. It may
	// be relative or point at a directory that no longer exists.
	Cwd string
	// LastTimestamp is the latest of the session start time and
	// every user message timestamp. Zero when none parsed.
	LastTimestamp time.Time
	// LastUserMessage is the last non-blank user message in file
	// order. Empty when the session has none.
	LastUserMessage string
	// Path is the log file the session was read from.
	Path string
}

// HasTimestamp reports whether any timestamp was parsed.
func (s Session) HasTimestamp() bool {
	return !s.LastTimestamp.IsZero()
}

// HasUserMessage reports whether a user message was found.
func (s Session) HasUserMessage() bool {
	return s.LastUserMessage != ""
}

// Order selects the traversal direction of the partition walk.
type Order int

const (
	// Descending yields the most recent partitions and files first.
	Descending Order = iota
	// Ascending yields the oldest partitions and files first.
	Ascending
)

func (o Order) String() string {
	switch o {
	case Descending:
		return "descending"
	case Ascending:
		return "ascending"
	default:
		return "unknown"
	}
}
