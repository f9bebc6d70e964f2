// Package render formats Codex sessions and registered worktrees
// for the terminal and as JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/wesm/codexsessions/internal/db"
	"github.com/wesm/codexsessions/internal/parser"
	"github.com/wesm/codexsessions/internal/timeutil"
)

const (
	// PreviewLimit is the byte budget for message previews.
	PreviewLimit = 60
	// ListedSessions is how many sessions text listings show per
	// worktree before summarizing the rest.
	ListedSessions = 3
	// NoUserMessage stands in for sessions without a user message.
	NoUserMessage = "(no user message)"

	createdLayout = "2006-01-02 15:04:05"
)

// Preview shortens msg to at most limit bytes. Longer messages are
// cut on a rune boundary at limit-3 bytes and suffixed with "...".
func Preview(msg string, limit int) string {
	if len(msg) <= limit {
		return msg
	}
	budget := max(limit-3, 0)
	cut := 0
	for cut < len(msg) {
		_, size := utf8.DecodeRuneInString(msg[cut:])
		if cut+size > budget {
			break
		}
		cut += size
	}
	return msg[:cut] + "..."
}

// SessionJSON is the JSON form of a session.
type SessionJSON struct {
	ID              string  `json:"id"`
	Cwd             string  `json:"cwd"`
	Path            string  `json:"path"`
	LastUserMessage *string `json:"last_user_message"`
	LastTimestamp   *string `json:"last_timestamp"`
	TimeAgo         string  `json:"time_ago"`
}

// NewSessionJSON converts s, computing its age relative to now.
func NewSessionJSON(s parser.Session, now time.Time) SessionJSON {
	out := SessionJSON{
		ID:            s.ID,
		Cwd:           s.Cwd,
		Path:          s.Path,
		LastTimestamp: timeutil.Ptr(s.LastTimestamp),
		TimeAgo:       timeutil.Ago(s.LastTimestamp, now),
	}
	if s.HasUserMessage() {
		msg := s.LastUserMessage
		out.LastUserMessage = &msg
	}
	return out
}

// RecentJSON is the JSON form of a recent-sessions query.
type RecentJSON struct {
	Dir      string        `json:"dir"`
	Worktree string        `json:"worktree,omitempty"`
	Total    int           `json:"total"`
	Sessions []SessionJSON `json:"sessions"`
}

// WorktreeJSON is the JSON form of a registered worktree with its
// sessions.
type WorktreeJSON struct {
	Name          string        `json:"name"`
	Branch        string        `json:"branch"`
	Path          string        `json:"path"`
	RepoName      string        `json:"repo_name"`
	CreatedAt     string        `json:"created_at"`
	CodexSessions []SessionJSON `json:"codex_sessions"`
}

// ListJSON wraps the worktree listing.
type ListJSON struct {
	Worktrees []WorktreeJSON `json:"worktrees"`
}

// WorktreeSessions pairs a worktree with the sessions recorded in
// it. Total counts every matching session, which may exceed
// len(Sessions).
type WorktreeSessions struct {
	Worktree db.Worktree
	Sessions []parser.Session
	Total    int
}

func sessionsJSON(ss []parser.Session, now time.Time) []SessionJSON {
	out := make([]SessionJSON, 0, len(ss))
	for _, s := range ss {
		out = append(out, NewSessionJSON(s, now))
	}
	return out
}

// NewRecentJSON builds the JSON payload for a recent query. w is
// the registered worktree at dir, if any.
func NewRecentJSON(
	dir string, w *db.Worktree, ss []parser.Session, total int, now time.Time,
) RecentJSON {
	out := RecentJSON{
		Dir:      dir,
		Total:    total,
		Sessions: sessionsJSON(ss, now),
	}
	if w != nil {
		out.Worktree = w.Key()
	}
	return out
}

// Location names dir in headings, prefixed by its registry key when
// dir is a registered worktree.
func Location(dir string, w *db.Worktree) string {
	if w == nil {
		return dir
	}
	return w.Key() + " (" + dir + ")"
}

// NewListJSON builds the JSON payload for the worktree listing.
func NewListJSON(entries []WorktreeSessions, now time.Time) ListJSON {
	out := ListJSON{Worktrees: make([]WorktreeJSON, 0, len(entries))}
	for _, e := range entries {
		w := e.Worktree
		out.Worktrees = append(out.Worktrees, WorktreeJSON{
			Name:          w.Name,
			Branch:        w.Branch,
			Path:          w.Path,
			RepoName:      w.RepoName,
			CreatedAt:     timeutil.Format(w.CreatedAt),
			CodexSessions: sessionsJSON(e.Sessions, now),
		})
	}
	return out
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type styles struct {
	heading lipgloss.Style
	repo    lipgloss.Style
	name    lipgloss.Style
	bullet  lipgloss.Style
	dim     lipgloss.Style
	id      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		repo:    r.NewStyle().Bold(true),
		name:    r.NewStyle().Foreground(lipgloss.Color("42")),
		bullet:  r.NewStyle().Foreground(lipgloss.Color("42")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("242")),
		id:      r.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// Printer writes human-readable listings. Colors are emitted only
// when the underlying writer is a terminal that supports them.
type Printer struct {
	w   io.Writer
	now func() time.Time
	st  styles
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:   w,
		now: time.Now,
		st:  newStyles(lipgloss.NewRenderer(w)),
	}
}

// WithClock overrides the time source used for age labels.
func (p *Printer) WithClock(now func() time.Time) *Printer {
	p.now = now
	return p
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func messagePreview(s parser.Session) string {
	if !s.HasUserMessage() {
		return NoUserMessage
	}
	return Preview(s.LastUserMessage, PreviewLimit)
}

// Latest prints the details of a single session, or a notice when
// s is nil.
func (p *Printer) Latest(dir string, s *parser.Session) {
	if s == nil {
		p.printf("No Codex sessions for %s\n", dir)
		return
	}
	label := p.st.dim.Render
	p.printf("%s %s\n", p.st.heading.Render("Latest Codex session for"), dir)
	when := timeutil.Ago(s.LastTimestamp, p.now())
	if s.HasTimestamp() {
		when += " (" + timeutil.Format(s.LastTimestamp) + ")"
	}
	p.printf("  %s      %s\n", label("ID:"), p.st.id.Render(s.ID))
	p.printf("  %s %s\n", label("Updated:"), when)
	p.printf("  %s %s\n", label("Message:"), messagePreview(*s))
	p.printf("  %s    %s\n", label("File:"), s.Path)
}

// Sessions prints one line per session, each indented by indent,
// and a trailer when total exceeds the number shown.
func (p *Printer) Sessions(indent string, ss []parser.Session, total int) {
	dash := p.st.dim.Render("-")
	now := p.now()
	for _, s := range ss {
		p.printf("%s%s %s %s\n", indent, dash,
			p.st.dim.Render(timeutil.Ago(s.LastTimestamp, now)),
			p.st.dim.Render(messagePreview(s)),
		)
	}
	if total > len(ss) {
		p.printf("%s%s ... and %d more\n", indent, dash, total-len(ss))
	}
}

// Recent prints the sessions found for dir.
func (p *Printer) Recent(dir string, ss []parser.Session, total int) {
	if total == 0 {
		p.printf("No Codex sessions for %s\n", dir)
		return
	}
	p.printf("%s %d session(s) in %s:\n",
		p.st.heading.Render("Codex:"), total, dir)
	p.Sessions("  ", ss, total)
}

// Worktrees prints registered worktrees grouped by repository. The
// entries must already be ordered by repo name, then name.
func (p *Printer) Worktrees(entries []WorktreeSessions, withSessions bool) {
	if len(entries) == 0 {
		p.printf("No registered worktrees\n")
		return
	}
	p.printf("%s\n\n", p.st.heading.Render("Registered worktrees:"))

	label := p.st.dim.Render
	repo := ""
	for i, e := range entries {
		w := e.Worktree
		if i == 0 || w.RepoName != repo {
			if i > 0 {
				p.printf("\n")
			}
			repo = w.RepoName
			p.printf("  %s\n", p.st.repo.Render(repoLabel(repo)))
		}
		p.printf("    %s %s\n", p.st.bullet.Render("•"), p.st.name.Render(w.Name))
		if w.Branch != "" {
			p.printf("      %s %s\n", label("Branch:"), w.Branch)
		}
		p.printf("      %s %s\n", label("Path:"), w.Path)
		p.printf("      %s %s\n", label("Created:"),
			w.CreatedAt.UTC().Format(createdLayout))
		if withSessions && e.Total > 0 {
			p.printf("      %s %d session(s):\n", label("Codex:"), e.Total)
			p.Sessions("        ", e.Sessions, e.Total)
		}
	}
}

func repoLabel(repo string) string {
	if strings.TrimSpace(repo) == "" {
		return "(no repo)"
	}
	return repo
}
