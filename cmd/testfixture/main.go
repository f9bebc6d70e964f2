package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/wesm/codexsessions/internal/db"
	"github.com/wesm/codexsessions/internal/testjsonl"
)

type worktreeSpec struct {
	repo     string
	name     string
	branch   string
	sessions int
}

var specs = []worktreeSpec{
	{"project-alpha", "main", "main", 2},
	{"project-alpha", "fix-login", "fix/login", 5},
	{"project-beta", "main", "main", 1},
	{"project-beta", "retry-backoff", "feature/retry", 0},
	{"project-gamma", "main", "main", 12},
}

func main() {
	out := flag.String("out", "", "output directory for the fixture tree")
	flag.Parse()
	if *out == "" {
		fmt.Fprintln(os.Stderr, "usage: testfixture -out <dir>")
		os.Exit(1)
	}

	if err := os.RemoveAll(*out); err != nil {
		log.Fatalf("removing existing fixture: %v", err)
	}
	sessionsDir := filepath.Join(*out, "sessions")
	workDir := filepath.Join(*out, "work")
	dbPath := filepath.Join(*out, "data", "worktrees.db")

	database, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("opening db: %v", err)
	}
	defer database.Close()

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	n := 0
	for _, spec := range specs {
		dir := filepath.Join(workDir, spec.repo, spec.name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("creating %s: %v", dir, err)
		}
		err := database.UpsertWorktree(db.Worktree{
			RepoName:  spec.repo,
			Name:      spec.name,
			Branch:    spec.branch,
			Path:      dir,
			CreatedAt: base,
		})
		if err != nil {
			log.Fatalf("registering %s/%s: %v", spec.repo, spec.name, err)
		}
		for i := range spec.sessions {
			start := base.Add(time.Duration(n) * 7 * time.Hour)
			if err := writeSession(sessionsDir, dir, n, i, start); err != nil {
				log.Fatalf("writing session: %v", err)
			}
			n++
		}
		fmt.Printf("  %s/%s: %d sessions\n", spec.repo, spec.name, spec.sessions)
	}

	// A file that is not a session log must be skipped by queries.
	_, err = testjsonl.WriteSessionFile(
		sessionsDir, base.Format("2006/01/02"), "notes.jsonl",
		`{"type":"note","payload":{}}`+"\n",
	)
	if err != nil {
		log.Fatalf("writing non-session file: %v", err)
	}

	fmt.Printf("Fixture written to %s\n", *out)
	fmt.Printf("  CODEX_SESSIONS_DIR=%s\n", sessionsDir)
	fmt.Printf("  CODEXSESSIONS_DATA_DIR=%s\n", filepath.Dir(dbPath))
}

// writeSession writes one rollout file. Every fourth session has
// no user message so listings exercise the placeholder.
func writeSession(
	sessionsDir, cwd string, n, idx int, start time.Time,
) error {
	id := fmt.Sprintf("fixture-%04d", n)
	b := testjsonl.NewSessionBuilder(id, cwd, start.Format(time.RFC3339))
	if idx%4 != 3 {
		for m := range 3 {
			ts := start.Add(time.Duration(m) * time.Minute).Format(time.RFC3339)
			b.AddUser(ts, generateContent(idx, m))
			b.AddAssistant(ts, "Working on it.")
		}
	}
	name := fmt.Sprintf(
		"rollout-%s-%s.jsonl", start.Format("2006-01-02T15-04-05"), id,
	)
	_, err := testjsonl.WriteSessionFile(
		sessionsDir, start.Format("2006/01/02"), name, b.String(),
	)
	return err
}

func generateContent(session, msg int) string {
	return fmt.Sprintf(
		"Session %d message %d. Please help me understand how the "+
			"retry logic in the HTTP client handles timeouts.",
		session, msg,
	)
}
