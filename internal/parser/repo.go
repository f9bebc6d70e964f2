package parser

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Repo describes the git checkout containing a directory.
type Repo struct {
	// Root is the main repository directory. For a linked
	// worktree this is the repository the worktree belongs to,
	// not the worktree itself. Empty outside a repository.
	Root string
	// Name is the repository name used to group worktrees.
	Name string
	// Branch is the branch checked out in the directory's
	// worktree, or empty when detached or unknown.
	Branch string
}

// DetectRepo inspects the .git metadata above dir. Outside a
// repository the name falls back to the directory's base name
// with a trailing branch suffix (as in "app-feature-x") removed.
func DetectRepo(dir, branchHint string) Repo {
	if dir == "" {
		return Repo{}
	}
	cleaned := filepath.Clean(dir)
	if root, gitDir := findGitRepoRoot(cleaned); root != "" {
		repo := Repo{Root: root, Branch: readHeadBranch(gitDir)}
		if name := filepath.Base(root); !isInvalidPathBase(name) {
			repo.Name = name
		}
		return repo
	}

	name := filepath.Base(cleaned)
	if isInvalidPathBase(name) {
		return Repo{Branch: branchHint}
	}
	name = trimBranchSuffix(name, branchHint)
	if isInvalidPathBase(name) {
		name = ""
	}
	return Repo{Name: name, Branch: branchHint}
}

func isInvalidPathBase(name string) bool {
	if name == "" || name == "." || name == ".." ||
		name == string(filepath.Separator) {
		return true
	}
	return strings.ContainsAny(name, "/\\")
}

// findGitRepoRoot walks upward from dir to the enclosing
// repository. It returns the main repository root and the git
// directory of the checkout containing dir, which differs from
// root/.git for linked worktrees.
func findGitRepoRoot(dir string) (root, gitDir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		gitPath := filepath.Join(dir, ".git")
		info, err := os.Stat(gitPath)
		if err == nil {
			if info.IsDir() {
				return dir, gitPath
			}
			if info.Mode().IsRegular() {
				return repoRootFromGitFile(dir, gitPath)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ""
		}
		dir = parent
	}
}

// repoRootFromGitFile resolves a ".git" file written by
// "git worktree add" or a submodule checkout.
func repoRootFromGitFile(
	checkoutDir, gitFilePath string,
) (root, gitDir string) {
	gitDir = readGitDirFromFile(gitFilePath)
	if gitDir == "" {
		return checkoutDir, ""
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Clean(
			filepath.Join(filepath.Dir(gitFilePath), gitDir),
		)
	}

	if common := readCommonDir(gitDir); common != "" &&
		filepath.Base(common) == ".git" {
		return filepath.Dir(common), gitDir
	}

	marker := string(filepath.Separator) + ".git" +
		string(filepath.Separator) + "worktrees" +
		string(filepath.Separator)
	if r, _, found := strings.Cut(gitDir, marker); found && r != "" {
		return filepath.Clean(r), gitDir
	}
	return checkoutDir, gitDir
}

func readGitDirFromFile(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for line := range strings.SplitSeq(string(b), "\n") {
		line = strings.TrimSpace(line)
		const prefix = "gitdir:"
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return ""
}

func readCommonDir(gitDir string) string {
	b, err := os.ReadFile(filepath.Join(gitDir, "commondir"))
	if err != nil {
		return ""
	}
	value := strings.TrimSpace(string(b))
	if value == "" {
		return ""
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Clean(filepath.Join(gitDir, value))
}

// readHeadBranch returns the branch named by gitDir/HEAD, or ""
// for a detached HEAD.
func readHeadBranch(gitDir string) string {
	if gitDir == "" {
		return ""
	}
	b, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return ""
	}
	ref, ok := strings.CutPrefix(strings.TrimSpace(string(b)), "ref:")
	if !ok {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(ref), "refs/heads/")
}

func trimBranchSuffix(name, branch string) string {
	branch = strings.TrimSpace(branch)
	if name == "" || branch == "" {
		return name
	}
	token := normalizeBranchToken(strings.TrimPrefix(branch, "refs/heads/"))
	if token == "" || isDefaultBranchToken(token) {
		return name
	}

	for _, sep := range []string{"-", "_"} {
		if rest, ok := cutSuffixFold(name, sep+token); ok {
			if base := strings.TrimRight(rest, "-_"); base != "" {
				return base
			}
		}
	}
	return name
}

// cutSuffixFold removes suffix from name, comparing runes from the
// end after lowercasing each. The cut always lands on a rune
// boundary of name.
func cutSuffixFold(name, suffix string) (string, bool) {
	i, j := len(name), len(suffix)
	for j > 0 {
		if i == 0 {
			return name, false
		}
		nr, nsize := utf8.DecodeLastRuneInString(name[:i])
		sr, ssize := utf8.DecodeLastRuneInString(suffix[:j])
		if unicode.ToLower(nr) != unicode.ToLower(sr) {
			return name, false
		}
		i -= nsize
		j -= ssize
	}
	return name[:i], true
}

// normalizeBranchToken lowercases branch and collapses every run
// of separators or punctuation into one dash.
func normalizeBranchToken(branch string) string {
	var b strings.Builder
	b.Grow(len(branch))

	lastDash := false
	for _, r := range branch {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func isDefaultBranchToken(branch string) bool {
	switch branch {
	case "main", "master", "trunk", "develop", "dev":
		return true
	}
	return false
}
