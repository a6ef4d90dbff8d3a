// Package git wraps the git subprocess invocations that back akari's
// snapshot histories. Every function is scoped to an explicit working
// directory; nothing here touches the process-wide cwd.
package git

import (
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Tag is one tag ref in a history, peeled to the commit it labels.
type Tag struct {
	Name    string
	Commit  string
	Message string
}

func run(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return nil
}

func output(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		detail := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), detail, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo checks whether dir is inside a git repository.
func IsRepo(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// Init initializes a repository with an initial branch named main.
func Init(dir string) error {
	if err := run(dir, "init", "-q", "-b", "main"); err != nil {
		return fmt.Errorf("failed to init repository: %w", err)
	}
	return nil
}

// SetConfig sets a repository-local config value.
func SetConfig(dir, key, value string) error {
	if err := run(dir, "config", key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// HasCommits reports whether the repository has at least one commit.
func HasCommits(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--verify", "-q", "HEAD")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// Head returns the commit hash at the current tip of history.
func Head(dir string) (string, error) {
	hash, err := output(dir, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return hash, nil
}

// AddAll stages the full state of the working directory, including
// untracked files.
func AddAll(dir string) error {
	if err := run(dir, "add", "-A", "."); err != nil {
		return fmt.Errorf("failed to stage directory state: %w", err)
	}
	return nil
}

// Commit records the staged state as a new history entry. Empty commits
// are allowed so that a tag always lands on its own history position.
func Commit(dir, message string) error {
	if err := run(dir, "commit", "-q", "--no-verify", "--allow-empty", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// TagExists checks whether a tag name is already used in the history.
func TagExists(dir, name string) bool {
	cmd := exec.Command("git", "rev-parse", "--verify", "-q", "refs/tags/"+name)
	cmd.Dir = dir
	return cmd.Run() == nil
}

// CreateTag creates an annotated tag at the current head.
func CreateTag(dir, name, message string) error {
	if message == "" {
		message = name
	}
	if err := run(dir, "tag", "-a", "-m", message, name); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return nil
}

// ListTags returns every tag in the history, peeled to its commit.
func ListTags(dir string) ([]Tag, error) {
	format := "%(refname:short)%00%(objectname)%00%(*objectname)%00%(contents:subject)"
	out, err := output(dir, "for-each-ref", "--format="+format, "refs/tags")
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	var tags []Tag
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\x00")
		if len(fields) != 4 {
			log.Warnf("skipping unparseable tag ref line: %q", line)
			continue
		}
		commit := fields[2] // peeled commit for annotated tags
		if commit == "" {
			commit = fields[1] // lightweight tag points at the commit directly
		}
		tags = append(tags, Tag{Name: fields[0], Commit: commit, Message: fields[3]})
	}
	return tags, nil
}

// ResolveCommit resolves any ref (tag, hash, HEAD) to a commit hash.
func ResolveCommit(dir, ref string) (string, error) {
	hash, err := output(dir, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", ref, err)
	}
	return hash, nil
}

// RevListParents returns the ancestry of ref as parsed rev-list
// --parents lines: each entry is a commit hash followed by its parents.
func RevListParents(dir, ref string) ([][]string, error) {
	out, err := output(dir, "rev-list", "--parents", ref)
	if err != nil {
		return nil, fmt.Errorf("failed to walk history of %s: %w", ref, err)
	}

	var entries [][]string
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		entries = append(entries, strings.Fields(line))
	}
	return entries, nil
}

// IsAncestor reports whether ancestor is reachable from descendant.
func IsAncestor(dir, ancestor, descendant string) (bool, error) {
	cmd := exec.Command("git", "merge-base", "--is-ancestor", ancestor, descendant)
	cmd.Dir = dir
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("failed to check ancestry of %s and %s: %w", ancestor, descendant, err)
}

// HasCommonAncestor reports whether two commits share any ancestor.
func HasCommonAncestor(dir, a, b string) (bool, error) {
	cmd := exec.Command("git", "merge-base", a, b)
	cmd.Dir = dir
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("failed to find merge base of %s and %s: %w", a, b, err)
}

// CheckoutDetach force-checks-out a commit, replacing tracked contents.
func CheckoutDetach(dir, commit string) error {
	if err := run(dir, "checkout", "-q", "-f", "--detach", commit); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", commit, err)
	}
	return nil
}

// CleanUntracked removes untracked files and directories, keeping any
// excluded patterns in place.
func CleanUntracked(dir string, exclude ...string) error {
	args := []string{"clean", "-f", "-d", "-q"}
	for _, pattern := range exclude {
		args = append(args, "-e", pattern)
	}
	if err := run(dir, args...); err != nil {
		return fmt.Errorf("failed to remove untracked files: %w", err)
	}
	return nil
}

// HasUncommittedChanges checks for any difference between the working
// directory and the current head.
func HasUncommittedChanges(dir string) (bool, error) {
	out, err := output(dir, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to check status: %w", err)
	}
	return out != "", nil
}

// Clone clones url into dir. Authentication is whatever the ambient git
// transport provides (ssh-agent for ssh URLs).
func Clone(url, dir string) error {
	cmd := exec.Command("git", "clone", "-q", url, dir)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to clone %s: %s: %w", url, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// FetchCommit fetches the objects for the remote's HEAD without
// creating any local refs beyond FETCH_HEAD.
func FetchCommit(dir, url string) error {
	if err := run(dir, "fetch", "-q", url, "HEAD"); err != nil {
		return fmt.Errorf("failed to fetch from %s: %w", url, err)
	}
	return nil
}

// FetchTags fetches every remote tag. Without --force this refuses to
// clobber a local tag that points elsewhere.
func FetchTags(dir, url string) error {
	if err := run(dir, "fetch", "-q", "--no-tags", url, "refs/tags/*:refs/tags/*"); err != nil {
		return fmt.Errorf("failed to fetch tags from %s: %w", url, err)
	}
	return nil
}

// Push pushes the given refspecs to url.
func Push(dir, url string, refspecs ...string) error {
	args := append([]string{"push", "-q", url}, refspecs...)
	if err := run(dir, args...); err != nil {
		return fmt.Errorf("failed to push to %s: %w", url, err)
	}
	return nil
}

// LsRemoteHead returns the commit the remote's HEAD points at, or empty
// when the remote has no commits yet.
func LsRemoteHead(dir, url string) (string, error) {
	out, err := output(dir, "ls-remote", url, "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to contact remote %s: %w", url, err)
	}
	if out == "" {
		return "", nil
	}
	return strings.Fields(out)[0], nil
}

// LsRemoteTag returns the commit a remote tag labels, peeled for
// annotated tags, or empty when the remote has no such tag.
func LsRemoteTag(dir, url, tag string) (string, error) {
	out, err := output(dir, "ls-remote", "--tags", url, "refs/tags/"+tag, "refs/tags/"+tag+"^{}")
	if err != nil {
		return "", fmt.Errorf("failed to contact remote %s: %w", url, err)
	}

	commit := ""
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		// The peeled ^{} line wins: it is the tagged commit itself.
		if strings.HasSuffix(fields[1], "^{}") {
			return fields[0], nil
		}
		commit = fields[0]
	}
	return commit, nil
}

// MergeFastForward fast-forwards the current head to commit. Fails if
// the move is not a fast-forward.
func MergeFastForward(dir, commit string) error {
	if err := run(dir, "merge", "-q", "--ff-only", commit); err != nil {
		return fmt.Errorf("failed to fast-forward to %s: %w", commit, err)
	}
	return nil
}
