// Package remote reconciles a local snapshot history against the
// environment's bound remote. Sync is fast-forward only: divergence is
// surfaced to the user, never auto-merged.
package remote

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/akari-env/akari/internal/git"
	"github.com/akari-env/akari/internal/models"
	"github.com/akari-env/akari/internal/resolve"
)

var (
	ErrNoRemoteBound        = errors.New("no remote bound to environment")
	ErrRemoteUnreachable    = errors.New("remote unreachable")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrDivergentHistory     = errors.New("local and remote histories have diverged")
)

// Push transmits the snapshot identified by tagName, with any ancestors
// the remote is missing, to the environment's remote. Pushing a tag the
// remote already has is a no-op.
func Push(env *models.Environment, tagName string) error {
	if !env.HasRemote() {
		return fmt.Errorf("%s: %w", env.Name, ErrNoRemoteBound)
	}
	dir := env.WorkingDirectory

	if !git.TagExists(dir, tagName) {
		return fmt.Errorf("%s: %w", tagName, resolve.ErrUnknownTag)
	}
	local, err := git.ResolveCommit(dir, tagName)
	if err != nil {
		return err
	}

	remoteCommit, err := git.LsRemoteTag(dir, env.RemoteURL, tagName)
	if err != nil {
		return classify(err)
	}
	if remoteCommit == local {
		log.Debugf("tag %s already present on %s", tagName, env.RemoteURL)
		return nil
	}
	if remoteCommit != "" {
		return fmt.Errorf("remote tag %s points at %s, local at %s: %w",
			tagName, remoteCommit, local, ErrDivergentHistory)
	}

	if err := git.Push(dir, env.RemoteURL, "refs/tags/"+tagName); err != nil {
		return classify(err)
	}
	log.Infof("pushed %s to %s", tagName, env.RemoteURL)
	return nil
}

// Pull fetches all remote tags and history not already present locally
// and fast-forwards the local head. Local tags are never rewritten or
// deleted. A remote with no ancestor relationship to the local head
// fails before any local ref is touched.
func Pull(env *models.Environment) error {
	if !env.HasRemote() {
		return fmt.Errorf("%s: %w", env.Name, ErrNoRemoteBound)
	}
	dir := env.WorkingDirectory

	remoteHead, err := git.LsRemoteHead(dir, env.RemoteURL)
	if err != nil {
		return classify(err)
	}
	if remoteHead == "" {
		log.Debugf("remote %s is empty, nothing to pull", env.RemoteURL)
		return nil
	}

	localHead, err := git.Head(dir)
	if err != nil {
		return err
	}
	if remoteHead != localHead {
		// Objects only; no local refs move until divergence is ruled out.
		if err := git.FetchCommit(dir, env.RemoteURL); err != nil {
			return classify(err)
		}
		related, err := git.HasCommonAncestor(dir, localHead, remoteHead)
		if err != nil {
			return err
		}
		if !related {
			return fmt.Errorf("remote %s head %s shares no ancestor with local head %s: %w",
				env.RemoteURL, remoteHead, localHead, ErrDivergentHistory)
		}
	}

	if err := git.FetchTags(dir, env.RemoteURL); err != nil {
		if isTagClobber(err) {
			return fmt.Errorf("remote tag conflicts with a local tag: %w", ErrDivergentHistory)
		}
		return classify(err)
	}

	if remoteHead == localHead {
		return nil
	}
	behind, err := git.IsAncestor(dir, remoteHead, localHead)
	if err != nil {
		return err
	}
	if behind {
		// Remote head is already part of local history.
		return nil
	}

	if err := git.MergeFastForward(dir, remoteHead); err != nil {
		return fmt.Errorf("%w: %w", ErrDivergentHistory, err)
	}
	log.Infof("fast-forwarded %s to %s", env.Name, remoteHead)
	return nil
}

// CloneInto clones a remote history into a fresh working directory.
func CloneInto(url, dir string) error {
	if err := git.Clone(url, dir); err != nil {
		return classify(err)
	}
	return nil
}

// classify maps transport-level git failures onto the error taxonomy.
// The subprocess layer embeds git's stderr in the error text, which is
// the only signal the porcelain gives us.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "authentication failed"),
		strings.Contains(msg, "publickey"):
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	case strings.Contains(msg, "could not resolve host"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection timed out"),
		strings.Contains(msg, "could not read from remote"),
		strings.Contains(msg, "no route to host"):
		return fmt.Errorf("%w: %w", ErrRemoteUnreachable, err)
	default:
		return err
	}
}

// isTagClobber detects git refusing to overwrite an existing local tag
// during fetch.
func isTagClobber(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "would clobber existing tag") ||
		strings.Contains(msg, "rejected") && strings.Contains(msg, "refs/tags/")
}
