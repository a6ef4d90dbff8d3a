// Package resolve maps symbolic references to concrete history
// references. The reserved name "latest" resolves by ancestry order,
// never by wall-clock time or tag name.
package resolve

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/akari-env/akari/internal/git"
)

var (
	ErrUnknownTag      = errors.New("unknown tag")
	ErrAmbiguousLatest = errors.New("latest is ambiguous")
)

// Latest is the reserved symbolic reference for the most recent tagged
// snapshot reachable from the history head.
const Latest = "latest"

// Ref resolves a symbolic reference to a commit hash. A literal tag
// name resolves directly; Latest walks the history backward from head
// and returns the first tagged position. Two tags at equal ancestry
// distance on divergent parents are an error, not a guess.
func Ref(dir, symbolic string) (string, error) {
	if symbolic != Latest {
		if !git.TagExists(dir, symbolic) {
			return "", fmt.Errorf("%s: %w", symbolic, ErrUnknownTag)
		}
		return git.ResolveCommit(dir, symbolic)
	}
	return latest(dir)
}

// latest finds the tagged commit closest to head in ancestry distance.
func latest(dir string) (string, error) {
	tags, err := git.ListTags(dir)
	if err != nil {
		return "", err
	}
	tagged := make(map[string][]string, len(tags))
	for _, tag := range tags {
		tagged[tag.Commit] = append(tagged[tag.Commit], tag.Name)
	}

	head, err := git.Head(dir)
	if err != nil {
		return "", err
	}

	entries, err := git.RevListParents(dir, "HEAD")
	if err != nil {
		return "", err
	}
	parents := make(map[string][]string, len(entries))
	for _, fields := range entries {
		parents[fields[0]] = fields[1:]
	}

	// Breadth-first walk from head: the first level that carries any
	// tag decides, and more than one tagged commit on that level means
	// two divergent branches are equally close.
	visited := map[string]bool{head: true}
	level := []string{head}
	for len(level) > 0 {
		var hits []string
		for _, commit := range level {
			if names := tagged[commit]; len(names) > 0 {
				hits = append(hits, commit)
			}
		}
		if len(hits) == 1 {
			log.Debugf("latest in %s resolved to %s (%v)", dir, hits[0], tagged[hits[0]])
			return hits[0], nil
		}
		if len(hits) > 1 {
			return "", fmt.Errorf("equally recent tags %v and %v: %w",
				tagged[hits[0]], tagged[hits[1]], ErrAmbiguousLatest)
		}

		var next []string
		for _, commit := range level {
			for _, parent := range parents[commit] {
				if !visited[parent] {
					visited[parent] = true
					next = append(next, parent)
				}
			}
		}
		level = next
	}

	return "", fmt.Errorf("no tagged snapshot reachable from head: %w", ErrUnknownTag)
}
