package remote

import (
	"fmt"
	"regexp"
)

// shorthandRe matches the org/repo shorthand accepted wherever a remote
// URL is expected.
var shorthandRe = regexp.MustCompile(`^([\w.-]+)/([\w.-]+?)(\.git)?$`)

// urlRe matches ssh and https remote forms.
var urlRe = regexp.MustCompile(`^(git@[\w.-]+:[\w./-]+?(\.git)?|(git\+)?https?://[\w.-]+/[\w./-]+?(\.git)?|ssh://[\w@.:/-]+)$`)

// NormalizeURL turns a remote argument into a usable remote URL.
// Accepted forms: a full ssh/https URL, or org/repo shorthand which is
// expanded to an ssh URL on defaultHost.
func NormalizeURL(arg, defaultHost string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("empty remote URL")
	}
	if urlRe.MatchString(arg) {
		return arg, nil
	}
	if m := shorthandRe.FindStringSubmatch(arg); m != nil {
		if defaultHost == "" {
			defaultHost = "github.com"
		}
		return fmt.Sprintf("git@%s:%s/%s.git", defaultHost, m[1], m[2]), nil
	}
	return "", fmt.Errorf("unrecognized remote format: %s", arg)
}
