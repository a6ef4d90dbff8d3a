// Package shell renders activation and deactivation scripts for an
// enclosing shell to eval. akari never mutates the invoking process's
// environment; all side effects belong to the shell that sources the
// output.
package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/akari-env/akari/internal/models"
)

var ErrUnsupportedShell = errors.New("unsupported shell")

// Flavor is a supported shell dialect.
type Flavor string

const (
	Bash  Flavor = "bash"
	Zsh   Flavor = "zsh"
	Posix Flavor = "posix"
)

// ParseFlavor validates a shell name.
func ParseFlavor(name string) (Flavor, error) {
	switch Flavor(strings.ToLower(name)) {
	case Bash:
		return Bash, nil
	case Zsh:
		return Zsh, nil
	case Posix, "":
		return Posix, nil
	default:
		return "", fmt.Errorf("%s (supported: bash, zsh, posix): %w", name, ErrUnsupportedShell)
	}
}

// ActivateScript returns the statements that bring env into the calling
// shell: the environment name and directory are exported and the shim
// bin directory is prepended to PATH, with the previous PATH saved for
// deactivation.
func ActivateScript(env *models.Environment, binDir string, flavor Flavor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "export AKARI_ENV=%s\n", quote(env.Name))
	fmt.Fprintf(&b, "export AKARI_ENV_DIR=%s\n", quote(env.WorkingDirectory))
	b.WriteString("export AKARI_OLD_PATH=\"$PATH\"\n")
	fmt.Fprintf(&b, "export PATH=%s:\"$PATH\"\n", quote(binDir))
	return b.String()
}

// DeactivateScript returns the statements that undo ActivateScript.
// Safe to eval even when nothing is active.
func DeactivateScript(flavor Flavor) string {
	var b strings.Builder
	b.WriteString("if [ -n \"$AKARI_OLD_PATH\" ]; then export PATH=\"$AKARI_OLD_PATH\"; fi\n")
	b.WriteString("unset AKARI_OLD_PATH\n")
	b.WriteString("unset AKARI_ENV\n")
	b.WriteString("unset AKARI_ENV_DIR\n")
	return b.String()
}

// quote single-quotes a value for the shell, escaping embedded quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
