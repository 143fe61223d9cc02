package surface

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"
)

// windowsDrivePath matches a token starting with a drive letter, such as C:\
var windowsDrivePath = regexp.MustCompile(`(^|\s)["']?[A-Za-z]:\\`)

// ParseDroppedPaths splits the text a terminal inserts when files are
// dragged onto it. Terminals differ: some quote each path, some escape
// spaces with backslashes, some paste file:// URIs.
func ParseDroppedPaths(text string) ([]string, error) {
	tokens, err := splitShellWords(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("cannot split %q: %w", text, err)
	}

	paths := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "file://") {
			u, err := url.Parse(token)
			if err != nil {
				return nil, fmt.Errorf("invalid file URI %q: %w", token, err)
			}
			token = u.Path
		}
		if token != "" {
			paths = append(paths, token)
		}
	}

	return paths, nil
}

// LooksLikeDrop reports whether pasted text is a dropped path rather than
// typed input
func LooksLikeDrop(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	trimmed = strings.TrimLeft(trimmed, `'"`)
	return strings.HasPrefix(trimmed, "/") ||
		strings.HasPrefix(trimmed, "~/") ||
		strings.HasPrefix(trimmed, "file://") ||
		(len(trimmed) > 2 && trimmed[1] == ':' && (trimmed[2] == '\\' || trimmed[2] == '/'))
}

// splitShellWords splits POSIX shell words. Text holding Windows drive paths
// keeps its backslashes as path separators.
func splitShellWords(text string) ([]string, error) {
	if windowsDrivePath.MatchString(text) {
		text = strings.ReplaceAll(text, `\`, `\\`)
	}
	return shellquote.Split(text)
}

