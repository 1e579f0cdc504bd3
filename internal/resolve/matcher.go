// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/servicecmd/servicecmd/pkg/servicedef"

	"github.com/bmatcuk/doublestar/v4"
)

type (
	// Matcher expands glob patterns into the absolute paths of existing files.
	// Malformed patterns yield no matches rather than an error.
	Matcher interface {
		Match(ctx context.Context, patterns []string, depth servicedef.RecursionDepth) ([]string, error)
	}

	// GlobMatcher matches patterns on the local filesystem with doublestar
	// syntax ("**" crosses directories). Relative patterns are anchored at Root,
	// or at the working directory when Root is empty.
	GlobMatcher struct {
		Root string
	}
)

// Match returns every regular file matched by patterns, in pattern order,
// without duplicates. A match is kept only if its directory lies at most
// depth levels below the pattern's static base; Unbounded keeps all.
func (m GlobMatcher) Match(ctx context.Context, patterns []string, depth servicedef.RecursionDepth) ([]string, error) {
	root := m.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		root = wd
	}

	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		abs := filepath.FromSlash(pattern)
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, abs)
		}

		matches, err := doublestar.FilepathGlob(abs, doublestar.WithFilesOnly())
		if err != nil {
			if errors.Is(err, doublestar.ErrBadPattern) {
				continue
			}
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}

		base, _ := doublestar.SplitPattern(filepath.ToSlash(abs))
		for _, match := range matches {
			if !withinDepth(filepath.FromSlash(base), match, depth) {
				continue
			}
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			out = append(out, match)
		}
	}
	return out, nil
}

// withinDepth reports whether the directory of file is at most depth levels
// below base.
func withinDepth(base, file string, depth servicedef.RecursionDepth) bool {
	if depth.IsUnbounded() {
		return true
	}
	return levelsBelow(base, filepath.Dir(file)) <= int(depth)
}

func levelsBelow(base, dir string) int {
	rel, err := filepath.Rel(base, dir)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
