package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// GlobReader decodes JSON arrays of T from every file matching a glob
// pattern, or from stdin when no pattern is given.
type GlobReader[T any] struct {
	pattern string
	stdin   io.Reader
}

// Flag returns the --from flag bound to this reader.
func (gr *GlobReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "from",
		Aliases:     []string{"f"},
		Usage:       "glob of JSON files to read (reads stdin if not provided)",
		Destination: &gr.pattern,
	}
}

// SetPattern overrides the glob pattern (used by tests and callers that
// do not go through flag parsing).
func (gr *GlobReader[T]) SetPattern(pattern string) {
	gr.pattern = pattern
}

// Read returns the concatenated contents of all matched files in
// lexical path order.
func (gr *GlobReader[T]) Read() ([]T, error) {
	if gr.pattern == "" {
		reader := gr.stdin
		if reader == nil {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				return nil, fmt.Errorf("no input provided (stdin is a terminal); use --from or pipe JSON input")
			}
			reader = os.Stdin
		}
		return decodeArray[T](reader)
	}

	matches, err := doublestar.FilepathGlob(gr.pattern)
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", gr.pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", gr.pattern)
	}
	sort.Strings(matches)

	var out []T
	for _, path := range matches {
		items, err := readFile[T](path)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}

	return out, nil
}

func readFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	items, err := decodeArray[T](f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

func decodeArray[T any](r io.Reader) ([]T, error) {
	var items []T
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return items, nil
}
