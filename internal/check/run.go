package check

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// SourceSuffix selects which files a directory walk checks.
	SourceSuffix = ".py"

	// StdinName is the filename diagnostics carry when the input comes from
	// standard input.
	StdinName = "<stdin>"
)

// Run checks every path in paths and returns the total diagnostic count.
// Directories are walked recursively for files with SourceSuffix; any other
// path is checked directly, whatever its name. With no paths at all,
// standard input is read as one unit. The returned error is non-nil only
// when reading standard input fails.
func (c *Checker) Run(paths []string, stdin io.Reader) (int, error) {
	if len(paths) == 0 {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return 0, fmt.Errorf("read stdin: %w", err)
		}
		return c.Check(src, StdinName), nil
	}

	total := 0
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			total += c.checkDir(path)
			continue
		}
		total += c.CheckPath(path)
	}
	return total, nil
}

// checkDir walks root and checks every source file under it, in lexical
// order. Entries that cannot be read are skipped.
func (c *Checker) checkDir(root string) int {
	c.log.Debug("walking directory", "root", root)
	total := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), SourceSuffix) {
			return nil
		}
		total += c.CheckPath(path)
		return nil
	})
	return total
}
