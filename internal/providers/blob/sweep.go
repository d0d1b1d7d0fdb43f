package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// sweep removes every file left under the user's directory and then the
// emptied directories. It returns the number of files removed.
func (p *Provider) sweep(ctx context.Context, userID string) (int, error) {
	dir := filepath.Join(p.cfg.Root, userID)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}

	var files, dirs []string
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		} else {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("Sweep failed to remove file", zap.String("path", f), zap.Error(err))
			continue
		}
		removed++
	}

	// Deepest first so parents are empty when reached
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, d := range dirs {
		_ = os.Remove(d)
	}
	return removed, nil
}
