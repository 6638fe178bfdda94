package downloader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tubeshift/internal/util"
	"tubeshift/internal/util/media"
)

// SelectSourceFile removes the literal template placeholder the downloader
// may leave behind and returns the best "source.<ext>" file in workdir.
// Partial files and directories are ignored; among several finished files
// common playable containers win.
func SelectSourceFile(workdir string) (string, error) {
	_ = util.RemoveIfExists(filepath.Join(workdir, media.SourceTemplate))

	entries, err := os.ReadDir(workdir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingSource, err)
	}
	var candidates []string
	for _, e := range entries {
		if e.IsDir() || !media.IsSourceFile(e.Name()) {
			continue
		}
		candidates = append(candidates, filepath.Join(workdir, e.Name()))
	}
	if len(candidates) == 0 {
		return "", ErrMissingSource
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		pri := extPriority(filepath.Ext(candidates[i]))
		prj := extPriority(filepath.Ext(candidates[j]))
		if pri == prj {
			return candidates[i] < candidates[j]
		}
		return pri < prj
	})
	return candidates[0], nil
}

// extPriority returns a priority score for file extensions (lower = better).
func extPriority(ext string) int {
	switch strings.ToLower(ext) {
	case ".mp4":
		return 0
	case ".mkv":
		return 1
	case ".webm":
		return 2
	case ".mov":
		return 3
	case ".m4a", ".mp3", ".opus":
		return 50
	default:
		return 10
	}
}
