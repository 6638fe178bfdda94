// Package media names the directories and files a job produces.
package media

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"tubeshift/internal/util"
)

const (
	// SourceStem is the basename the downloader writes to, before extension.
	SourceStem = "source"
	// SourceTemplate is the downloader output template; the tool sometimes
	// leaves a file with this literal name behind.
	SourceTemplate = SourceStem + ".%(ext)s"
	// TempDirName is the downloader scratch directory inside a job dir.
	TempDirName = "temp"
	// FinalExt is the extension of every finished file.
	FinalExt = ".mp4"
)

// JobDirName returns "DL_<yyyy-mm-dd_hh-mm-ss>_<micro6>_<shortID>".
func JobDirName(now time.Time, shortID string) string {
	micro := now.Nanosecond() / 1000
	return fmt.Sprintf("DL_%s_%06d_%s", now.Format("2006-01-02_15-04-05"), micro, shortID)
}

// FinalName returns the sanitized "<title>.mp4" basename.
func FinalName(title string) string {
	return util.SanitizeFilename(title) + FinalExt
}

// DisplayTitle picks the best human label: title, else the URL, else the id.
func DisplayTitle(title, url, id string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	if u := strings.TrimSpace(url); u != "" {
		return u
	}
	return id
}

// IsSourceFile reports whether name is a finished downloader output
// ("source.<ext>"), excluding the unexpanded template and partial files.
func IsSourceFile(name string) bool {
	if name == SourceTemplate {
		return false
	}
	ext := filepath.Ext(name)
	if ext == "" || strings.TrimSuffix(name, ext) != SourceStem {
		return false
	}
	switch strings.ToLower(ext) {
	case ".part", ".ytdl", ".tmp", ".temp":
		return false
	}
	return true
}
