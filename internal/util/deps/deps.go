package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrNotFound is returned when a required external tool cannot be located.
var ErrNotFound = errors.New("dependency not found")

// FindDownloader returns the path to yt-dlp or youtube-dl.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindDownloader(customPath string) (string, error) {
	if customPath != "" {
		return lookCustom(customPath, "downloader")
	}
	if p, err := exec.LookPath("yt-dlp"); err == nil {
		return p, nil
	}
	if p, err := exec.LookPath("youtube-dl"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: could not find yt-dlp or youtube-dl in PATH, please install yt-dlp", ErrNotFound)
}

// FindFFmpeg returns the path to ffmpeg, honouring customPath when set.
func FindFFmpeg(customPath string) (string, error) {
	return findTool(customPath, "ffmpeg")
}

// FindFFprobe returns the path to ffprobe, honouring customPath when set.
func FindFFprobe(customPath string) (string, error) {
	return findTool(customPath, "ffprobe")
}

// Paths bundles the resolved tool locations.
type Paths struct {
	Downloader string
	FFmpeg     string
	FFprobe    string
}

// FindAll resolves all three tools and joins every lookup failure.
func FindAll(downloader, ffmpeg, ffprobe string) (Paths, error) {
	var p Paths
	var errs []error
	var err error
	if p.Downloader, err = FindDownloader(downloader); err != nil {
		errs = append(errs, err)
	}
	if p.FFmpeg, err = FindFFmpeg(ffmpeg); err != nil {
		errs = append(errs, err)
	}
	if p.FFprobe, err = FindFFprobe(ffprobe); err != nil {
		errs = append(errs, err)
	}
	return p, errors.Join(errs...)
}

func findTool(customPath, name string) (string, error) {
	if customPath != "" {
		return lookCustom(customPath, name)
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: could not find %s in PATH, please install %s", ErrNotFound, name, name)
}

func lookCustom(customPath, what string) (string, error) {
	if st, err := os.Stat(customPath); err == nil && !st.IsDir() {
		return customPath, nil
	}
	if p, err := exec.LookPath(customPath); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: could not find %s at %q", ErrNotFound, what, customPath)
}
