package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tubeshift/internal/model"
	"tubeshift/internal/util"
	"tubeshift/internal/util/timefmt"
)

// Info mirrors the fields of the downloader's JSON dump that we use.
type Info struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Uploader       string   `json:"uploader"`
	Channel        string   `json:"channel"`
	Thumbnail      string   `json:"thumbnail"`
	Duration       *float64 `json:"duration"`
	DurationString string   `json:"duration_string"`
	WebpageURL     string   `json:"webpage_url"`
}

// Preview converts the dump into the display model. Duration falls back to
// parsing duration_string when the numeric field is absent.
func (i Info) Preview() model.Preview {
	p := model.Preview{
		ID:             i.ID,
		Title:          strings.TrimSpace(i.Title),
		Uploader:       strings.TrimSpace(i.Uploader),
		Thumbnail:      i.Thumbnail,
		DurationString: i.DurationString,
		WebpageURL:     i.WebpageURL,
	}
	if p.Uploader == "" {
		p.Uploader = strings.TrimSpace(i.Channel)
	}
	if i.Duration != nil && *i.Duration > 0 {
		p.DurationSec = *i.Duration
	} else if secs, err := timefmt.Parse(i.DurationString); err == nil {
		p.DurationSec = secs
	}
	if p.DurationString == "" && p.DurationSec > 0 {
		p.DurationString = timefmt.Format(p.DurationSec)
	}
	return p
}

// MetadataArgs builds the metadata-only command line for url.
func MetadataArgs(url string) []string {
	return []string{"--dump-single-json", "--skip-download", "--no-playlist", url}
}

// ErrBadMetadata means the downloader exited cleanly but its output was
// not a metadata document.
var ErrBadMetadata = errors.New("unreadable metadata")

// FetchMetadata asks the downloader for url's metadata without downloading
// any media. Only DownloaderPath, Runner and Logger of opts are used.
// A non-zero exit wraps ErrDownload; undecodable output wraps ErrBadMetadata.
func FetchMetadata(ctx context.Context, url string, opts Options) (model.Preview, error) {
	if opts.DownloaderPath == "" {
		return model.Preview{}, errors.New("downloader path is required")
	}
	res, runErr := opts.runner().Run(ctx, util.CmdSpec{
		Path:          opts.DownloaderPath,
		Args:          MetadataArgs(url),
		CaptureStdout: true,
	})
	if runErr != nil {
		if ctx.Err() != nil {
			return model.Preview{}, ctx.Err()
		}
		if tail := res.StderrTail(3); tail != "" {
			return model.Preview{}, fmt.Errorf("%w: metadata fetch: %v: %s", ErrDownload, runErr, tail)
		}
		return model.Preview{}, fmt.Errorf("%w: metadata fetch: %v", ErrDownload, runErr)
	}
	info, err := ParseInfo(res.Stdout)
	if err != nil {
		return model.Preview{}, fmt.Errorf("%w: %v", ErrBadMetadata, err)
	}
	return info.Preview(), nil
}

// ParseInfo decodes the dump. Warnings can precede the JSON on stdout, so
// when the whole output does not decode the last JSON line wins.
func ParseInfo(stdout []byte) (Info, error) {
	data := strings.TrimSpace(string(stdout))
	var info Info
	err := json.Unmarshal([]byte(data), &info)
	if err == nil {
		return info, nil
	}
	lines := strings.Split(data, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var tmp Info
		if json.Unmarshal([]byte(line), &tmp) == nil {
			return tmp, nil
		}
	}
	return Info{}, fmt.Errorf("parse metadata JSON: %w", err)
}
