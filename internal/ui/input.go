package ui

import (
	"errors"
	"fmt"
	"strings"

	"tubeshift/internal/model"
	"tubeshift/internal/util"
	"tubeshift/internal/util/timefmt"
)

// parseInput splits "URL [start [end]]" into a URL and clip. Either time may
// be "-" to leave that side open.
func parseInput(text string) (string, model.Clip, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", model.Clip{}, util.ErrEmptyURL
	}
	if len(fields) > 3 {
		return "", model.Clip{}, errors.New("expected: URL [start [end]]")
	}
	url, err := util.ValidateURL(fields[0])
	if err != nil {
		return "", model.Clip{}, err
	}

	var clip model.Clip
	for i, raw := range fields[1:] {
		if raw == "-" {
			continue
		}
		sec, err := timefmt.Parse(raw)
		if err != nil {
			return "", model.Clip{}, fmt.Errorf("clip time %q: %w", raw, err)
		}
		if i == 0 {
			clip.Start = &sec
		} else {
			clip.End = &sec
		}
	}
	if err := clip.Validate(); err != nil {
		return "", model.Clip{}, err
	}
	return url, clip, nil
}

// previewable reports whether text is worth a metadata lookup.
func previewable(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}
	raw := fields[0]
	if util.IsYouTubeVideoURL(raw) {
		return raw, true
	}
	if !strings.Contains(raw, "://") {
		return "", false
	}
	url, err := util.ValidateURL(raw)
	if err != nil || !strings.Contains(url[strings.Index(url, "://")+3:], ".") {
		return "", false
	}
	return url, true
}
