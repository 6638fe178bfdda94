package util

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL   = errors.New("empty URL")
	ErrInvalidURL = errors.New("invalid URL")
)

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformOther     Platform = "other"
)

// ValidateURL checks that raw is an absolute http(s) URL with a host and
// returns it trimmed. Scheme-less input such as "youtu.be/x" gets https.
func ValidateURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyURL
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidURL, raw, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidURL, raw)
	}
	if u.Hostname() == "" || strings.ContainsAny(u.Host, " \t") {
		return "", fmt.Errorf("%w %q: missing host", ErrInvalidURL, raw)
	}
	return s, nil
}

// DetectPlatform labels a URL by its host, for display only. Any site the
// downloader supports is accepted; unknown hosts are PlatformOther.
func DetectPlatform(raw string) Platform {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return PlatformOther
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") || strings.HasSuffix(host, ".youtu.be"):
		return PlatformYouTube
	case host == "instagram.com" || host == "instagr.am" || strings.HasSuffix(host, ".instagram.com"):
		return PlatformInstagram
	default:
		return PlatformOther
	}
}

// IsYouTubeVideoURL reports whether raw points at a single YouTube video
// (watch, shorts, live, embed or youtu.be short links).
func IsYouTubeVideoURL(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Host)
	path := u.Path
	if strings.HasSuffix(host, "youtube.com") {
		if strings.HasPrefix(path, "/watch") {
			for _, v := range u.Query()["v"] {
				if strings.TrimSpace(v) != "" {
					return true
				}
			}
			return false
		}
		for _, prefix := range []string{"/shorts/", "/live/", "/embed/"} {
			if strings.HasPrefix(path, prefix) {
				return strings.Trim(strings.TrimPrefix(path, prefix), "/") != ""
			}
		}
		return false
	}
	if host == "youtu.be" || strings.HasSuffix(host, ".youtu.be") {
		return strings.Trim(path, "/") != ""
	}
	return false
}
