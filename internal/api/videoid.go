package api

import (
	"regexp"

	"github.com/pcahill/strum/internal/errors"
)

// Recognized URL forms for media ids, matching what the server accepts.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]+)`),
}

// ExtractVideoID pulls the media id out of a watch, share, or embed URL.
func ExtractVideoID(mediaURL string) (string, error) {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(mediaURL); m != nil {
			return m[1], nil
		}
	}
	return "", errors.ErrInvalidURL
}
