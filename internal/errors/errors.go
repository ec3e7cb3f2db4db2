package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrEndOfPlaylist  = errors.New("end of playlist")
	ErrNoCurrentTrack = errors.New("no current track")
	ErrTrackNotFound  = errors.New("track not found")
	ErrInvalidQuery   = errors.New("search query too short")
	ErrInvalidURL     = errors.New("unrecognized media URL")
	ErrJobNotFound    = errors.New("download job not found")
	ErrJobFailed      = errors.New("download job failed")
	ErrNoSource       = errors.New("no playback source bound")
	ErrNetworkError   = errors.New("network error")
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Informational reports whether an error is an expected terminal condition
// rather than a genuine failure. Reaching the end of a non-repeating
// playlist is the normal way playback stops.
func Informational(err error) bool {
	return errors.Is(err, ErrEndOfPlaylist) || errors.Is(err, ErrNoCurrentTrack)
}

// StrumError wraps an error with a user-friendly suggestion.
type StrumError struct {
	Err        error
	Suggestion string
}

func (e *StrumError) Error() string {
	return e.Err.Error()
}

func (e *StrumError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &StrumError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	// Check if it's already a StrumError with suggestion
	var strumErr *StrumError
	if errors.As(err, &strumErr) && strumErr.Suggestion != "" {
		return strumErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrEndOfPlaylist) {
		return "Enable repeat with 'strum repeat' to wrap around the playlist"
	}

	if errors.Is(err, ErrNoCurrentTrack) || strings.Contains(errStr, "playlist is empty") {
		return "Add a track first with 'strum search' or 'strum play <url>'"
	}

	if errors.Is(err, ErrInvalidQuery) {
		return "Use at least 2 characters in the search query"
	}

	if errors.Is(err, ErrInvalidURL) {
		return "Provide a watch, share, or embed URL from the media site"
	}

	if errors.Is(err, ErrJobNotFound) || strings.Contains(errStr, "download not found") {
		return "The server may have expired the download. Play the track again"
	}

	if errors.Is(err, ErrNetworkError) || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check that the strum server is reachable and try again"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) ||
		strings.Contains(errStr, "config") {
		return "Run 'strum setup' to create a configuration"
	}

	if strings.Contains(errStr, "500") || strings.Contains(errStr, "server error") {
		return "The server is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
