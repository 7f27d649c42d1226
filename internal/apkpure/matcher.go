package apkpure

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrNoMatch is returned when a listing page carries no download URL for
// the requested package or version. It is final: retrying the same page
// cannot produce a match.
var ErrNoMatch = errors.New("no download url in listing page")

// downloadURLPattern captures the download URL that follows an APKJ marker.
// Group 1 is the URL.
const downloadURLPattern = `APKJ..(https?://(?:[a-zA-Z0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+)`

// pinnedPrefix is placed in front of downloadURLPattern for pinned lookups.
// The version must not be preceded by a digit and must be followed by a
// colon; the URL is the first one after it, possibly lines later.
const pinnedPrefix = `[[:^digit:]]%s:(?s:.)+?`

var latestRe = regexp.MustCompile(downloadURLPattern)

// Matcher extracts a download URL from listing page text.
//
// A Matcher is immutable and safe to share between goroutines.
type Matcher struct {
	re      *regexp.Regexp
	version string
}

// NewMatcher returns the matcher for version. An empty version selects the
// latest-version matcher, which is compiled once and shared. A non-empty
// version builds a pattern anchored on that exact (escaped) version.
//
// When versions share a prefix across blocks the lazy span can still run
// into a neighbouring block; the anchoring is kept as is.
func NewMatcher(version string) (*Matcher, error) {
	if version == "" {
		return &Matcher{re: latestRe}, nil
	}

	re, err := regexp.Compile(fmt.Sprintf(pinnedPrefix, regexp.QuoteMeta(version)) + downloadURLPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern for version %q: %w", version, err)
	}

	return &Matcher{re: re, version: version}, nil
}

// Version returns the pinned version, or "" for the latest matcher.
func (m *Matcher) Version() string {
	return m.version
}

// Resolve returns the download URL found in page.
func (m *Matcher) Resolve(page string) (string, error) {
	caps := m.re.FindStringSubmatch(page)
	if len(caps) < 2 || caps[1] == "" {
		return "", ErrNoMatch
	}
	return caps[1], nil
}

// Resolve is shorthand for NewMatcher(version) followed by Matcher.Resolve.
func Resolve(page, version string) (string, error) {
	m, err := NewMatcher(version)
	if err != nil {
		return "", err
	}
	return m.Resolve(page)
}
