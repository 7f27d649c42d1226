package apkpure

import (
	"regexp"
	"slices"
)

// versionRe finds "<identifier>:(<checksum>" pairs. Group 1 is the version.
var versionRe = regexp.MustCompile(`([[:alnum:]\.-]+):\([[:xdigit:]]{40,}`)

// Versions returns every distinct version identifier advertised in page,
// sorted lexicographically. Extraction order carries no meaning, so the
// result is always sorted.
func Versions(page string) []string {
	set := make(map[string]struct{})
	for _, caps := range versionRe.FindAllStringSubmatch(page, -1) {
		if len(caps) >= 2 {
			set[caps[1]] = struct{}{}
		}
	}

	versions := make([]string, 0, len(set))
	for v := range set {
		versions = append(versions, v)
	}
	slices.Sort(versions)

	return versions
}
