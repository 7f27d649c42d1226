// Package apkpure knows the shape of the APKPure catalog service: the
// request headers it expects, the listing endpoint, and how to pull
// download URLs and version identifiers out of a listing page.
//
// The listing page is not a documented format. Its body is a binary-ish
// blob in which every available version shows up as
//
//	<version>:(<40+ hex digit checksum> ... APKJ??<download url>
//
// so extraction is done with regular expressions rather than a decoder.
//
// # Resolving a Download URL
//
//	m, err := apkpure.NewMatcher("")      // latest
//	m, err := apkpure.NewMatcher("1.2.3") // pinned
//	url, err := m.Resolve(page)
//	if errors.Is(err, apkpure.ErrNoMatch) {
//	    // the page does not advertise that version
//	}
//
// # Listing Versions
//
//	versions := apkpure.Versions(page) // deduplicated, sorted
package apkpure
