package apkpure

import "net/http"

// VersionsURL is the listing endpoint. The package id is appended verbatim.
const VersionsURL = "https://api.pureapk.com/m/v3/cms/app_version?hl=en-US&package_name="

// headers identifies the client to the catalog: client version, schema
// version, supported ABIs and the Play-services flag.
var headers = http.Header{
	"X-Cv":   {"3172501"},
	"X-Sv":   {"29"},
	"X-Abis": {"arm64-v8a,armeabi-v7a,armeabi"},
	"X-Gp":   {"1"},
}

// Headers returns the request headers the catalog expects.
// The returned value is a copy; callers may keep and share it read-only.
func Headers() http.Header {
	return headers.Clone()
}
