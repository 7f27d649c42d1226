// Package http provides the HTTP client used to talk to the APKPure catalog.
//
// The Client in this package handles:
//   - Catalog request headers on every listing request
//   - Timeout handling
//   - Optional token-bucket throttling of outbound requests
//   - Streaming downloads to disk without overwriting existing files
//
// # Basic Usage
//
//	client, err := http.NewClient(http.Config{
//	    VersionsURL: apkpure.VersionsURL,
//	    Headers:     apkpure.Headers(),
//	})
//
//	// Fetch a listing page
//	page, err := client.GetListing(ctx, "org.example.app")
//
//	// Stream an artifact to /apks/org.example.app.apk
//	err = client.DownloadFile(ctx, url, "/apks", "org.example.app.apk")
//
//	// Or take the body and store it elsewhere
//	body, err := client.Open(ctx, url)
//
// Responses with a status other than 200 are returned as *StatusError.
package http
