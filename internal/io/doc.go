// Package ioutils provides the file system side of apkpure-downloader.
//
// This package contains functions for:
//   - Directory creation
//   - Streaming a reader into a file without clobbering existing files
//
// # Streaming Writes
//
// WriteStream copies a reader into a temp file next to the destination and
// renames it into place once the copy completed:
//
//	n, err := ioutils.WriteStream(ctx, resp.Body, "/apks", "org.example.app.apk")
//	switch {
//	case errors.Is(err, fs.ErrExist):
//	    // already downloaded
//	case errors.Is(err, fs.ErrPermission):
//	    // output directory not writable
//	}
//
// A failed or cancelled copy removes the temp file, so a partial artifact
// never appears under its final name.
package ioutils
