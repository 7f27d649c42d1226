// Package storage stores downloaded APKs in a gocloud blob bucket instead
// of the local output directory.
//
// Any bucket URL understood by gocloud.dev/blob can be used:
//
//	file:///srv/apks
//	s3://my-bucket?region=eu-west-1&prefix=apks/
//	gs://my-bucket
//	mem://
//
// Bucket has the same contract as the local downloader: an object that is
// already present is reported with fs.ErrExist before anything is fetched,
// a denied write is reported with fs.ErrPermission, and a failed transfer
// never leaves an object behind.
package storage
