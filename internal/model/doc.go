// Package model defines the core data structures used throughout
// the apkpure-downloader application.
//
// # Request
//
// Request names one package to fetch, optionally pinned to a version:
//
//	req := model.Request{PackageID: "org.example.app", Version: "1.2.3"}
//	fmt.Println(req.FileName()) // org.example.app@1.2.3.apk
//
// Requests are usually built from user input with ParseRequests, which
// accepts "id" and "id@version" tokens and validates them, or with
// ReadRequests from a CSV list.
//
// # Outcome
//
// Outcome is the terminal result of processing one Request. Every request
// ends in exactly one Outcome; outcomes are never retried across runs.
package model
