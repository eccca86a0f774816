// Package google builds authenticated HTTP clients for Google APIs from
// service account credentials.
//
// Credentials are supplied as the JSON key downloaded from the Google Cloud
// console, either read from a file or passed inline (raw or base64 encoded).
// The resulting client is created once per process and shared read-only by
// every calendar fetch.
package google
