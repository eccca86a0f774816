// Package probe runs a background aggregation on a cron schedule and
// reports the per-calendar outcome to the health checker.
//
// A run fetches a one-day window from every configured calendar and records
// "<ok>/<total> ok" under the "calendars" check of /healthz/detailed and
// /readyz. A configuration error marks the server not ready; individual
// calendar failures do not.
package probe
