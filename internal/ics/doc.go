// Package ics reads public or secret-address iCalendar feeds (http, https
// and webcal URLs) and exposes them through the same listing contract as the
// Google Calendar client.
//
// Feeds are downloaded on every call; nothing is cached between requests.
// HTTP statuses are mapped to the agenda error sentinels so that a revoked
// secret address (401/403) or a deleted feed (404/410) is classified the
// same way as the equivalent Google API failure.
package ics
