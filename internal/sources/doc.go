// Package sources picks the calendar client for each configured calendar id
// and decorates clients with metrics, tracing and debug logging.
//
// Ids that are http, https or webcal URLs are read as ICS feeds; every other
// id is a Google Calendar id.
package sources
