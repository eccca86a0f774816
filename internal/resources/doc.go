// Package resources exposes read-only MCP resources for the agenda.
//
// agenda://config describes the configured calendars and defaults without
// credentials. agenda://wall serves the current wall view, fetched on every
// read.
package resources
