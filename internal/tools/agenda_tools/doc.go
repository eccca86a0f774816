// Package agenda_tools exposes the aggregated calendar reports as MCP tools.
//
// Available tools:
//   - agenda_events: merged events over [now, now+days)
//   - agenda_wall: today and upcoming events from local midnight
//   - agenda_calendars: the configured calendar ids and their source kind
//
// All tools are read-only and return JSON text. A configuration error is
// returned as an error result; failing calendars are listed in the report's
// errors field.
package agenda_tools
