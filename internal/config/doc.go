// Package config loads the calboard runtime configuration.
//
// Values come from an optional YAML file and are then overlaid with
// environment variables:
//
//	listen: ":8080"               # LISTEN_ADDR, or PORT
//	timezone: Europe/Berlin       # TIMEZONE
//	calendar_ids:                 # CALENDAR_IDS (comma separated)
//	  - team@group.calendar.google.com
//	  - webcal://example.com/holidays.ics
//	service_account_file: sa.json # GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS
//	fetch_timeout: 30s            # FETCH_TIMEOUT
//	probe_schedule: "@every 5m"   # PROBE_SCHEDULE ("off" disables)
//
// An inline key can be passed with GOOGLE_SERVICE_ACCOUNT_JSON, either as raw
// JSON or base64 encoded.
package config
