package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/teemow/calboard/internal/agenda"
	"github.com/teemow/calboard/internal/google"
	"github.com/teemow/calboard/internal/ics"
)

// Defaults.
const (
	DefaultListen        = ":8080"
	DefaultTimezone      = "UTC"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultProbeSchedule = "@every 5m"

	// ProbeOff as probe_schedule disables the readiness probe.
	ProbeOff = "off"
)

// Config is the runtime configuration of the aggregator. It is built once at
// startup and passed down explicitly; the core packages never read the
// environment themselves.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone used for the wall view and for day windows.
	Timezone string `yaml:"timezone" json:"timezone"`

	// CalendarIDs are fetched in this order. URLs (http, https, webcal) are
	// ICS feeds; everything else is a Google Calendar id.
	CalendarIDs []string `yaml:"calendar_ids" json:"calendar_ids"`

	// ServiceAccountFile is a path to a Google service account JSON key.
	ServiceAccountFile string `yaml:"service_account_file" json:"service_account_file,omitempty"`

	// ServiceAccountJSON is an inline key, raw JSON or base64. It wins over
	// ServiceAccountFile.
	ServiceAccountJSON string `yaml:"service_account_json" json:"-"`

	// GoogleEndpoint overrides the Calendar API base URL.
	GoogleEndpoint string `yaml:"google_endpoint" json:"google_endpoint,omitempty"`

	// FetchTimeout bounds a single calendar fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`

	// ProbeSchedule is a cron expression for the background readiness probe.
	// "off" disables the probe.
	ProbeSchedule string `yaml:"probe_schedule" json:"probe_schedule"`

	FlatDefaultDays int `yaml:"flat_default_days" json:"flat_default_days"`
	WallDefaultDays int `yaml:"wall_default_days" json:"wall_default_days"`
}

// Default returns a Config with every default filled in and no calendars.
func Default() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Load reads the YAML file at path (when path is non-empty), overlays the
// process environment and normalizes the result. It does not validate.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// ApplyEnv overlays environment variables on c. Set variables win over the
// file. lookup is os.LookupEnv outside of tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("LISTEN_ADDR"); ok {
		c.Listen = v
	} else if v, ok := get("PORT"); ok {
		c.Listen = ":" + v
	}
	if v, ok := get("TIMEZONE"); ok {
		c.Timezone = v
	}
	if v, ok := get("CALENDAR_IDS"); ok {
		c.CalendarIDs = SplitList(v)
	}
	if v, ok := get("GOOGLE_SERVICE_ACCOUNT_FILE"); ok {
		c.ServiceAccountFile = v
	} else if v, ok := get("GOOGLE_APPLICATION_CREDENTIALS"); ok && c.ServiceAccountFile == "" {
		c.ServiceAccountFile = v
	}
	if v, ok := get("GOOGLE_SERVICE_ACCOUNT_JSON"); ok {
		c.ServiceAccountJSON = v
	}
	if v, ok := get("GOOGLE_CALENDAR_ENDPOINT"); ok {
		c.GoogleEndpoint = v
	}
	if v, ok := get("FETCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return agenda.NewConfigurationError("invalid FETCH_TIMEOUT %q: %v", v, err)
		}
		c.FetchTimeout = d
	}
	if v, ok := get("PROBE_SCHEDULE"); ok {
		c.ProbeSchedule = v
	}
	return nil
}

// Normalize fills defaults and cleans the calendar id list: ids are trimmed,
// empty ids dropped and duplicates removed keeping the first occurrence.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	switch strings.ToLower(strings.TrimSpace(c.ProbeSchedule)) {
	case "":
		c.ProbeSchedule = DefaultProbeSchedule
	case ProbeOff, "none", "disabled":
		c.ProbeSchedule = ProbeOff
	}
	if c.FlatDefaultDays <= 0 {
		c.FlatDefaultDays = agenda.FlatDefaultDays
	}
	c.FlatDefaultDays = agenda.ClampDays(c.FlatDefaultDays, agenda.FlatMaxDays)
	if c.WallDefaultDays <= 0 {
		c.WallDefaultDays = agenda.WallDefaultDays
	}
	c.WallDefaultDays = agenda.ClampDays(c.WallDefaultDays, agenda.WallMaxDays)

	seen := make(map[string]bool, len(c.CalendarIDs))
	ids := make([]string, 0, len(c.CalendarIDs))
	for _, id := range c.CalendarIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	c.CalendarIDs = ids
}

// Validate reports the first problem that makes the configuration unusable
// as a *agenda.ConfigurationError.
func (c *Config) Validate() error {
	if len(c.CalendarIDs) == 0 {
		return agenda.NewConfigurationError("no calendar ids configured (set calendar_ids or CALENDAR_IDS)")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.ProbeEnabled() {
		if _, err := cron.ParseStandard(c.ProbeSchedule); err != nil {
			return agenda.NewConfigurationError("invalid probe schedule %q: %v", c.ProbeSchedule, err)
		}
	}
	if c.HasGoogleCalendars() && !c.HasCredentials() {
		return agenda.NewConfigurationError("Google calendar ids configured but no service account credentials (set GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON)")
	}
	return nil
}

// ProbeEnabled reports whether the readiness probe should run.
func (c *Config) ProbeEnabled() bool {
	return c.ProbeSchedule != "" && c.ProbeSchedule != ProbeOff
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, agenda.NewConfigurationError("invalid timezone %q: %v", c.Timezone, err)
	}
	return loc, nil
}

// HasGoogleCalendars reports whether any calendar id is a Google id.
func (c *Config) HasGoogleCalendars() bool {
	for _, id := range c.CalendarIDs {
		if !ics.IsFeedURL(id) {
			return true
		}
	}
	return false
}

// HasCredentials reports whether a service account key is configured.
func (c *Config) HasCredentials() bool {
	return strings.TrimSpace(c.ServiceAccountJSON) != "" || c.ServiceAccountFile != ""
}

// Credentials returns the service account key bytes, or nil when none is
// configured. The inline key wins over the file.
func (c *Config) Credentials() ([]byte, error) {
	if strings.TrimSpace(c.ServiceAccountJSON) != "" {
		data, err := google.DecodeInline(c.ServiceAccountJSON)
		if err != nil {
			return nil, agenda.NewConfigurationError("%v", err)
		}
		return data, nil
	}
	if c.ServiceAccountFile != "" {
		data, err := google.ReadCredentialsFile(c.ServiceAccountFile)
		if err != nil {
			return nil, agenda.NewConfigurationError("%v", err)
		}
		return data, nil
	}
	return nil, nil
}

// SplitList splits a comma separated list, trimming blanks.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
