package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calboard/internal/agenda"
)

const testKey = `{"type":"service_account","client_email":"a@b.iam.gserviceaccount.com","private_key":"k"}`

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, DefaultProbeSchedule, cfg.ProbeSchedule)
	assert.True(t, cfg.ProbeEnabled())
	assert.Equal(t, agenda.FlatDefaultDays, cfg.FlatDefaultDays)
	assert.Equal(t, agenda.WallDefaultDays, cfg.WallDefaultDays)
	assert.Empty(t, cfg.CalendarIDs)
}

func TestLoad_File(t *testing.T) {
	for _, key := range []string{"LISTEN_ADDR", "PORT", "TIMEZONE", "CALENDAR_IDS", "GOOGLE_SERVICE_ACCOUNT_FILE",
		"GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_CALENDAR_ENDPOINT", "FETCH_TIMEOUT", "PROBE_SCHEDULE"} {
		t.Setenv(key, "")
	}

	path := writeFile(t, "calboard.yaml", `
listen: "127.0.0.1:9000"
timezone: America/New_York
calendar_ids:
  - " team@group.calendar.google.com "
  - webcal://example.com/holidays.ics
  - team@group.calendar.google.com
  - ""
service_account_file: /etc/calboard/sa.json
fetch_timeout: 5s
probe_schedule: "off"
wall_default_days: 90
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, "America/New_York", cfg.Timezone)
	assert.Equal(t, []string{"team@group.calendar.google.com", "webcal://example.com/holidays.ics"}, cfg.CalendarIDs)
	assert.Equal(t, "/etc/calboard/sa.json", cfg.ServiceAccountFile)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.ProbeEnabled())
	assert.Equal(t, agenda.WallMaxDays, cfg.WallDefaultDays)
	assert.Equal(t, agenda.FlatDefaultDays, cfg.FlatDefaultDays)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "calboard.yaml", "timezone: Europe/Berlin\ncalendar_ids: [a]\n")
	t.Setenv("TIMEZONE", "Asia/Tokyo")
	t.Setenv("CALENDAR_IDS", "b, c ,")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("PORT", "3000")
	t.Setenv("FETCH_TIMEOUT", "")
	t.Setenv("PROBE_SCHEDULE", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, []string{"b", "c"}, cfg.CalendarIDs)
	assert.Equal(t, ":3000", cfg.Listen)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "bad.yaml", "calendar_ids: [unterminated"))
	assert.Error(t, err)

	t.Setenv("FETCH_TIMEOUT", "soon")
	_, err = Load("")
	require.Error(t, err)
	assert.True(t, agenda.IsConfigurationError(err))
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "listen addr wins over port",
			env:  map[string]string{"LISTEN_ADDR": "0.0.0.0:1", "PORT": "2"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0:1", cfg.Listen)
			},
		},
		{
			name: "application credentials fallback",
			env:  map[string]string{"GOOGLE_APPLICATION_CREDENTIALS": "/adc.json"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/adc.json", cfg.ServiceAccountFile)
			},
		},
		{
			name: "explicit file wins over application credentials",
			env:  map[string]string{"GOOGLE_SERVICE_ACCOUNT_FILE": "/sa.json", "GOOGLE_APPLICATION_CREDENTIALS": "/adc.json"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/sa.json", cfg.ServiceAccountFile)
			},
		},
		{
			name: "blank values are ignored",
			env:  map[string]string{"TIMEZONE": "  ", "CALENDAR_IDS": ""},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "Europe/Paris", cfg.Timezone)
				assert.Equal(t, []string{"keep"}, cfg.CalendarIDs)
			},
		},
		{
			name: "endpoint and schedule",
			env:  map[string]string{"GOOGLE_CALENDAR_ENDPOINT": "http://localhost:1/", "PROBE_SCHEDULE": "*/10 * * * *"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://localhost:1/", cfg.GoogleEndpoint)
				assert.Equal(t, "*/10 * * * *", cfg.ProbeSchedule)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Timezone: "Europe/Paris", CalendarIDs: []string{"keep"}}
			require.NoError(t, cfg.ApplyEnv(envMap(tt.env)))
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "no calendars",
			cfg:     Config{},
			wantErr: "no calendar ids",
		},
		{
			name:    "bad timezone",
			cfg:     Config{CalendarIDs: []string{"https://x/a.ics"}, Timezone: "Mars/Olympus"},
			wantErr: "invalid timezone",
		},
		{
			name:    "google ids need credentials",
			cfg:     Config{CalendarIDs: []string{"primary"}},
			wantErr: "no service account credentials",
		},
		{
			name:    "bad probe schedule",
			cfg:     Config{CalendarIDs: []string{"https://x/a.ics"}, ProbeSchedule: "every now and then"},
			wantErr: "invalid probe schedule",
		},
		{
			name: "feeds only need no credentials",
			cfg:  Config{CalendarIDs: []string{"https://x/a.ics", "webcal://y/b.ics"}},
		},
		{
			name: "google with inline key",
			cfg:  Config{CalendarIDs: []string{"primary"}, ServiceAccountJSON: testKey},
		},
		{
			name: "probe off",
			cfg:  Config{CalendarIDs: []string{"https://x/a.ics"}, ProbeSchedule: "off"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Normalize()
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, agenda.IsConfigurationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	cfg := &Config{ProbeSchedule: "disabled", CalendarIDs: []string{"a", "a", " b"}}
	cfg.Normalize()
	cfg.Normalize()

	assert.Equal(t, ProbeOff, cfg.ProbeSchedule)
	assert.Equal(t, []string{"a", "b"}, cfg.CalendarIDs)
}

func TestCredentials(t *testing.T) {
	cfg := &Config{}
	data, err := cfg.Credentials()
	require.NoError(t, err)
	assert.Nil(t, data)

	cfg.ServiceAccountFile = writeFile(t, "sa.json", testKey)
	data, err = cfg.Credentials()
	require.NoError(t, err)
	assert.JSONEq(t, testKey, string(data))

	cfg.ServiceAccountJSON = base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`))
	data, err = cfg.Credentials()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service_account"}`, string(data))

	cfg = &Config{ServiceAccountFile: filepath.Join(t.TempDir(), "nope.json")}
	_, err = cfg.Credentials()
	assert.True(t, agenda.IsConfigurationError(err))
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "America/New_York"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b ,"))
}
