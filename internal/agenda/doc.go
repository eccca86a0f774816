// Package agenda is the calendar aggregation core.
//
// A Fetcher lists one calendar through a Lister and normalizes each provider
// record into an Event. An Engine runs one Fetcher call per calendar
// concurrently, waits for every call to settle, and merges the successful
// results sorted by start. BuildFlat and BuildWall shape an engine Result
// into the two response formats served over HTTP.
//
// Per-calendar failures never fail an aggregation; they are reported in
// Result.Errors. The only error Aggregate returns is a ConfigurationError.
//
// Example usage:
//
//	engine := agenda.NewEngine(agenda.NewFetcher(lister, 30*time.Second), logger)
//	window := agenda.FlatWindow(time.Now(), 30)
//	res, err := engine.Aggregate(ctx, []string{"primary"}, window.Min, window.Max)
//	if err != nil {
//	    return err
//	}
//	report := agenda.BuildFlat(res, "UTC", window.Range())
package agenda
