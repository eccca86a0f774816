package sources

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/calboard/internal/agenda"
	"github.com/teemow/calboard/internal/ics"
	"github.com/teemow/calboard/internal/instrumentation"
)

// Kind returns the source kind of a calendar id.
func Kind(calendarID string) string {
	if ics.IsFeedURL(calendarID) {
		return instrumentation.SourceICS
	}
	return instrumentation.SourceGoogle
}

// Router dispatches each calendar id to the lister of its kind.
type Router struct {
	google agenda.Lister
	feeds  agenda.Lister
}

var _ agenda.Lister = (*Router)(nil)

// NewRouter returns a Router. google may be nil when no service account is
// configured; Google ids then fail individually with a configuration error.
func NewRouter(google, feeds agenda.Lister) *Router {
	return &Router{google: google, feeds: feeds}
}

// ListEvents implements agenda.Lister.
func (r *Router) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]agenda.RawEvent, error) {
	var lister agenda.Lister
	switch Kind(calendarID) {
	case instrumentation.SourceICS:
		lister = r.feeds
	default:
		lister = r.google
	}
	if lister == nil {
		return nil, agenda.NewConfigurationError("no %s client configured", Kind(calendarID))
	}
	return lister.ListEvents(ctx, calendarID, timeMin, timeMax)
}

// NewInstrumentedRouter instruments both listers and routes between them.
// Pass an untyped nil for a lister that is not configured.
func NewInstrumentedRouter(google, feeds agenda.Lister, metrics *instrumentation.Metrics, logger *slog.Logger) *Router {
	return NewRouter(
		Instrument(google, instrumentation.SourceGoogle, metrics, logger),
		Instrument(feeds, instrumentation.SourceICS, metrics, logger),
	)
}
