package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/teemow/calboard/internal/agenda"
	"github.com/teemow/calboard/internal/logging"
)

// maxFeedSize bounds how much of a feed body is read.
const maxFeedSize = 16 << 20

// IsFeedURL reports whether a calendar id names an ICS feed rather than a
// Google calendar.
func IsFeedURL(id string) bool {
	lower := strings.ToLower(id)
	return strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "webcal://")
}

// FeedURL returns the URL to GET for a feed id. webcal:// is served over HTTPS.
func FeedURL(id string) string {
	if len(id) >= len("webcal://") && strings.EqualFold(id[:len("webcal://")], "webcal://") {
		return "https://" + id[len("webcal://"):]
	}
	return id
}

// Client downloads and parses ICS feeds. It implements agenda.Lister where
// the calendar id is the feed URL.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

var _ agenda.Lister = (*Client)(nil)

// NewClient returns a Client. A nil httpClient uses http.DefaultClient.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		logger:     logging.WithOperation(logger, "ics"),
	}
}

// ListEvents downloads the feed and returns the events overlapping
// [timeMin, timeMax), ordered by start and capped at agenda.MaxResults.
//
// Recurrence rules are not expanded. A recurring event appears once, at
// its DTSTART, when that falls inside the window.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]agenda.RawEvent, error) {
	body, err := c.fetch(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	events, err := parseFeed(body)
	if err != nil {
		return nil, err
	}

	inWindow := make([]feedEvent, 0, len(events))
	for _, ev := range events {
		if ev.overlaps(timeMin, timeMax) {
			inWindow = append(inWindow, ev)
		}
	}
	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].start.Before(inWindow[j].start)
	})
	if len(inWindow) > agenda.MaxResults {
		inWindow = inWindow[:agenda.MaxResults]
	}

	raws := make([]agenda.RawEvent, 0, len(inWindow))
	for _, ev := range inWindow {
		raws = append(raws, ev.raw)
	}

	c.logger.Debug("feed parsed",
		logging.Calendar(calendarID),
		slog.Int("parsed", len(events)),
		slog.Int("in_window", len(raws)))
	return raws, nil
}

func (c *Client) fetch(ctx context.Context, calendarID string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, FeedURL(calendarID), nil)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL: %w", redactURLError(err))
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", redactURLError(err))
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, statusError(resp)
	}

	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, maxFeedSize), resp.Body}, nil
}

// redactURLError strips the path and query of the URL carried by a
// *url.Error. Feed URLs often embed access tokens.
func redactURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = logging.RedactCalendarID(ue.URL)
	}
	return err
}

func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: feed returned %s", agenda.ErrAuth, resp.Status)
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%w: feed returned %s", agenda.ErrNotFound, resp.Status)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: feed returned %s", agenda.ErrRateLimit, resp.Status)
	default:
		return fmt.Errorf("feed returned %s", resp.Status)
	}
}
