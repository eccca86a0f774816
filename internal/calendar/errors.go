package calendar

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/teemow/calboard/internal/agenda"
)

var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
}

// classify wraps API errors with the matching agenda sentinel. Transport
// errors and unexpected codes are returned as they are.
func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests || hasRateLimitReason(apiErr):
		return fmt.Errorf("%w: %w", agenda.ErrRateLimit, err)
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return fmt.Errorf("%w: %w", agenda.ErrAuth, err)
	case apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone:
		return fmt.Errorf("%w: %w", agenda.ErrNotFound, err)
	default:
		return err
	}
}

func hasRateLimitReason(apiErr *googleapi.Error) bool {
	if apiErr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range apiErr.Errors {
		if rateLimitReasons[item.Reason] {
			return true
		}
	}
	return false
}
