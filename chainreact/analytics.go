package chainreact

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

const usagePath = "/api/v1/analytics/usage"

// AnalyticsService handles the analytics endpoints
type AnalyticsService struct {
	transport Transport
	logger    zerolog.Logger
}

func (q AnalyticsQuery) params() url.Values {
	granularity := q.Granularity
	if granularity == "" {
		granularity = GranularityDay
	}

	params := url.Values{}
	params.Set("granularity", string(granularity))
	if q.StartDate != "" {
		params.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		params.Set("end_date", q.EndDate)
	}
	return params
}

// GetUsage retrieves usage analytics records. Records are returned as sent
// because their shape depends on the granularity.
func (s *AnalyticsService) GetUsage(ctx context.Context, query AnalyticsQuery) ([]UsageRecord, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	params := query.params()
	body, err := s.transport.Do(ctx, http.MethodGet, usagePath, params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage analytics: %w", err)
	}

	var records []UsageRecord
	if err := body.Decode("data", &records); err != nil {
		return nil, fmt.Errorf("failed to get usage analytics: %w", unusable(err))
	}

	s.logger.Debug().
		Str("granularity", params.Get("granularity")).
		Int("count", len(records)).
		Msg("Retrieved usage analytics from ChainReact")

	return records, nil
}
