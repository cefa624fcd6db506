package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/clinicboard/backend/src/analytics"
	"github.com/username/clinicboard/backend/src/logger"
	"github.com/username/clinicboard/backend/src/models"
	"github.com/username/clinicboard/backend/src/parsers"
	"github.com/username/clinicboard/backend/src/security/validation"
	"golang.org/x/net/publicsuffix"
)

const trendCacheExpiration = cache.NoExpiration // flushed on every refresh

// snapshotState is one immutable published parse result. The service swaps
// whole states, so readers never observe a half-built model.
type snapshotState struct {
	data      models.DashboardData
	fetchedAt time.Time
}

type dashboardServiceImpl struct {
	feedURL    string
	interval   time.Duration
	parser     *parsers.SummaryParser
	httpClient *http.Client
	snapshot   atomic.Pointer[snapshotState]
	trendCache *cache.Cache
}

// NewDashboardService builds the feed collaborator. The HTTP client carries
// a cookie jar: published-spreadsheet endpoints redirect through hosts that
// set cookies before serving the export.
func NewDashboardService(feedURL string, interval time.Duration, parser *parsers.SummaryParser, trendCache *cache.Cache) DashboardService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar for feed client", "error", err)
	}

	s := &dashboardServiceImpl{
		feedURL:  feedURL,
		interval: interval,
		parser:   parser,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 20 * time.Second,
		},
		trendCache: trendCache,
	}
	s.snapshot.Store(&snapshotState{data: models.NewDashboardData()})
	return s
}

func (s *dashboardServiceImpl) Snapshot() (models.DashboardData, time.Time) {
	state := s.snapshot.Load()
	return state.data, state.fetchedAt
}

func (s *dashboardServiceImpl) Refresh(ctx context.Context) error {
	if s.feedURL == "" {
		return fmt.Errorf("%w: no feed URL configured", ErrFeedUnavailable)
	}

	start := time.Now()
	raw, err := s.fetchFeed(ctx)
	if err != nil {
		logger.L.Warn("Summary feed fetch failed; keeping previous snapshot", "error", err)
		return fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	// Parsing is total: malformed feeds produce the empty default rather
	// than an error, and that default is published as-is.
	data := s.parser.Parse(raw)
	s.snapshot.Store(&snapshotState{data: data, fetchedAt: time.Now()})
	s.trendCache.Flush()

	logger.L.Info("Dashboard snapshot refreshed",
		"months", len(data.Monthly),
		"bytes", len(raw),
		"duration", time.Since(start))
	return nil
}

func (s *dashboardServiceImpl) fetchFeed(ctx context.Context) (string, error) {
	// Cache-busting timestamp: published exports sit behind aggressive
	// intermediary caches.
	sep := "?"
	for _, r := range s.feedURL {
		if r == '?' {
			sep = "&"
			break
		}
	}
	url := fmt.Sprintf("%s%st=%d", s.feedURL, sep, time.Now().UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
	if err := validation.ValidateFeedContentType(resp.Header.Get("Content-Type")); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if err := validation.ValidateFeedContent(body); err != nil {
		return "", err
	}
	return string(body), nil
}

// Run refreshes once immediately, then on every tick until ctx is
// cancelled. Ticks are handled sequentially; a concurrent manual Refresh is
// last-write-wins, which is safe because parses share no state.
func (s *dashboardServiceImpl) Run(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		logger.L.Warn("Initial dashboard refresh failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.L.Info("Dashboard refresh loop stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				logger.L.Warn("Scheduled dashboard refresh failed", "error", err)
			}
		}
	}
}

func (s *dashboardServiceImpl) MonthTrend(key models.MonthKey) ([]analytics.TrendPoint, bool) {
	cacheKey := "trend_" + key.String()
	if cached, found := s.trendCache.Get(cacheKey); found {
		return cached.([]analytics.TrendPoint), true
	}

	data, _ := s.Snapshot()
	series, ok := data.DailyIncome[key]
	if !ok {
		return nil, false
	}

	points := analytics.ComputeTrend(series)
	s.trendCache.Set(cacheKey, points, trendCacheExpiration)
	return points, true
}
