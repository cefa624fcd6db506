package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/clinicboard/backend/src/models"
	"github.com/username/clinicboard/backend/src/parsers"
)

// testFeed builds a single-year feed with totals and a short daily table.
func testFeed() string {
	rows := make([]string, 91)
	for i := range rows {
		rows[i] = "-"
	}
	rows[0] = "," + strings.Join(models.CanonicalMonths[:], ",")
	rows[1] = "Доходы,100000,120000"
	rows[2] = "Расходы,60000,70000"
	rows[3] = "Дельта,40000,50000"
	rows[59] = ",январь"
	rows[60] = "1,1000"
	rows[61] = "2,2000"
	rows[62] = "3,3000"
	return strings.Join(rows, "\n")
}

func newFeedServer(t *testing.T, failing *atomic.Bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing != nil && failing.Load() {
			http.Error(w, "backend error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(testFeed()))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDashboardService(t *testing.T, url string) DashboardService {
	t.Helper()
	parser := parsers.NewSummaryParser(parsers.SingleYearLayout)
	return NewDashboardService(url, time.Hour, parser, cache.New(cache.NoExpiration, 0))
}

func TestDashboardRefreshPublishesSnapshot(t *testing.T) {
	srv := newFeedServer(t, nil)
	svc := newTestDashboardService(t, srv.URL)

	data, fetchedAt := svc.Snapshot()
	if len(data.Monthly) != 0 || !fetchedAt.IsZero() {
		t.Fatalf("pre-refresh snapshot not empty: %d months, fetchedAt %v", len(data.Monthly), fetchedAt)
	}

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	data, fetchedAt = svc.Snapshot()
	if len(data.Monthly) != 12 {
		t.Errorf("monthly records = %d, want 12", len(data.Monthly))
	}
	if data.Monthly[0].Income != 100000 {
		t.Errorf("january income = %v, want 100000", data.Monthly[0].Income)
	}
	if fetchedAt.IsZero() {
		t.Error("fetchedAt not set after successful refresh")
	}
}

func TestDashboardRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	var failing atomic.Bool
	srv := newFeedServer(t, &failing)
	svc := newTestDashboardService(t, srv.URL)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}
	before, fetchedBefore := svc.Snapshot()

	failing.Store(true)
	err := svc.Refresh(context.Background())
	if !errors.Is(err, ErrFeedUnavailable) {
		t.Fatalf("failed Refresh error = %v, want ErrFeedUnavailable", err)
	}

	after, fetchedAfter := svc.Snapshot()
	if !reflect.DeepEqual(before, after) || !fetchedBefore.Equal(fetchedAfter) {
		t.Error("failed refresh replaced the published snapshot")
	}
}

func TestDashboardRefreshRejectsNonCSVFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>Sign in</body></html>"))
	}))
	t.Cleanup(srv.Close)

	svc := newTestDashboardService(t, srv.URL)
	if err := svc.Refresh(context.Background()); !errors.Is(err, ErrFeedUnavailable) {
		t.Errorf("HTML feed Refresh error = %v, want ErrFeedUnavailable", err)
	}
}

func TestDashboardRefreshWithoutURL(t *testing.T) {
	svc := newTestDashboardService(t, "")
	if err := svc.Refresh(context.Background()); !errors.Is(err, ErrFeedUnavailable) {
		t.Errorf("Refresh without URL error = %v, want ErrFeedUnavailable", err)
	}
}

func TestDashboardMonthTrend(t *testing.T) {
	srv := newFeedServer(t, nil)
	svc := newTestDashboardService(t, srv.URL)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	january := models.NewMonthKey(0, 1)
	points, ok := svc.MonthTrend(january)
	if !ok {
		t.Fatal("MonthTrend(январь) reported no data")
	}
	if len(points) != 3 {
		t.Fatalf("trend points = %d, want 3", len(points))
	}
	// Daily amounts 1000/2000/3000 lie exactly on trend = 1000*day.
	for _, pt := range points {
		want := 1000 * float64(pt.Day)
		if pt.Trend != want {
			t.Errorf("day %d: trend = %v, want %v", pt.Day, pt.Trend, want)
		}
	}

	cached, ok := svc.MonthTrend(january)
	if !ok || !reflect.DeepEqual(points, cached) {
		t.Error("cached trend differs from computed trend")
	}

	if _, ok := svc.MonthTrend(models.NewMonthKey(0, 7)); ok {
		t.Error("MonthTrend reported data for a month with no daily rows")
	}
}
