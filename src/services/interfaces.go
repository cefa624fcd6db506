package services

import (
	"context"
	"errors"
	"time"

	"github.com/username/clinicboard/backend/src/analytics"
	"github.com/username/clinicboard/backend/src/models"
)

var (
	// ErrFeedUnavailable wraps transport failures of the summary feed; the
	// previously published snapshot stays in place when it occurs.
	ErrFeedUnavailable = errors.New("summary feed unavailable")

	ErrServiceNotFound = errors.New("service not found")
	ErrUnknownExpense  = errors.New("unknown expense target")
)

// DashboardService owns the published dashboard snapshot: it fetches the
// summary feed, parses it and swaps the result in atomically.
type DashboardService interface {
	// Snapshot returns the currently published data and when it was fetched.
	// The zero fetch time means no successful fetch has happened yet.
	Snapshot() (models.DashboardData, time.Time)
	// Refresh fetches and publishes the feed once. The previous snapshot
	// stays published if the fetch fails.
	Refresh(ctx context.Context) error
	// Run re-fetches on the configured interval until ctx is cancelled.
	Run(ctx context.Context)
	// MonthTrend returns the daily revenue of one month with the fitted
	// trend attached, or false when the month has no daily data.
	MonthTrend(key models.MonthKey) ([]analytics.TrendPoint, bool)
}

// MarginService manages the per-user priced services of the margin
// calculator. Field edits are debounced: rapid keystrokes coalesce into one
// database write after a quiet period, while reads always see the latest
// edited state.
type MarginService interface {
	List(userID int64) ([]*models.MarginService, error)
	Get(userID int64, id string) (*models.MarginService, error)
	Create(userID int64, name string) (*models.MarginService, error)
	Rename(userID int64, id, name string) (*models.MarginService, error)
	SetPrice(userID int64, id string, price float64) (*models.MarginService, error)
	// UpdateExpense applies one rub-or-percent edit to a fixed category
	// ("doctorSalary", "materials", "acquiring") or a custom expense id.
	UpdateExpense(userID int64, id, target, field string, value float64) (*models.MarginService, error)
	AddCustomExpense(userID int64, id, name string) (*models.MarginService, error)
	RemoveCustomExpense(userID int64, id, customID string) (*models.MarginService, error)
	Delete(userID int64, id string) error
	// Flush writes out all pending debounced edits. Called on shutdown.
	Flush()
}

// EmailService sends account emails.
type EmailService interface {
	SendVerificationEmail(toEmail, username, token string) error
	SendPasswordResetEmail(toEmail, username, token string) error
}
