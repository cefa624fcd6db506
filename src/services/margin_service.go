package services

import (
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/username/clinicboard/backend/src/logger"
	"github.com/username/clinicboard/backend/src/margin"
	"github.com/username/clinicboard/backend/src/model"
	"github.com/username/clinicboard/backend/src/models"
	"github.com/username/clinicboard/backend/src/security/validation"
)

const (
	defaultServiceName = "Новая услуга"
	defaultExpenseName = "Новая статья"
	maxNameLength      = 120
)

// marginServiceImpl debounces field edits: each keystroke-level change
// replaces the in-memory pending state and re-arms a per-service timer, and
// only the timer's expiry writes to the database. Reads overlay pending
// state so the client always sees its own edits. Every returned service is
// a private copy: pending state is only ever touched under the mutex, so
// callers can marshal results while further edits land.
type marginServiceImpl struct {
	db       *sql.DB
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*pendingWrite
}

type pendingWrite struct {
	svc   *models.MarginService
	timer *time.Timer
}

func NewMarginService(db *sql.DB, debounce time.Duration) MarginService {
	return &marginServiceImpl{
		db:       db,
		debounce: debounce,
		pending:  make(map[string]*pendingWrite),
	}
}

// cloneService copies a service deeply enough that the caller's value shares
// no mutable state with the pending map.
func cloneService(svc *models.MarginService) *models.MarginService {
	c := *svc
	c.Expenses.Custom = make([]models.CustomExpense, len(svc.Expenses.Custom))
	copy(c.Expenses.Custom, svc.Expenses.Custom)
	return &c
}

func sanitizeName(name, fallback string) string {
	name = strings.TrimSpace(validation.StripUnprintable(name))
	if name == "" {
		return fallback
	}
	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}
	return validation.SanitizeForFormulaInjection(name)
}

func (s *marginServiceImpl) List(userID int64) ([]*models.MarginService, error) {
	services, err := model.ListMarginServices(s.db, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, svc := range services {
		if p, ok := s.pending[svc.ID]; ok && p.svc.UserID == userID {
			services[i] = cloneService(p.svc)
		}
	}
	return services, nil
}

func (s *marginServiceImpl) Get(userID int64, id string) (*models.MarginService, error) {
	s.mu.Lock()
	if p, ok := s.pending[id]; ok && p.svc.UserID == userID {
		svc := cloneService(p.svc)
		s.mu.Unlock()
		return svc, nil
	}
	s.mu.Unlock()

	svc, err := model.GetMarginService(s.db, userID, id)
	if err != nil {
		if errors.Is(err, model.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}

func (s *marginServiceImpl) Create(userID int64, name string) (*models.MarginService, error) {
	now := time.Now().UTC()
	svc := &models.MarginService{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         sanitizeName(name, defaultServiceName),
		CurrentPrice: 0,
		Expenses:     models.NewServiceExpenses(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := model.InsertMarginService(s.db, svc); err != nil {
		return nil, err
	}
	logger.L.Info("Margin service created", "serviceID", svc.ID, "userID", userID)
	return svc, nil
}

func (s *marginServiceImpl) Rename(userID int64, id, name string) (*models.MarginService, error) {
	return s.edit(userID, id, func(svc *models.MarginService) error {
		svc.Name = sanitizeName(name, defaultServiceName)
		return nil
	})
}

// SetPrice changes the service price without touching the expense pairs:
// each line keeps both its rub amount and its stale percentage until that
// line is next edited.
func (s *marginServiceImpl) SetPrice(userID int64, id string, price float64) (*models.MarginService, error) {
	return s.edit(userID, id, func(svc *models.MarginService) error {
		svc.CurrentPrice = price
		return nil
	})
}

func (s *marginServiceImpl) UpdateExpense(userID int64, id, target, field string, value float64) (*models.MarginService, error) {
	return s.edit(userID, id, func(svc *models.MarginService) error {
		item := expenseTarget(&svc.Expenses, target)
		if item == nil {
			return ErrUnknownExpense
		}
		switch field {
		case "rub":
			margin.ApplyRubEdit(item, value, svc.CurrentPrice)
		case "percent":
			margin.ApplyPercentEdit(item, value, svc.CurrentPrice)
		default:
			return ErrUnknownExpense
		}
		return nil
	})
}

// expenseTarget resolves a fixed category name or a custom expense id to
// the edited pair inside the breakdown.
func expenseTarget(e *models.ServiceExpenses, target string) *models.ExpenseItem {
	switch target {
	case "doctorSalary":
		return &e.DoctorSalary
	case "materials":
		return &e.Materials
	case "acquiring":
		return &e.Acquiring
	}
	for i := range e.Custom {
		if e.Custom[i].ID == target {
			return &e.Custom[i].ExpenseItem
		}
	}
	return nil
}

func (s *marginServiceImpl) AddCustomExpense(userID int64, id, name string) (*models.MarginService, error) {
	return s.edit(userID, id, func(svc *models.MarginService) error {
		svc.Expenses.Custom = append(svc.Expenses.Custom, models.CustomExpense{
			ID:   uuid.New().String(),
			Name: sanitizeName(name, defaultExpenseName),
		})
		return nil
	})
}

func (s *marginServiceImpl) RemoveCustomExpense(userID int64, id, customID string) (*models.MarginService, error) {
	return s.edit(userID, id, func(svc *models.MarginService) error {
		for i, item := range svc.Expenses.Custom {
			if item.ID == customID {
				svc.Expenses.Custom = append(svc.Expenses.Custom[:i], svc.Expenses.Custom[i+1:]...)
				return nil
			}
		}
		return ErrUnknownExpense
	})
}

func (s *marginServiceImpl) Delete(userID int64, id string) error {
	s.mu.Lock()
	if p, ok := s.pending[id]; ok && p.svc.UserID == userID {
		p.timer.Stop()
		delete(s.pending, id)
	}
	s.mu.Unlock()

	err := model.DeleteMarginService(s.db, userID, id)
	if errors.Is(err, model.ErrServiceNotFound) {
		return ErrServiceNotFound
	}
	if err == nil {
		logger.L.Info("Margin service deleted", "serviceID", id, "userID", userID)
	}
	return err
}

// edit loads the freshest state (pending overlay first), applies the
// mutation and re-arms the debounce timer for this service.
func (s *marginServiceImpl) edit(userID int64, id string, mutate func(*models.MarginService) error) (*models.MarginService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var svc *models.MarginService
	if p, ok := s.pending[id]; ok && p.svc.UserID == userID {
		svc = p.svc
		p.timer.Stop()
	} else {
		loaded, err := model.GetMarginService(s.db, userID, id)
		if err != nil {
			if errors.Is(err, model.ErrServiceNotFound) {
				return nil, ErrServiceNotFound
			}
			return nil, err
		}
		svc = loaded
	}

	if err := mutate(svc); err != nil {
		// A failed mutation on already-pending state still needs its write.
		if p, ok := s.pending[id]; ok {
			p.timer.Reset(s.debounce)
		}
		return nil, err
	}
	svc.UpdatedAt = time.Now().UTC()

	s.pending[id] = &pendingWrite{
		svc: svc,
		timer: time.AfterFunc(s.debounce, func() {
			s.flushOne(id)
		}),
	}
	return cloneService(svc), nil
}

func (s *marginServiceImpl) flushOne(id string) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	s.mu.Unlock()

	if err := model.UpdateMarginService(s.db, p.svc); err != nil {
		logger.L.Error("Failed to persist margin service", "serviceID", id, "error", err)
	}
}

// Flush writes out everything still pending. Called on shutdown so debounced
// edits are not lost.
func (s *marginServiceImpl) Flush() {
	s.mu.Lock()
	writes := make([]*pendingWrite, 0, len(s.pending))
	for id, p := range s.pending {
		p.timer.Stop()
		writes = append(writes, p)
		delete(s.pending, id)
	}
	s.mu.Unlock()

	for _, p := range writes {
		if err := model.UpdateMarginService(s.db, p.svc); err != nil {
			logger.L.Error("Failed to flush margin service", "serviceID", p.svc.ID, "error", err)
		}
	}
	if len(writes) > 0 {
		logger.L.Info("Flushed pending margin edits", "count", len(writes))
	}
}
