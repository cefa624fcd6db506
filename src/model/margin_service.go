package model

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/username/clinicboard/backend/src/models"
)

var ErrServiceNotFound = errors.New("margin service not found")

// The expense breakdown is stored as one JSON column: it is always read and
// written as a whole, and its custom-entry list has no fixed shape.

// InsertMarginService stores a freshly created service.
func InsertMarginService(db *sql.DB, svc *models.MarginService) error {
	expenses, err := json.Marshal(svc.Expenses)
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO margin_services (id, user_id, name, current_price, expenses, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		svc.ID, svc.UserID, svc.Name, svc.CurrentPrice, string(expenses), svc.CreatedAt, svc.UpdatedAt)
	return err
}

// UpdateMarginService persists the full current state of a service.
func UpdateMarginService(db *sql.DB, svc *models.MarginService) error {
	expenses, err := json.Marshal(svc.Expenses)
	if err != nil {
		return err
	}
	res, err := db.Exec(
		`UPDATE margin_services SET name = ?, current_price = ?, expenses = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		svc.Name, svc.CurrentPrice, string(expenses), svc.UpdatedAt, svc.ID, svc.UserID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// DeleteMarginService removes one service owned by the user.
func DeleteMarginService(db *sql.DB, userID int64, id string) error {
	res, err := db.Exec(`DELETE FROM margin_services WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func scanMarginService(scan func(dest ...interface{}) error) (*models.MarginService, error) {
	var svc models.MarginService
	var expensesJSON string
	err := scan(&svc.ID, &svc.UserID, &svc.Name, &svc.CurrentPrice, &expensesJSON, &svc.CreatedAt, &svc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	svc.Expenses = models.NewServiceExpenses()
	if expensesJSON != "" && expensesJSON != "{}" {
		if err := json.Unmarshal([]byte(expensesJSON), &svc.Expenses); err != nil {
			return nil, err
		}
	}
	if svc.Expenses.Custom == nil {
		svc.Expenses.Custom = []models.CustomExpense{}
	}
	return &svc, nil
}

// GetMarginService fetches one service owned by the user.
func GetMarginService(db *sql.DB, userID int64, id string) (*models.MarginService, error) {
	row := db.QueryRow(
		`SELECT id, user_id, name, current_price, expenses, created_at, updated_at
		 FROM margin_services WHERE id = ? AND user_id = ?`, id, userID)
	return scanMarginService(row.Scan)
}

// ListMarginServices returns the user's services in creation order.
func ListMarginServices(db *sql.DB, userID int64) ([]*models.MarginService, error) {
	rows, err := db.Query(
		`SELECT id, user_id, name, current_price, expenses, created_at, updated_at
		 FROM margin_services WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []*models.MarginService{}
	for rows.Next() {
		svc, err := scanMarginService(rows.Scan)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}
