package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/clinicboard/backend/src/logger"
	"github.com/username/clinicboard/backend/src/margin"
	"github.com/username/clinicboard/backend/src/models"
	"github.com/username/clinicboard/backend/src/services"
	"github.com/username/clinicboard/backend/src/utils"
)

type MarginHandler struct {
	marginService services.MarginService
}

func NewMarginHandler(marginService services.MarginService) *MarginHandler {
	return &MarginHandler{marginService: marginService}
}

// serviceView decorates a stored service with its derived margin picture,
// composition segments and display labels, so clients never recompute
// pricing math or locale formatting.
type serviceView struct {
	*models.MarginService
	Calculation models.MarginCalculation `json:"calculation"`
	Gradient    []models.GradientSegment `json:"gradient"`
	PriceLabel  string                   `json:"priceLabel"`
	MarginLabel string                   `json:"marginLabel"`
}

func newServiceView(svc *models.MarginService) serviceView {
	calc := margin.Calculate(svc.CurrentPrice, svc.Expenses, 0, 0)
	return serviceView{
		MarginService: svc,
		Calculation:   calc,
		Gradient:      margin.Segments(svc.CurrentPrice, svc.Expenses, calc.CurrentMarginPercent),
		PriceLabel:    utils.FormatCurrency(svc.CurrentPrice),
		MarginLabel:   utils.FormatPercent(calc.CurrentMarginPercent),
	}
}

func (h *MarginHandler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "User not authenticated", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

func (h *MarginHandler) respondService(w http.ResponseWriter, svc *models.MarginService, err error, status int) {
	if err != nil {
		switch {
		case errors.Is(err, services.ErrServiceNotFound):
			utils.SendJSONError(w, "Service not found", http.StatusNotFound)
		case errors.Is(err, services.ErrUnknownExpense):
			utils.SendJSONError(w, "Unknown expense target", http.StatusBadRequest)
		default:
			logger.L.Error("Margin service operation failed", "error", err)
			utils.SendJSONError(w, "Operation failed", http.StatusInternalServerError)
		}
		return
	}
	utils.SendJSON(w, newServiceView(svc), status)
}

func (h *MarginHandler) HandleListServices(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	list, err := h.marginService.List(userID)
	if err != nil {
		logger.L.Error("Failed to list margin services", "error", err, "userID", userID)
		utils.SendJSONError(w, "Failed to list services", http.StatusInternalServerError)
		return
	}

	views := make([]serviceView, 0, len(list))
	for _, svc := range list {
		views = append(views, newServiceView(svc))
	}
	utils.SendJSON(w, views, http.StatusOK)
}

func (h *MarginHandler) HandleCreateService(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	svc, err := h.marginService.Create(userID, body.Name)
	h.respondService(w, svc, err, http.StatusCreated)
}

func (h *MarginHandler) HandleGetService(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	svc, err := h.marginService.Get(userID, r.PathValue("id"))
	h.respondService(w, svc, err, http.StatusOK)
}

// HandleUpdateService applies a partial update: a name, a price, or both.
func (h *MarginHandler) HandleUpdateService(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	var body struct {
		Name  *string  `json:"name"`
		Price *float64 `json:"currentPrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Name == nil && body.Price == nil {
		utils.SendJSONError(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	var svc *models.MarginService
	var err error
	if body.Name != nil {
		svc, err = h.marginService.Rename(userID, id, *body.Name)
		if err != nil {
			h.respondService(w, nil, err, 0)
			return
		}
	}
	if body.Price != nil {
		svc, err = h.marginService.SetPrice(userID, id, *body.Price)
	}
	h.respondService(w, svc, err, http.StatusOK)
}

// HandleUpdateExpense applies one rub-or-percent edit to a fixed category or
// a custom expense line.
func (h *MarginHandler) HandleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	var body struct {
		Target string  `json:"target"`
		Field  string  `json:"field"`
		Value  float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	svc, err := h.marginService.UpdateExpense(userID, id, body.Target, body.Field, body.Value)
	h.respondService(w, svc, err, http.StatusOK)
}

func (h *MarginHandler) HandleAddCustomExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	svc, err := h.marginService.AddCustomExpense(userID, r.PathValue("id"), body.Name)
	h.respondService(w, svc, err, http.StatusOK)
}

func (h *MarginHandler) HandleRemoveCustomExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	svc, err := h.marginService.RemoveCustomExpense(userID, r.PathValue("id"), r.PathValue("expenseId"))
	h.respondService(w, svc, err, http.StatusOK)
}

func (h *MarginHandler) HandleDeleteService(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.marginService.Delete(userID, r.PathValue("id")); err != nil {
		if errors.Is(err, services.ErrServiceNotFound) {
			utils.SendJSONError(w, "Service not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete margin service", "error", err, "userID", userID)
		utils.SendJSONError(w, "Failed to delete service", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCalculate runs a what-if margin computation without touching stored
// state: callers supply a price, a breakdown and optionally a target margin
// or hypothetical new price.
func (h *MarginHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPrice         float64                `json:"currentPrice"`
		Expenses             models.ServiceExpenses `json:"expenses"`
		DesiredMarginPercent float64                `json:"desiredMarginPercent"`
		NewPrice             float64                `json:"newPrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	calc := margin.Calculate(body.CurrentPrice, body.Expenses, body.DesiredMarginPercent, body.NewPrice)
	utils.SendJSON(w, map[string]interface{}{
		"calculation": calc,
		"gradient":    margin.Segments(body.CurrentPrice, body.Expenses, calc.CurrentMarginPercent),
	}, http.StatusOK)
}
