package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/username/clinicboard/backend/src/logger"
	"github.com/username/clinicboard/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestHandleCalculate(t *testing.T) {
	h := NewMarginHandler(nil) // calculation endpoint touches no stored state

	body := `{
		"currentPrice": 1000,
		"expenses": {
			"doctorSalary": {"rub": 200},
			"materials": {"rub": 150},
			"acquiring": {"rub": 100},
			"custom": []
		},
		"desiredMarginPercent": 55
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/margin/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleCalculate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Calculation models.MarginCalculation `json:"calculation"`
		Gradient    []models.GradientSegment `json:"gradient"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if resp.Calculation.TotalExpenses != 450 {
		t.Errorf("totalExpenses = %v, want 450", resp.Calculation.TotalExpenses)
	}
	if math.Abs(resp.Calculation.CurrentMarginPercent-55) > 1e-9 {
		t.Errorf("currentMarginPercent = %v, want 55", resp.Calculation.CurrentMarginPercent)
	}
	if math.Abs(resp.Calculation.RecommendedPrice-1000) > 1e-9 {
		t.Errorf("recommendedPrice = %v, want 1000", resp.Calculation.RecommendedPrice)
	}
	// Three fixed categories plus the margin slice.
	if len(resp.Gradient) != 4 {
		t.Errorf("gradient segments = %d, want 4", len(resp.Gradient))
	}
}

func TestHandleCalculateBadBody(t *testing.T) {
	h := NewMarginHandler(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/margin/calculate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.HandleCalculate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCSRFMiddleware(t *testing.T) {
	middleware := CSRFMiddleware([]byte("test-csrf-auth-key-32-bytes-long!!"))
	protected := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("GET passes without token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("POST without token is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("POST with issued token pair passes", func(t *testing.T) {
		issueRec := httptest.NewRecorder()
		GetCSRFToken(issueRec, httptest.NewRequest(http.MethodGet, "/api/auth/csrf", nil))
		token := issueRec.Header().Get("X-CSRF-Token")
		if token == "" {
			t.Fatal("no token issued")
		}

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-CSRF-Token", token)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("POST with forged token is rejected", func(t *testing.T) {
		forged := "forged.token"
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-CSRF-Token", forged)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: forged})

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}
