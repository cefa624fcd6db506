package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/username/clinicboard/backend/src/config"
	"github.com/username/clinicboard/backend/src/database"
	"github.com/username/clinicboard/backend/src/logger"
	"github.com/username/clinicboard/backend/src/model"
	"github.com/username/clinicboard/backend/src/security"
	"github.com/username/clinicboard/backend/src/services"
	"github.com/username/clinicboard/backend/src/utils"
)

const minPasswordLength = 8

type UserHandler struct {
	authService  *security.AuthService
	emailService services.EmailService
}

func NewUserHandler(authService *security.AuthService, emailService services.EmailService) *UserHandler {
	return &UserHandler{
		authService:  authService,
		emailService: emailService,
	}
}

func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	credentials.Username = strings.TrimSpace(credentials.Username)
	credentials.Email = strings.TrimSpace(credentials.Email)
	if credentials.Username == "" {
		utils.SendJSONError(w, "Username is required", http.StatusBadRequest)
		return
	}
	if _, err := mail.ParseAddress(credentials.Email); err != nil {
		utils.SendJSONError(w, "A valid email address is required", http.StatusBadRequest)
		return
	}
	if len(credentials.Password) < minPasswordLength {
		utils.SendJSONError(w, fmt.Sprintf("Password must be at least %d characters", minPasswordLength), http.StatusBadRequest)
		return
	}

	hashedPassword, err := h.authService.HashPassword(credentials.Password)
	if err != nil {
		logger.L.Error("Failed to hash password during registration", "error", err)
		utils.SendJSONError(w, "Failed to process registration", http.StatusInternalServerError)
		return
	}

	user := &model.User{
		Username:     credentials.Username,
		Email:        credentials.Email,
		Password:     hashedPassword,
		AuthProvider: "local",
	}

	if err := user.CreateUser(database.DB); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			utils.SendJSONError(w, "Username already exists", http.StatusConflict)
			return
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			utils.SendJSONError(w, "Email already registered", http.StatusConflict)
			return
		}
		logger.L.Error("Failed to create user", "error", err, "username", credentials.Username)
		utils.SendJSONError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	token, err := security.GenerateSecureToken()
	if err == nil {
		err = model.SetEmailVerificationToken(database.DB, user.ID, token, time.Now().Add(config.Cfg.VerificationTokenExpiry))
	}
	if err != nil {
		logger.L.Error("Failed to store email verification token", "error", err, "userID", user.ID)
	} else {
		// Email delivery is slow and best-effort; registration succeeds either way.
		go func() {
			if err := h.emailService.SendVerificationEmail(user.Email, user.Username, token); err != nil {
				logger.L.Error("Failed to send verification email", "error", err, "userID", user.ID)
			}
		}()
	}

	logger.L.Info("User registered", "userID", user.ID, "username", user.Username)
	utils.SendJSON(w, map[string]string{
		"message": "User registered successfully. Please check your email to verify your account.",
	}, http.StatusCreated)
}

func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByUsername(database.DB, credentials.Username)
	if err != nil {
		logger.L.Warn("Login failed: user lookup", "username", credentials.Username)
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if user.AuthProvider != "local" {
		utils.SendJSONError(w, "This account uses Google sign-in", http.StatusUnauthorized)
		return
	}

	if err := user.CheckPassword(credentials.Password); err != nil {
		logger.L.Warn("Login failed: password mismatch", "username", credentials.Username)
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	accessToken, refreshToken, err := h.issueSession(r, user.ID)
	if err != nil {
		logger.L.Error("Failed to issue session", "error", err, "userID", user.ID)
		utils.SendJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	logger.L.Info("User logged in", "userID", user.ID)
	utils.SendJSON(w, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": map[string]interface{}{
			"id":                user.ID,
			"username":          user.Username,
			"email":             user.Email,
			"is_email_verified": user.IsEmailVerified,
		},
	}, http.StatusOK)
}

// issueSession generates an access/refresh token pair and records the session.
func (h *UserHandler) issueSession(r *http.Request, userID int64) (accessToken, refreshToken string, err error) {
	accessToken, err = h.authService.GenerateToken(fmt.Sprintf("%d", userID))
	if err != nil {
		return "", "", err
	}
	refreshToken, err = h.authService.GenerateRefreshToken()
	if err != nil {
		return "", "", err
	}

	session := &model.Session{
		UserID:       userID,
		Token:        accessToken,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     r.RemoteAddr,
		ExpiresAt:    time.Now().Add(config.Cfg.RefreshTokenExpiry),
	}
	if err := model.CreateSession(database.DB, session); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// RefreshTokenHandler rotates a token pair. The refresh token is opaque and
// validated against the sessions table, not as a JWT.
func (h *UserHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil || requestBody.RefreshToken == "" {
		utils.SendJSONError(w, "Refresh token is required", http.StatusBadRequest)
		return
	}

	session, err := model.GetSessionByRefreshToken(database.DB, requestBody.RefreshToken)
	if err != nil {
		logger.L.Warn("Refresh token validation failed", "error", err)
		utils.SendJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	accessToken, refreshToken, err := h.issueSession(r, session.UserID)
	if err != nil {
		logger.L.Error("Failed to rotate session", "error", err, "userID", session.UserID)
		utils.SendJSONError(w, "Failed to refresh session", http.StatusInternalServerError)
		return
	}

	if err := model.DeleteSessionByID(database.DB, session.ID); err != nil {
		logger.L.Warn("Failed to delete rotated session", "error", err, "sessionID", session.ID)
	}

	utils.SendJSON(w, map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	}, http.StatusOK)
}

func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
		return
	}

	if err := model.DeleteSessionByToken(database.DB, tokenString); err != nil {
		logger.L.Warn("Failed to delete session on logout", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// VerifyEmailHandler consumes the token from the verification email link.
func (h *UserHandler) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.SendJSONError(w, "Verification token is required", http.StatusBadRequest)
		return
	}

	if err := model.VerifyEmailByToken(database.DB, token); err != nil {
		logger.L.Warn("Email verification failed", "error", err)
		utils.SendJSONError(w, "Invalid or expired verification token", http.StatusBadRequest)
		return
	}

	utils.SendJSON(w, map[string]string{"message": "Email verified successfully"}, http.StatusOK)
}

// RequestPasswordResetHandler always answers 200 so the endpoint cannot be
// used to probe which emails are registered.
func (h *UserHandler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil || requestBody.Email == "" {
		utils.SendJSONError(w, "Email is required", http.StatusBadRequest)
		return
	}

	genericResponse := map[string]string{
		"message": "If an account exists for that email, a password reset link has been sent.",
	}

	user, err := model.GetUserByEmail(database.DB, requestBody.Email)
	if err != nil || user.AuthProvider != "local" {
		utils.SendJSON(w, genericResponse, http.StatusOK)
		return
	}

	token, err := security.GenerateSecureToken()
	if err == nil {
		err = model.SetPasswordResetToken(database.DB, user.ID, token, time.Now().Add(config.Cfg.PasswordResetTokenExpiry))
	}
	if err != nil {
		logger.L.Error("Failed to store password reset token", "error", err, "userID", user.ID)
		utils.SendJSON(w, genericResponse, http.StatusOK)
		return
	}

	go func() {
		if err := h.emailService.SendPasswordResetEmail(user.Email, user.Username, token); err != nil {
			logger.L.Error("Failed to send password reset email", "error", err, "userID", user.ID)
		}
	}()

	utils.SendJSON(w, genericResponse, http.StatusOK)
}

func (h *UserHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil || requestBody.Token == "" {
		utils.SendJSONError(w, "Token and new password are required", http.StatusBadRequest)
		return
	}
	if len(requestBody.NewPassword) < minPasswordLength {
		utils.SendJSONError(w, fmt.Sprintf("Password must be at least %d characters", minPasswordLength), http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByResetToken(database.DB, requestBody.Token)
	if err != nil {
		utils.SendJSONError(w, "Invalid or expired reset token", http.StatusBadRequest)
		return
	}

	hashedPassword, err := h.authService.HashPassword(requestBody.NewPassword)
	if err != nil {
		logger.L.Error("Failed to hash new password", "error", err, "userID", user.ID)
		utils.SendJSONError(w, "Failed to reset password", http.StatusInternalServerError)
		return
	}

	if err := model.UpdatePassword(database.DB, user.ID, hashedPassword); err != nil {
		logger.L.Error("Failed to update password", "error", err, "userID", user.ID)
		utils.SendJSONError(w, "Failed to reset password", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Password reset completed", "userID", user.ID)
	utils.SendJSON(w, map[string]string{"message": "Password has been reset successfully"}, http.StatusOK)
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}
