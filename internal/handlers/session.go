package handlers

import (
	"net/http"

	"bakery-storefront/internal/models"

	"go.uber.org/zap"
)

// SessionHandler attaches identities issued by the auth service to the visitor's session
type SessionHandler struct {
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{logger: logger}
}

// SessionUserResponse describes who is logged in to the session
type SessionUserResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
	DisplayName   string       `json:"displayName,omitempty"`
	Admin         bool         `json:"admin"`
}

func newSessionUserResponse(user *models.User) SessionUserResponse {
	if user == nil {
		return SessionUserResponse{}
	}
	return SessionUserResponse{
		Authenticated: true,
		User:          user,
		DisplayName:   user.FullName(),
		Admin:         user.IsAdmin(),
	}
}

// GetUser returns the session identity
func (h *SessionHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}
	user, _ := sess.CurrentUser()
	writeJSON(w, http.StatusOK, newSessionUserResponse(user))
}

// Login stores the identity on the session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	var user models.User
	if err := decodeJSON(w, r, &user); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user data")
		return
	}
	if err := sess.Login(&user); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user data")
		return
	}

	h.logger.Info("user logged in",
		zap.String("session_id", sess.ID),
		zap.Int("user_id", user.ID))

	current, _ := sess.CurrentUser()
	writeJSON(w, http.StatusOK, newSessionUserResponse(current))
}

// Logout drops the identity and clears the cart
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	sess.Logout()
	h.logger.Info("user logged out", zap.String("session_id", sess.ID))
	writeJSON(w, http.StatusOK, newSessionUserResponse(nil))
}
