package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

// Context keys for storing user information
type contextKey string

const userIDKey contextKey = "user_id"

const sessionName = "waffle_session"

// SessionAuth authenticates requests with a signed session cookie. The core
// services trust the user id it injects and perform their own ownership
// checks; token exchange with external identity providers happens elsewhere.
type SessionAuth struct {
	store *sessions.CookieStore
}

// NewSessionAuth creates a cookie-backed session authenticator
func NewSessionAuth(secret []byte) *SessionAuth {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionAuth{store: store}
}

// SignIn starts a session for the given user
func (a *SessionAuth) SignIn(w http.ResponseWriter, r *http.Request, userID int64) error {
	// Get returns a fresh session when the cookie is missing or invalid
	session, _ := a.store.Get(r, sessionName)
	session.Values["userID"] = userID
	return session.Save(r, w)
}

// SignOut expires the session cookie
func (a *SessionAuth) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := a.store.Get(r, sessionName)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// RequireAuth ensures the request carries a valid session. If not, returns
// 401; if so, injects the user id into the request context.
func (a *SessionAuth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := a.store.Get(r, sessionName)
		if err != nil {
			writeAuthError(w, "Invalid session")
			return
		}

		userID, ok := session.Values["userID"].(int64)
		if !ok || userID == 0 {
			writeAuthError(w, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id from the request context, or 0
// when the request is unauthenticated
func UserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   "AuthRequired",
		"message": message,
	}); err != nil {
		slog.Warn("failed to write auth error", slog.String("error", err.Error()))
	}
}
