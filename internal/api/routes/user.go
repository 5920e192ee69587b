package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JwahoonKim/Waffle-Market/internal/api/middleware"
	"github.com/JwahoonKim/Waffle-Market/internal/core/trade"
	"github.com/JwahoonKim/Waffle-Market/internal/core/users"
)

// UserHandler handles account and profile endpoints
type UserHandler struct {
	userService  users.UserService
	tradeService trade.Service
	auth         *middleware.SessionAuth
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService users.UserService, tradeService trade.Service, auth *middleware.SessionAuth) *UserHandler {
	return &UserHandler{
		userService:  userService,
		tradeService: tradeService,
		auth:         auth,
	}
}

// UserRoutes returns account, profile and history routes
func UserRoutes(userService users.UserService, tradeService trade.Service, auth *middleware.SessionAuth) chi.Router {
	h := NewUserHandler(userService, tradeService, auth)
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
		r.Patch("/me/username", h.EditUsername)
		r.Patch("/me/location", h.EditLocation)
		r.Patch("/me/search-scope", h.EditSearchScope)
		r.Patch("/me/password", h.EditPassword)

		r.Get("/me/buys", h.BuyHistory)
		r.Get("/me/sells", h.SellHistory)
		r.Get("/me/likes", h.LikedPosts)

		r.Get("/warmest", h.Warmest)
		r.Get("/{userID}", h.GetProfile)
	})

	return r
}

// Signup creates an account and starts a session for it
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req users.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.Signup(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.SignIn(w, r, user.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and starts a session
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.SignIn(w, r, user.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Logout expires the caller's session
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(w, r); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the caller's own profile
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetProfile(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetProfile returns another member's profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// EditUsername renames the caller's account
func (h *UserHandler) EditUsername(w http.ResponseWriter, r *http.Request) {
	var req users.EditUsernameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.EditUsername(r.Context(), middleware.UserID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// EditLocation moves the caller to a new neighborhood
func (h *UserHandler) EditLocation(w http.ResponseWriter, r *http.Request) {
	var req users.EditLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.EditLocation(r.Context(), middleware.UserID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// EditSearchScope changes the caller's discovery radius
func (h *UserHandler) EditSearchScope(w http.ResponseWriter, r *http.Request) {
	var req users.EditSearchScopeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.EditSearchScope(r.Context(), middleware.UserID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// EditPassword changes the caller's password after verifying the current one
func (h *UserHandler) EditPassword(w http.ResponseWriter, r *http.Request) {
	var req users.EditPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.userService.EditPassword(r.Context(), middleware.UserID(r), req); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Warmest returns the top members by temperature
func (h *UserHandler) Warmest(w http.ResponseWriter, r *http.Request) {
	warmest, err := h.userService.WarmestUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, warmest)
}

// BuyHistory returns completed trades where the caller was the buyer
func (h *UserHandler) BuyHistory(w http.ResponseWriter, r *http.Request) {
	posts, err := h.tradeService.BuyHistory(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// SellHistory returns every listing the caller published
func (h *UserHandler) SellHistory(w http.ResponseWriter, r *http.Request) {
	posts, err := h.tradeService.SellHistory(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// LikedPosts returns the listings the caller has liked
func (h *UserHandler) LikedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.tradeService.LikedPosts(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}
