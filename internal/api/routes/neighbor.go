package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JwahoonKim/Waffle-Market/internal/api/middleware"
	"github.com/JwahoonKim/Waffle-Market/internal/core/neighbor"
)

// NeighborHandler handles community feed endpoints
type NeighborHandler struct {
	neighborService neighbor.Service
}

// NewNeighborHandler creates a new neighbor handler
func NewNeighborHandler(neighborService neighbor.Service) *NeighborHandler {
	return &NeighborHandler{neighborService: neighborService}
}

// NeighborRoutes returns the community feed routes. Everything here requires
// a session.
func NeighborRoutes(neighborService neighbor.Service, auth *middleware.SessionAuth) chi.Router {
	h := NewNeighborHandler(neighborService)
	r := chi.NewRouter()

	r.Use(auth.RequireAuth)

	r.Post("/", h.CreatePost)
	r.Get("/", h.ListPosts)
	r.Get("/mine", h.MyPosts)
	r.Get("/liked", h.LikedPosts)
	r.Get("/{postID}", h.GetPost)
	r.Patch("/{postID}", h.UpdatePost)
	r.Delete("/{postID}", h.DeletePost)
	r.Post("/{postID}/like", h.ToggleLike)

	return r
}

type neighborPostRequest struct {
	Content string `json:"content"`
}

// CreatePost publishes a new feed entry
func (h *NeighborHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req neighborPostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.neighborService.CreatePost(r.Context(), middleware.UserID(r), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// GetPost returns one feed entry
func (h *NeighborHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.neighborService.GetPost(r.Context(), middleware.UserID(r), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListPosts returns one feed page, newest first
func (h *NeighborHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	req := neighbor.ListRequest{
		Keyword: r.URL.Query().Get("keyword"),
		Limit:   queryInt(r, "limit", neighbor.DefaultPageSize),
		Offset:  queryInt(r, "offset", 0),
	}

	views, err := h.neighborService.ListPosts(r.Context(), middleware.UserID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// UpdatePost rewrites the caller's feed entry
func (h *NeighborHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req neighborPostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.neighborService.UpdatePost(r.Context(), middleware.UserID(r), postID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeletePost removes the caller's feed entry
func (h *NeighborHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.neighborService.DeletePost(r.Context(), middleware.UserID(r), postID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyPosts returns the caller's own feed entries
func (h *NeighborHandler) MyPosts(w http.ResponseWriter, r *http.Request) {
	views, err := h.neighborService.MyPosts(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// LikedPosts returns the feed entries the caller has liked
func (h *NeighborHandler) LikedPosts(w http.ResponseWriter, r *http.Request) {
	views, err := h.neighborService.LikedPosts(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// ToggleLike flips the caller's like on the feed entry
func (h *NeighborHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.neighborService.ToggleLike(r.Context(), middleware.UserID(r), postID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
