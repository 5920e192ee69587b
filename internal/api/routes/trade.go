package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JwahoonKim/Waffle-Market/internal/api/middleware"
	"github.com/JwahoonKim/Waffle-Market/internal/core/trade"
)

// TradeHandler handles listing endpoints
type TradeHandler struct {
	tradeService trade.Service
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(tradeService trade.Service) *TradeHandler {
	return &TradeHandler{tradeService: tradeService}
}

// TradeRoutes returns listing CRUD, discovery and lifecycle routes.
// Everything here requires a session.
func TradeRoutes(tradeService trade.Service, auth *middleware.SessionAuth) chi.Router {
	h := NewTradeHandler(tradeService)
	r := chi.NewRouter()

	r.Use(auth.RequireAuth)

	r.Post("/", h.CreatePost)
	r.Get("/", h.SearchPosts)
	r.Get("/top", h.TopLiked)
	r.Get("/{postID}", h.GetPost)
	r.Patch("/{postID}", h.UpdatePost)
	r.Delete("/{postID}", h.DeletePost)

	r.Get("/{postID}/reservation", h.GetReservation)
	r.Post("/{postID}/reserve", h.Reserve)
	r.Post("/{postID}/confirm", h.Confirm)
	r.Post("/{postID}/cancel", h.Cancel)
	r.Post("/{postID}/like", h.ToggleLike)

	return r
}

// CreatePost publishes a new listing at the caller's stored coordinate
func (h *TradeHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req trade.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.tradeService.CreatePost(r.Context(), middleware.UserID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// GetPost returns one listing and counts the view
func (h *TradeHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.tradeService.GetPost(r.Context(), middleware.UserID(r), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SearchPosts runs the discovery query within the caller's search scope
func (h *TradeHandler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	// An absent limit gets the default page size; an explicit value, valid or
	// not, is the service's to judge
	req := trade.SearchRequest{
		Keyword:     r.URL.Query().Get("keyword"),
		Limit:       queryInt(r, "limit", trade.DefaultPageSize),
		Offset:      queryInt(r, "offset", 0),
		OnlyTrading: r.URL.Query().Get("onlyTrading") == "true",
	}

	page, err := h.tradeService.SearchPosts(r.Context(), middleware.UserID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// UpdatePost patches the caller's listing
func (h *TradeHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req trade.UpdatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.tradeService.UpdatePost(r.Context(), middleware.UserID(r), postID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeletePost removes the caller's listing
func (h *TradeHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.tradeService.DeletePost(r.Context(), middleware.UserID(r), postID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reserveRequest struct {
	BuyerID int64 `json:"buyerId"`
}

// Reserve assigns a tentative buyer to the caller's listing
func (h *TradeHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req reserveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.tradeService.Reserve(r.Context(), middleware.UserID(r), req.BuyerID, postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetReservation returns the listing's current lifecycle state to its seller
func (h *TradeHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.tradeService.GetReservation(r.Context(), middleware.UserID(r), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Confirm finalizes the reserved trade
func (h *TradeHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.tradeService.Confirm(r.Context(), middleware.UserID(r), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Cancel clears the reservation and reopens the listing
func (h *TradeHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.tradeService.Cancel(r.Context(), middleware.UserID(r), postID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike flips the caller's like on the listing
func (h *TradeHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.tradeService.ToggleLike(r.Context(), middleware.UserID(r), postID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TopLiked returns the most liked listings
func (h *TradeHandler) TopLiked(w http.ResponseWriter, r *http.Request) {
	views, err := h.tradeService.TopLikedPosts(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}
