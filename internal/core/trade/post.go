package trade

import (
	"time"

	"github.com/JwahoonKim/Waffle-Market/internal/core/users"
)

// TradeStatus is the three-state lifecycle of a listing
type TradeStatus string

const (
	StatusTrading     TradeStatus = "TRADING"
	StatusReservation TradeStatus = "RESERVATION"
	StatusCompleted   TradeStatus = "COMPLETED"
)

// Valid reports whether s is one of the known lifecycle states
func (s TradeStatus) Valid() bool {
	switch s {
	case StatusTrading, StatusReservation, StatusCompleted:
		return true
	}
	return false
}

// TradePost is a secondhand listing. The seller is immutable after creation;
// the buyer is only set while the post is reserved or completed. The
// coordinate is inherited from the seller at creation time and drives the
// distance filter in discovery.
type TradePost struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       int64       `json:"price"`
	SellerID    int64       `json:"sellerId"`
	Seller      *users.User `json:"seller,omitempty"`
	BuyerID     *int64      `json:"buyerId,omitempty"`
	Buyer       *users.User `json:"buyer,omitempty"`
	Status      TradeStatus `json:"status"`
	ViewCount   int64       `json:"viewCount"`
	LikeCount   int         `json:"likeCount"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	ImageURLs   []string    `json:"imgUrls"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"modifiedAt"`
}

// Reserve assigns a tentative buyer and moves the post to RESERVATION.
// Re-reserving an already reserved post overwrites the buyer; only
// COMPLETED is absorbing.
func (p *TradePost) Reserve(buyerID int64) error {
	if p.Status == StatusCompleted {
		return ErrTradeCompleted
	}
	p.BuyerID = &buyerID
	p.Buyer = nil
	p.Status = StatusReservation
	return nil
}

// Confirm finalizes the trade. Requires a reservation with a buyer present.
func (p *TradePost) Confirm() error {
	if p.Status != StatusReservation || p.BuyerID == nil {
		return ErrNoReservedBuyer
	}
	p.Status = StatusCompleted
	return nil
}

// Cancel clears the reservation and returns the post to TRADING
func (p *TradePost) Cancel() error {
	if p.Status != StatusReservation {
		return ErrNotReserved
	}
	p.BuyerID = nil
	p.Buyer = nil
	p.Status = StatusTrading
	return nil
}

// Like is the join row recording a user's interest in a post, unique per
// (user, post) pair
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreatePostRequest represents the input for creating a listing
type CreatePostRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	ImageURLs   []string `json:"imgUrls"`
}

// UpdatePostRequest patches a listing. Nil fields are left unchanged; an
// explicit image list replaces the stored one wholesale.
type UpdatePostRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *int64   `json:"price,omitempty"`
	ImageURLs   []string `json:"imgUrls"`
}

// SearchRequest represents the discovery query input. The viewer's stored
// coordinate and search scope supply the geospatial bounds.
type SearchRequest struct {
	Keyword     string `json:"keyword"`
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
	OnlyTrading bool   `json:"onlyTrading"`
}

// PostView is a listing as seen by a specific viewer
type PostView struct {
	Post    *TradePost `json:"post"`
	IsLiked bool       `json:"isLiked"`
}

// PostPage is one page of discovery results plus the total count of the
// unpaginated predicate
type PostPage struct {
	Posts  []*PostView `json:"posts"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ReservationView is the lifecycle-transition response
type ReservationView struct {
	PostID int64       `json:"postId"`
	Status TradeStatus `json:"status"`
	Buyer  *users.User `json:"buyer,omitempty"`
}
