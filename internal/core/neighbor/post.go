package neighbor

import (
	"time"

	"github.com/JwahoonKim/Waffle-Market/internal/core/users"
)

// NeighborPost is a community feed entry: free-text content published by a
// member, liked through the same toggle-via-presence relation trade posts use
type NeighborPost struct {
	ID          int64       `json:"id"`
	Content     string      `json:"content"`
	PublisherID int64       `json:"publisherId"`
	Publisher   *users.User `json:"publisher,omitempty"`
	LikeCount   int         `json:"likeCount"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"modifiedAt"`
}

// Like is the (user, post) join row, unique per pair
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostView is a neighbor post as seen by a specific viewer
type PostView struct {
	Post    *NeighborPost `json:"post"`
	IsLiked bool          `json:"isLiked"`
}

// ListRequest represents the feed query: newest first, optional keyword
// containment match against the content
type ListRequest struct {
	Keyword string `json:"keyword"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}
