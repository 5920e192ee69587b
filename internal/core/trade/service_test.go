package trade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JwahoonKim/Waffle-Market/internal/core/users"
)

// MockPostRepository is a mock implementation of PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *TradePost) (*TradePost, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TradePost), args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id int64) (*TradePost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TradePost), args.Error(1)
}

func (m *MockPostRepository) GetByIDWithUsers(ctx context.Context, id int64) (*TradePost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TradePost), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *TradePost) (*TradePost, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TradePost), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) IncrementViewCount(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) SetTradeState(ctx context.Context, id int64, status TradeStatus, buyerID *int64) error {
	args := m.Called(ctx, id, status, buyerID)
	return args.Error(0)
}

func (m *MockPostRepository) Search(ctx context.Context, q SearchQuery) ([]*TradePost, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*TradePost), args.Error(1)
}

func (m *MockPostRepository) CountSearch(ctx context.Context, q SearchQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*TradePost, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*TradePost), args.Error(1)
}

func (m *MockPostRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]*TradePost, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*TradePost), args.Error(1)
}

func (m *MockPostRepository) ListLikedBy(ctx context.Context, userID int64) ([]*TradePost, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*TradePost), args.Error(1)
}

func (m *MockPostRepository) TopLiked(ctx context.Context, limit int) ([]*TradePost, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*TradePost), args.Error(1)
}

func (m *MockPostRepository) LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

// MockLikeRepository is a mock implementation of LikeRepository
type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) Find(ctx context.Context, userID, postID int64) (*Like, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Like), args.Error(1)
}

func (m *MockLikeRepository) Create(ctx context.Context, like *Like) error {
	args := m.Called(ctx, like)
	return args.Error(0)
}

func (m *MockLikeRepository) Delete(ctx context.Context, userID, postID int64) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

// MockUserRepo is a mock implementation of users.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUserRepo) UpdateUsername(ctx context.Context, id int64, username string) (*users.User, error) {
	args := m.Called(ctx, id, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUserRepo) UpdateLocation(ctx context.Context, id int64, location string, lat, lng float64) (*users.User, error) {
	args := m.Called(ctx, id, location, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUserRepo) UpdateSearchScope(ctx context.Context, id int64, scope float64) (*users.User, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepo) Warmest(ctx context.Context, limit int) ([]*users.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*users.User), args.Error(1)
}

func newTestService() (Service, *MockPostRepository, *MockLikeRepository, *MockUserRepo) {
	posts := new(MockPostRepository)
	likes := new(MockLikeRepository)
	userRepo := new(MockUserRepo)
	return NewService(posts, likes, userRepo, nil), posts, likes, userRepo
}

func seller() *users.User {
	return &users.User{ID: 1, Username: "seller", Latitude: 37.47, Longitude: 126.95, SearchScope: 2000}
}

func TestCreatePost_InheritsSellerCoordinate(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	posts.On("Create", mock.Anything, mock.MatchedBy(func(p *TradePost) bool {
		return p.SellerID == 1 &&
			p.Status == StatusTrading &&
			p.Latitude == 37.47 &&
			p.Longitude == 126.95
	})).Return(&TradePost{ID: 10, SellerID: 1, Status: StatusTrading}, nil)

	view, err := service.CreatePost(context.Background(), 1, CreatePostRequest{
		Title: "waffle iron",
		Price: 15000,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10), view.Post.ID)
	assert.False(t, view.IsLiked)
	posts.AssertExpectations(t)
}

func TestCreatePost_Validation(t *testing.T) {
	service, posts, _, _ := newTestService()

	_, err := service.CreatePost(context.Background(), 1, CreatePostRequest{Title: "  "})
	assert.True(t, IsValidationError(err))

	_, err = service.CreatePost(context.Background(), 1, CreatePostRequest{Title: "x", Price: -1})
	assert.True(t, IsValidationError(err))

	posts.AssertNotCalled(t, "Create")
}

func TestGetPost_CountsView(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)
	posts.On("GetByIDWithUsers", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, ViewCount: 4}, nil)
	posts.On("IncrementViewCount", mock.Anything, int64(10)).Return(nil)
	posts.On("LikedPostIDs", mock.Anything, int64(2), []int64{10}).
		Return(map[int64]bool{10: true}, nil)

	view, err := service.GetPost(context.Background(), 2, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(5), view.Post.ViewCount)
	assert.True(t, view.IsLiked)
	posts.AssertExpectations(t)
}

func TestGetPost_NotFound(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)
	posts.On("GetByIDWithUsers", mock.Anything, int64(99)).Return(nil, ErrPostNotFound)

	_, err := service.GetPost(context.Background(), 2, 99)

	assert.ErrorIs(t, err, ErrPostNotFound)
	posts.AssertNotCalled(t, "IncrementViewCount")
}

func TestSearchPosts_UsesViewerScope(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)

	found := []*TradePost{{ID: 10, SellerID: 3}, {ID: 11, SellerID: 4}}
	posts.On("Search", mock.Anything, mock.MatchedBy(func(q SearchQuery) bool {
		return q.Latitude == 37.47 &&
			q.Longitude == 126.95 &&
			q.Radius == 2000 &&
			q.Keyword == "waffle" &&
			q.Limit == DefaultPageSize &&
			q.Offset == 0
	})).Return(found, nil)
	posts.On("CountSearch", mock.Anything, mock.Anything).Return(42, nil)
	posts.On("LikedPostIDs", mock.Anything, int64(1), []int64{10, 11}).
		Return(map[int64]bool{11: true}, nil)

	page, err := service.SearchPosts(context.Background(), 1, SearchRequest{Keyword: " waffle ", Limit: DefaultPageSize})

	require.NoError(t, err)
	assert.Equal(t, 42, page.Total)
	require.Len(t, page.Posts, 2)
	assert.False(t, page.Posts[0].IsLiked)
	assert.True(t, page.Posts[1].IsLiked)
}

func TestSearchPosts_PageBounds(t *testing.T) {
	service, posts, _, _ := newTestService()

	// Zero is an explicit page size, not a request for the default
	_, err := service.SearchPosts(context.Background(), 1, SearchRequest{Limit: 0})
	assert.True(t, IsValidationError(err))

	_, err = service.SearchPosts(context.Background(), 1, SearchRequest{Limit: -1})
	assert.True(t, IsValidationError(err))

	_, err = service.SearchPosts(context.Background(), 1, SearchRequest{Limit: MaxPageSize + 1})
	assert.True(t, IsValidationError(err))

	_, err = service.SearchPosts(context.Background(), 1, SearchRequest{Limit: DefaultPageSize, Offset: -1})
	assert.True(t, IsValidationError(err))

	posts.AssertNotCalled(t, "Search")
}

func TestSearchPosts_ZeroScopeShortCircuits(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	viewer := seller()
	viewer.SearchScope = 0
	userRepo.On("GetByID", mock.Anything, int64(1)).Return(viewer, nil)

	page, err := service.SearchPosts(context.Background(), 1, SearchRequest{Limit: DefaultPageSize})

	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Zero(t, page.Total)
	posts.AssertNotCalled(t, "Search")
}

func TestUpdatePost_OnlySeller(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)
	posts.On("GetByIDWithUsers", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1}, nil)

	title := "new title"
	_, err := service.UpdatePost(context.Background(), 2, 10, UpdatePostRequest{Title: &title})

	assert.ErrorIs(t, err, ErrNotPostOwner)
	posts.AssertNotCalled(t, "Update")
}

func TestUpdatePost_ReplacesImages(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	posts.On("GetByIDWithUsers", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Title: "old", Price: 100, ImageURLs: []string{"a", "b"}}, nil)
	posts.On("Update", mock.Anything, mock.MatchedBy(func(p *TradePost) bool {
		return p.Title == "old" && p.Price == 100 && len(p.ImageURLs) == 1 && p.ImageURLs[0] == "c"
	})).Return(&TradePost{ID: 10, SellerID: 1, Title: "old", Price: 100, ImageURLs: []string{"c"}}, nil)
	posts.On("LikedPostIDs", mock.Anything, int64(1), []int64{10}).
		Return(map[int64]bool{}, nil)

	view, err := service.UpdatePost(context.Background(), 1, 10, UpdatePostRequest{ImageURLs: []string{"c"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, view.Post.ImageURLs)
}

func TestUpdatePost_AbsentImagesUnchanged(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	posts.On("GetByIDWithUsers", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Title: "old", Price: 100, ImageURLs: []string{"a", "b"}}, nil)
	posts.On("Update", mock.Anything, mock.MatchedBy(func(p *TradePost) bool {
		return p.Price == 9000 && len(p.ImageURLs) == 2
	})).Return(&TradePost{ID: 10, SellerID: 1, Title: "old", Price: 9000, ImageURLs: []string{"a", "b"}}, nil)
	posts.On("LikedPostIDs", mock.Anything, int64(1), []int64{10}).
		Return(map[int64]bool{}, nil)

	// A patch that never mentions the image list must not wipe it
	price := int64(9000)
	view, err := service.UpdatePost(context.Background(), 1, 10, UpdatePostRequest{Price: &price})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, view.Post.ImageURLs)
}

func TestDeletePost_AnyLifecycleState(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	buyerID := int64(2)
	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	posts.On("GetByID", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusReservation, BuyerID: &buyerID}, nil)
	posts.On("Delete", mock.Anything, int64(10)).Return(nil)

	err := service.DeletePost(context.Background(), 1, 10)

	require.NoError(t, err)
	posts.AssertExpectations(t)
}

func TestReserve_Success(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	buyer := &users.User{ID: 2, Username: "buyer"}
	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	userRepo.On("GetByID", mock.Anything, int64(2)).Return(buyer, nil)
	posts.On("GetByID", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusTrading}, nil)
	posts.On("SetTradeState", mock.Anything, int64(10), StatusReservation, mock.MatchedBy(func(id *int64) bool {
		return id != nil && *id == 2
	})).Return(nil)

	view, err := service.Reserve(context.Background(), 1, 2, 10)

	require.NoError(t, err)
	assert.Equal(t, StatusReservation, view.Status)
	assert.Equal(t, buyer, view.Buyer)
}

func TestReserve_OverwritesBuyer(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	oldBuyer := int64(2)
	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	userRepo.On("GetByID", mock.Anything, int64(3)).Return(&users.User{ID: 3}, nil)
	posts.On("GetByID", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusReservation, BuyerID: &oldBuyer}, nil)
	posts.On("SetTradeState", mock.Anything, int64(10), StatusReservation, mock.MatchedBy(func(id *int64) bool {
		return id != nil && *id == 3
	})).Return(nil)

	view, err := service.Reserve(context.Background(), 1, 3, 10)

	require.NoError(t, err)
	assert.Equal(t, StatusReservation, view.Status)
}

func TestReserve_CompletedIsAbsorbing(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	buyerID := int64(2)
	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	userRepo.On("GetByID", mock.Anything, int64(3)).Return(&users.User{ID: 3}, nil)
	posts.On("GetByID", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusCompleted, BuyerID: &buyerID}, nil)

	_, err := service.Reserve(context.Background(), 1, 3, 10)

	assert.ErrorIs(t, err, ErrTradeCompleted)
	posts.AssertNotCalled(t, "SetTradeState")
}

func TestReserve_OnlySeller(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(5)).Return(&users.User{ID: 5}, nil)
	userRepo.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)
	posts.On("GetByID", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusTrading}, nil)

	_, err := service.Reserve(context.Background(), 5, 2, 10)

	assert.ErrorIs(t, err, ErrNotPostOwner)
}

func TestConfirm_Success(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	buyerID := int64(2)
	buyer := &users.User{ID: 2, Username: "buyer"}
	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	posts.On("GetByIDWithUsers", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusReservation, BuyerID: &buyerID, Buyer: buyer}, nil)
	posts.On("SetTradeState", mock.Anything, int64(10), StatusCompleted, &buyerID).Return(nil)

	view, err := service.Confirm(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, view.Status)
	assert.Equal(t, buyer, view.Buyer)
}

func TestConfirm_RequiresReservation(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	posts.On("GetByIDWithUsers", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusTrading}, nil)

	_, err := service.Confirm(context.Background(), 1, 10)

	assert.ErrorIs(t, err, ErrNoReservedBuyer)
	posts.AssertNotCalled(t, "SetTradeState")
}

func TestCancel_ReturnsToTrading(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	buyerID := int64(2)
	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	posts.On("GetByID", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusReservation, BuyerID: &buyerID}, nil)
	posts.On("SetTradeState", mock.Anything, int64(10), StatusTrading, (*int64)(nil)).Return(nil)

	err := service.Cancel(context.Background(), 1, 10)

	require.NoError(t, err)
	posts.AssertExpectations(t)
}

func TestCancel_RequiresReservation(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	posts.On("GetByID", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusTrading}, nil)

	err := service.Cancel(context.Background(), 1, 10)

	assert.ErrorIs(t, err, ErrNotReserved)
}

func TestGetReservation_ReturnsCurrentState(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	buyerID := int64(2)
	buyer := &users.User{ID: 2, Username: "buyer"}
	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	posts.On("GetByIDWithUsers", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusReservation, BuyerID: &buyerID, Buyer: buyer}, nil)

	view, err := service.GetReservation(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, StatusReservation, view.Status)
	assert.Equal(t, buyer, view.Buyer)
}

func TestGetReservation_NoBuyerWhileTrading(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	posts.On("GetByIDWithUsers", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusTrading}, nil)

	view, err := service.GetReservation(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, StatusTrading, view.Status)
	assert.Nil(t, view.Buyer)
}

func TestGetReservation_OnlySeller(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(5)).Return(&users.User{ID: 5}, nil)
	posts.On("GetByIDWithUsers", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1, Status: StatusTrading}, nil)

	_, err := service.GetReservation(context.Background(), 5, 10)

	assert.ErrorIs(t, err, ErrNotPostOwner)
}

func TestTradeLifecycle(t *testing.T) {
	post := &TradePost{ID: 10, SellerID: 1, Status: StatusTrading}

	require.NoError(t, post.Reserve(2))
	assert.Equal(t, StatusReservation, post.Status)
	require.NotNil(t, post.BuyerID)
	assert.Equal(t, int64(2), *post.BuyerID)

	require.NoError(t, post.Cancel())
	assert.Equal(t, StatusTrading, post.Status)
	assert.Nil(t, post.BuyerID)

	assert.ErrorIs(t, post.Confirm(), ErrNoReservedBuyer)
	assert.ErrorIs(t, post.Cancel(), ErrNotReserved)

	require.NoError(t, post.Reserve(3))
	require.NoError(t, post.Confirm())
	assert.Equal(t, StatusCompleted, post.Status)

	assert.ErrorIs(t, post.Reserve(4), ErrTradeCompleted)
	assert.ErrorIs(t, post.Cancel(), ErrNotReserved)
}

func TestToggleLike_CreatesWhenAbsent(t *testing.T) {
	service, posts, likes, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)
	posts.On("GetByID", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1}, nil)
	likes.On("Find", mock.Anything, int64(2), int64(10)).Return(nil, ErrLikeNotFound)
	likes.On("Create", mock.Anything, mock.MatchedBy(func(l *Like) bool {
		return l.UserID == 2 && l.PostID == 10
	})).Return(nil)

	err := service.ToggleLike(context.Background(), 2, 10)

	require.NoError(t, err)
	likes.AssertExpectations(t)
}

func TestToggleLike_RemovesWhenPresent(t *testing.T) {
	service, posts, likes, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)
	posts.On("GetByID", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1}, nil)
	likes.On("Find", mock.Anything, int64(2), int64(10)).Return(&Like{ID: 5, UserID: 2, PostID: 10}, nil)
	likes.On("Delete", mock.Anything, int64(2), int64(10)).Return(nil)

	err := service.ToggleLike(context.Background(), 2, 10)

	require.NoError(t, err)
	likes.AssertNotCalled(t, "Create")
}

func TestToggleLike_OwnPost(t *testing.T) {
	service, posts, likes, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(seller(), nil)
	posts.On("GetByID", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1}, nil)

	err := service.ToggleLike(context.Background(), 1, 10)

	assert.ErrorIs(t, err, ErrOwnPostLike)
	likes.AssertNotCalled(t, "Find")
}

func TestToggleLike_DuplicateInsertIsNoOp(t *testing.T) {
	service, posts, likes, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)
	posts.On("GetByID", mock.Anything, int64(10)).
		Return(&TradePost{ID: 10, SellerID: 1}, nil)
	likes.On("Find", mock.Anything, int64(2), int64(10)).Return(nil, ErrLikeNotFound)
	likes.On("Create", mock.Anything, mock.Anything).Return(ErrAlreadyLiked)

	// A concurrent toggle inserted first; the row exists, which is the
	// desired end state
	err := service.ToggleLike(context.Background(), 2, 10)

	assert.NoError(t, err)
}

func TestTopLikedPosts(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)
	top := []*TradePost{{ID: 4, LikeCount: 9}, {ID: 1, LikeCount: 7}, {ID: 8, LikeCount: 7}}
	posts.On("TopLiked", mock.Anything, 3).Return(top, nil)
	posts.On("LikedPostIDs", mock.Anything, int64(2), []int64{4, 1, 8}).
		Return(map[int64]bool{4: true}, nil)

	views, err := service.TopLikedPosts(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.True(t, views[0].IsLiked)
	assert.False(t, views[1].IsLiked)
}

func TestBuyHistory(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	buyerID := int64(2)
	userRepo.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)
	bought := []*TradePost{{ID: 10, SellerID: 1, BuyerID: &buyerID, Status: StatusCompleted}}
	posts.On("ListByBuyer", mock.Anything, int64(2)).Return(bought, nil)
	posts.On("LikedPostIDs", mock.Anything, int64(2), []int64{10}).
		Return(map[int64]bool{}, nil)

	views, err := service.BuyHistory(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, StatusCompleted, views[0].Post.Status)
}

func TestLikedPosts_MarkedLiked(t *testing.T) {
	service, posts, _, userRepo := newTestService()

	userRepo.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)
	liked := []*TradePost{{ID: 10}, {ID: 11}}
	posts.On("ListLikedBy", mock.Anything, int64(2)).Return(liked, nil)

	views, err := service.LikedPosts(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].IsLiked)
	assert.True(t, views[1].IsLiked)
}
