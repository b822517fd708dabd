package repository

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

import (
	"auction-site/internal/auctionerrors"
	model "auction-site/internal/models"
	"auction-site/utils"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ListingFilter narrows ListListings. Zero values match everything.
type ListingFilter struct {
	Status       model.ListingStatus
	CategoryName string
}

// AuctionDB defines the entity storage interface for the auction site
type AuctionDB interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, userID string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)

	GetOrCreateCategory(ctx context.Context, name string) (model.Category, error)
	GetCategory(ctx context.Context, categoryID string) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	CreateListing(ctx context.Context, listing model.Listing) error
	GetListing(ctx context.Context, listingID string) (model.Listing, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error)

	// RecordBid stores the bid and moves the listing price to its amount in one
	// step, provided the listing is still open and priced at expectedPrice.
	RecordBid(ctx context.Context, bid model.Bid, expectedPrice decimal.Decimal) error
	GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error)
	// CloseListing marks the listing closed and sets its winner from the current bids.
	CloseListing(ctx context.Context, listingID string) (model.Listing, error)

	AddComment(ctx context.Context, comment model.Comment) error
	GetCommentsByListing(ctx context.Context, listingID string) ([]model.Comment, error)

	AddToWatchlist(ctx context.Context, userID, listingID string) error
	RemoveFromWatchlist(ctx context.Context, userID, listingID string) error
	IsWatching(ctx context.Context, userID, listingID string) (bool, error)
	GetWatchlist(ctx context.Context, userID string) ([]model.Listing, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu            sync.RWMutex
	users         map[string]model.User           // key: userID
	usernames     map[string]string               // key: username -> userID
	categories    map[string]model.Category       // key: categoryID
	categoryNames map[string]string               // key: name -> categoryID
	listings      map[string]model.Listing        // key: listingID
	listingOrder  []string                        // listingIDs in insertion order
	bids          map[string][]model.Bid          // key: listingID, insertion order
	comments      map[string][]model.Comment      // key: listingID, insertion order
	watchlist     map[string]map[string]time.Time // key: userID -> listingID -> added at
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:         make(map[string]model.User),
		usernames:     make(map[string]string),
		categories:    make(map[string]model.Category),
		categoryNames: make(map[string]string),
		listings:      make(map[string]model.Listing),
		bids:          make(map[string][]model.Bid),
		comments:      make(map[string][]model.Comment),
		watchlist:     make(map[string]map[string]time.Time),
	}
}

// CreateUser stores a new user; usernames are unique
func (r *MemoryRepo) CreateUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.usernames[user.Username]; taken {
		return fmt.Errorf("create user %s: %w", user.Username, auctionerrors.ErrUsernameTaken)
	}
	r.users[user.ID] = user
	r.usernames[user.Username] = user.ID
	return nil
}

// GetUser returns a user by id
func (r *MemoryRepo) GetUser(_ context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// GetUserByUsername returns a user by username
func (r *MemoryRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usernames[username]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", username, auctionerrors.ErrUserNotFound)
	}
	return r.users[id], nil
}

// GetOrCreateCategory returns the category with the given name, creating it on first use
func (r *MemoryRepo) GetOrCreateCategory(_ context.Context, name string) (model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.categoryNames[name]; ok {
		return r.categories[id], nil
	}
	category := model.Category{ID: utils.GenerateID(), Name: name}
	r.categories[category.ID] = category
	r.categoryNames[name] = category.ID
	return category, nil
}

// GetCategory returns a category by id
func (r *MemoryRepo) GetCategory(_ context.Context, categoryID string) (model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[categoryID]
	if !ok {
		return model.Category{}, fmt.Errorf("get category %s: %w", categoryID, auctionerrors.ErrCategoryNotFound)
	}
	return category, nil
}

// ListCategories returns all categories sorted by name
func (r *MemoryRepo) ListCategories(_ context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// CreateListing stores a new listing
func (r *MemoryRepo) CreateListing(_ context.Context, listing model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.CategoryID != nil {
		if _, ok := r.categories[*listing.CategoryID]; !ok {
			return fmt.Errorf("create listing %s: %w", listing.ID, auctionerrors.ErrCategoryNotFound)
		}
	}
	listing.Category = nil
	r.listings[listing.ID] = listing
	r.listingOrder = append(r.listingOrder, listing.ID)
	return nil
}

// GetListing returns a listing with its category
func (r *MemoryRepo) GetListing(_ context.Context, listingID string) (model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return r.withCategory(listing), nil
}

// ListListings returns the listings matching filter, newest first
func (r *MemoryRepo) ListListings(_ context.Context, filter ListingFilter) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]model.Listing, 0)
	for i := len(r.listingOrder) - 1; i >= 0; i-- {
		listing := r.withCategory(r.listings[r.listingOrder[i]])
		if filter.Status != "" && listing.Status != filter.Status {
			continue
		}
		if filter.CategoryName != "" && (listing.Category == nil || listing.Category.Name != filter.CategoryName) {
			continue
		}
		listings = append(listings, listing)
	}
	sort.SliceStable(listings, func(i, j int) bool {
		if !listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		}
		return listings[i].ID > listings[j].ID
	})
	return listings, nil
}

// RecordBid records a bid and advances the listing price if the listing is
// still open at expectedPrice
func (r *MemoryRepo) RecordBid(_ context.Context, bid model.Bid, expectedPrice decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[bid.ListingID]
	if !ok {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingNotFound)
	}
	if !listing.IsOpen() {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingClosed)
	}
	if !listing.Price.Equal(expectedPrice) {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, auctionerrors.ErrConcurrencyConflict)
	}

	listing.Price = bid.Amount
	r.listings[bid.ListingID] = listing
	r.bids[bid.ListingID] = append(r.bids[bid.ListingID], bid)
	return nil
}

// GetBidsByListing returns all bids for a listing, newest first
func (r *MemoryRepo) GetBidsByListing(_ context.Context, listingID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	bids := append([]model.Bid{}, r.bids[listingID]...)
	sort.Slice(bids, func(i, j int) bool { return bidAfter(bids[i], bids[j]) })
	return bids, nil
}

// CloseListing marks a listing closed and records the owner of the winning bid
func (r *MemoryRepo) CloseListing(_ context.Context, listingID string) (model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("close listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}

	listing.Status = model.StatusClosed
	listing.WinnerID = nil
	if winning, found := winningBid(r.bids[listingID]); found {
		winnerID := winning.UserID
		listing.WinnerID = &winnerID
	}
	r.listings[listingID] = listing
	return r.withCategory(listing), nil
}

// AddComment appends a comment to its listing
func (r *MemoryRepo) AddComment(_ context.Context, comment model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[comment.ListingID]; !ok {
		return fmt.Errorf("add comment to listing %s: %w", comment.ListingID, auctionerrors.ErrListingNotFound)
	}
	r.comments[comment.ListingID] = append(r.comments[comment.ListingID], comment)
	return nil
}

// GetCommentsByListing returns the comments of a listing, oldest first
func (r *MemoryRepo) GetCommentsByListing(_ context.Context, listingID string) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return nil, fmt.Errorf("get comments for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	comments := append([]model.Comment{}, r.comments[listingID]...)
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

// AddToWatchlist adds a listing to a user's watchlist; adding twice is a no-op
func (r *MemoryRepo) AddToWatchlist(_ context.Context, userID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listingID]; !ok {
		return fmt.Errorf("watch listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	watched, ok := r.watchlist[userID]
	if !ok {
		watched = make(map[string]time.Time)
		r.watchlist[userID] = watched
	}
	if _, exists := watched[listingID]; !exists {
		watched[listingID] = time.Now().UTC()
	}
	return nil
}

// RemoveFromWatchlist removes a listing from a user's watchlist; removing an unwatched listing is a no-op
func (r *MemoryRepo) RemoveFromWatchlist(_ context.Context, userID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.watchlist[userID], listingID)
	return nil
}

// IsWatching reports whether the user watches the listing
func (r *MemoryRepo) IsWatching(_ context.Context, userID, listingID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.watchlist[userID][listingID]
	return ok, nil
}

// GetWatchlist returns the listings a user watches, newest listing first
func (r *MemoryRepo) GetWatchlist(_ context.Context, userID string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]model.Listing, 0, len(r.watchlist[userID]))
	for listingID := range r.watchlist[userID] {
		listings = append(listings, r.withCategory(r.listings[listingID]))
	}
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].ID > listings[j].ID
		}
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return listings, nil
}

// withCategory attaches the listing's category. Callers must hold r.mu.
func (r *MemoryRepo) withCategory(listing model.Listing) model.Listing {
	listing.Category = nil
	if listing.CategoryID != nil {
		if category, ok := r.categories[*listing.CategoryID]; ok {
			listing.Category = &category
		}
	}
	return listing
}
