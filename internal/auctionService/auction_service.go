package auction

import (
	"auction-site/internal/auctionerrors"
	"auction-site/internal/metrics"
	model "auction-site/internal/models"
	"auction-site/internal/repository"
	"auction-site/internal/validation"
	"auction-site/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	DefaultMaxRetries    = 3
	DefaultRetryInterval = 10 * time.Millisecond
)

// Policy switches the authorization rules the auction leaves open
type Policy struct {
	// AuthorOnlyClose restricts closing to the listing's author
	AuthorOnlyClose bool
	// AllowSelfBid lets authors bid on their own listings
	AllowSelfBid bool
	// AllowReclose lets a closed listing be closed again, recomputing the winner
	AllowReclose bool
}

// DefaultPolicy is the permissive rule set
func DefaultPolicy() Policy {
	return Policy{AuthorOnlyClose: false, AllowSelfBid: true, AllowReclose: true}
}

// Config tunes an AuctionService
type Config struct {
	Policy        Policy
	MaxRetries    int
	RetryInterval time.Duration
}

// ListingDetails is everything shown on a listing page
type ListingDetails struct {
	Listing  model.Listing
	Bids     []model.Bid     // newest first
	Comments []model.Comment // oldest first
	Watching bool
}

// AuctionService defines the business logic for listings, bids, comments and watchlists
type AuctionService struct {
	repo          repository.AuctionDB
	policy        Policy
	maxRetries    int
	retryInterval time.Duration
	locks         *listingLocks
	now           func() time.Time
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, cfg Config) *AuctionService {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	return &AuctionService{
		repo:          repo,
		policy:        cfg.Policy,
		maxRetries:    maxRetries,
		retryInterval: interval,
		locks:         newListingLocks(),
		now:           time.Now,
	}
}

// CreateListing validates the input, resolves or creates its category and stores an open listing
func (s *AuctionService) CreateListing(ctx context.Context, authorID string, in validation.ListingInput) (model.Listing, error) {
	if authorID == "" {
		return model.Listing{}, fmt.Errorf("service: %w", auctionerrors.ErrUnauthorized)
	}
	in, err := validation.ValidateListing(in)
	if err != nil {
		return model.Listing{}, fmt.Errorf("service: %w", err)
	}

	var category model.Category
	if in.CategoryID != "" {
		category, err = s.repo.GetCategory(ctx, in.CategoryID)
	} else {
		category, err = s.repo.GetOrCreateCategory(ctx, in.NewCategory)
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("service: failed to resolve category: %w", err)
	}

	listing := model.Listing{
		ID:            utils.GenerateID(),
		Title:         in.Title,
		Description:   in.Description,
		StartingPrice: in.StartingPrice,
		Price:         in.StartingPrice,
		ImageURL:      in.ImageURL,
		CategoryID:    lo.ToPtr(category.ID),
		Status:        model.StatusOpen,
		AuthorID:      authorID,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return model.Listing{}, fmt.Errorf("service: failed to create listing by user %s: %w", authorID, err)
	}
	listing.Category = &category

	metrics.RecordListingCreated()
	utils.Info("Listing created", map[string]any{"listing_id": listing.ID, "author_id": authorID, "category": category.Name})
	return listing, nil
}

// PlaceBid accepts the bid only if it is strictly above the current price.
// Bids on one listing are serialized; a price moved by another writer is
// retried from a fresh read.
func (s *AuctionService) PlaceBid(ctx context.Context, listingID, bidderID string, amount decimal.Decimal) (model.Listing, model.Bid, error) {
	if bidderID == "" {
		return model.Listing{}, model.Bid{}, fmt.Errorf("service: %w", auctionerrors.ErrUnauthorized)
	}
	if err := validation.ValidateBidAmount(amount); err != nil {
		return model.Listing{}, model.Bid{}, fmt.Errorf("service: %w", err)
	}

	type placed struct {
		listing model.Listing
		bid     model.Bid
	}

	attempt := func() (placed, error) {
		unlock := s.locks.lock(listingID)
		defer unlock()

		listing, err := s.repo.GetListing(ctx, listingID)
		if err != nil {
			return placed{}, backoff.Permanent(err)
		}
		if reason := s.rejectBid(listing, bidderID, amount); reason != "" {
			return placed{}, backoff.Permanent(auctionerrors.NewBidRejected(reason))
		}

		bid := model.Bid{
			ID:        utils.GenerateID(),
			ListingID: listingID,
			UserID:    bidderID,
			Amount:    amount,
			CreatedAt: s.now().UTC(),
		}
		err = s.repo.RecordBid(ctx, bid, listing.Price)
		switch {
		case err == nil:
			listing.Price = amount
			return placed{listing: listing, bid: bid}, nil
		case errors.Is(err, auctionerrors.ErrConcurrencyConflict):
			metrics.RecordBidConflict()
			utils.Debug("Bid lost a price race, retrying", map[string]any{"listing_id": listingID, "user_id": bidderID})
			return placed{}, err
		case errors.Is(err, auctionerrors.ErrListingClosed):
			return placed{}, backoff.Permanent(auctionerrors.NewBidRejected(auctionerrors.ReasonClosed))
		default:
			return placed{}, backoff.Permanent(err)
		}
	}

	result, err := backoff.RetryWithData(attempt, s.retryPolicy(ctx))
	if err != nil {
		if reason := auctionerrors.Reason(err); errors.Is(err, auctionerrors.ErrBidRejected) {
			metrics.RecordBidRejected(reason)
			utils.Info("Bid rejected", map[string]any{"listing_id": listingID, "user_id": bidderID, "amount": amount.StringFixed(2), "reason": reason})
			return model.Listing{}, model.Bid{}, fmt.Errorf("service: bid on listing %s: %w", listingID, err)
		}
		return model.Listing{}, model.Bid{}, fmt.Errorf("service: failed to record bid for listing %s by user %s: %w", listingID, bidderID, err)
	}

	metrics.RecordBidAccepted()
	utils.Info("Bid accepted", map[string]any{"listing_id": listingID, "user_id": bidderID, "amount": amount.StringFixed(2)})
	return result.listing, result.bid, nil
}

// rejectBid returns the reason a well-formed bid cannot be taken, or ""
func (s *AuctionService) rejectBid(listing model.Listing, bidderID string, amount decimal.Decimal) string {
	switch {
	case !listing.IsOpen():
		return auctionerrors.ReasonClosed
	case !s.policy.AllowSelfBid && listing.AuthorID == bidderID:
		return auctionerrors.ReasonOwnListing
	case amount.LessThanOrEqual(listing.Price):
		return auctionerrors.ReasonNotHigher
	}
	return ""
}

func (s *AuctionService) retryPolicy(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retryInterval
	exp.MaxInterval = 20 * s.retryInterval
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.maxRetries)), ctx)
}

// CloseListing marks the listing closed and records the winning bidder, if any
func (s *AuctionService) CloseListing(ctx context.Context, listingID, actorID string) (model.Listing, error) {
	if actorID == "" {
		return model.Listing{}, fmt.Errorf("service: %w", auctionerrors.ErrUnauthorized)
	}

	unlock := s.locks.lock(listingID)
	defer unlock()

	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("service: failed to close listing %s: %w", listingID, err)
	}
	if s.policy.AuthorOnlyClose && listing.AuthorID != actorID {
		return model.Listing{}, fmt.Errorf("service: %w - only the author may close listing %s", auctionerrors.ErrForbidden, listingID)
	}
	if !s.policy.AllowReclose && !listing.IsOpen() {
		return model.Listing{}, fmt.Errorf("service: close listing %s: %w", listingID, auctionerrors.ErrListingClosed)
	}

	closed, err := s.repo.CloseListing(ctx, listingID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("service: failed to close listing %s: %w", listingID, err)
	}

	metrics.RecordListingClosed(closed.WinnerID != nil)
	utils.Info("Listing closed", map[string]any{
		"listing_id": listingID,
		"actor_id":   actorID,
		"winner_id":  lo.FromPtr(closed.WinnerID),
	})
	return closed, nil
}

// AddComment stores a comment on a listing as the user wrote it, trimmed
func (s *AuctionService) AddComment(ctx context.Context, listingID, userID, body string) (model.Comment, error) {
	if userID == "" {
		return model.Comment{}, fmt.Errorf("service: %w", auctionerrors.ErrUnauthorized)
	}
	body, err := validation.ValidateComment(body)
	if err != nil {
		return model.Comment{}, fmt.Errorf("service: %w", err)
	}

	comment := model.Comment{
		ID:        utils.GenerateID(),
		ListingID: listingID,
		UserID:    userID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return model.Comment{}, fmt.Errorf("service: failed to add comment to listing %s: %w", listingID, err)
	}
	return comment, nil
}

// AddToWatchlist puts the listing on the user's watchlist; repeating it changes nothing
func (s *AuctionService) AddToWatchlist(ctx context.Context, userID, listingID string) error {
	if userID == "" {
		return fmt.Errorf("service: %w", auctionerrors.ErrUnauthorized)
	}
	if err := s.repo.AddToWatchlist(ctx, userID, listingID); err != nil {
		return fmt.Errorf("service: failed to watch listing %s: %w", listingID, err)
	}
	return nil
}

// RemoveFromWatchlist takes the listing off the user's watchlist; removing an unwatched listing changes nothing
func (s *AuctionService) RemoveFromWatchlist(ctx context.Context, userID, listingID string) error {
	if userID == "" {
		return fmt.Errorf("service: %w", auctionerrors.ErrUnauthorized)
	}
	if _, err := s.repo.GetListing(ctx, listingID); err != nil {
		return fmt.Errorf("service: failed to unwatch listing %s: %w", listingID, err)
	}
	if err := s.repo.RemoveFromWatchlist(ctx, userID, listingID); err != nil {
		return fmt.Errorf("service: failed to unwatch listing %s: %w", listingID, err)
	}
	return nil
}

// IsWatching reports whether the listing is on the user's watchlist
func (s *AuctionService) IsWatching(ctx context.Context, userID, listingID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	watching, err := s.repo.IsWatching(ctx, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("service: failed to check watchlist: %w", err)
	}
	return watching, nil
}

// GetWatchlist returns the listings a user watches, open or closed
func (s *AuctionService) GetWatchlist(ctx context.Context, userID string) ([]model.Listing, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w", auctionerrors.ErrUnauthorized)
	}
	listings, err := s.repo.GetWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get watchlist for user %s: %w", userID, err)
	}
	return listings, nil
}

// ListOpenListings returns all open listings, newest first
func (s *AuctionService) ListOpenListings(ctx context.Context) ([]model.Listing, error) {
	listings, err := s.repo.ListListings(ctx, repository.ListingFilter{Status: model.StatusOpen})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list open listings: %w", err)
	}
	return listings, nil
}

// ListByCategory returns the open listings in the named category, newest first.
// The name is matched after the same normalization used when creating categories.
func (s *AuctionService) ListByCategory(ctx context.Context, name string) ([]model.Listing, error) {
	name = validation.NormalizeCategoryName(name)
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	if _, found := lo.Find(categories, func(c model.Category) bool { return c.Name == name }); !found {
		return nil, fmt.Errorf("service: category %q: %w", name, auctionerrors.ErrCategoryNotFound)
	}

	listings, err := s.repo.ListListings(ctx, repository.ListingFilter{Status: model.StatusOpen, CategoryName: name})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list category %q: %w", name, err)
	}
	return listings, nil
}

// ListCategories returns all categories sorted by name
func (s *AuctionService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

// GetListingDetails loads a listing with its bids and comments. viewerID may be
// empty for anonymous visitors.
func (s *AuctionService) GetListingDetails(ctx context.Context, listingID, viewerID string) (ListingDetails, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return ListingDetails{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	bids, err := s.repo.GetBidsByListing(ctx, listingID)
	if err != nil {
		return ListingDetails{}, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}
	comments, err := s.repo.GetCommentsByListing(ctx, listingID)
	if err != nil {
		return ListingDetails{}, fmt.Errorf("service: failed to get comments for listing %s: %w", listingID, err)
	}
	watching, err := s.IsWatching(ctx, viewerID, listingID)
	if err != nil {
		return ListingDetails{}, err
	}

	return ListingDetails{Listing: listing, Bids: bids, Comments: comments, Watching: watching}, nil
}
