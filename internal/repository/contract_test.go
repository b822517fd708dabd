package repository

import (
	"auction-site/internal/auctionerrors"
	model "auction-site/internal/models"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 1, 31, 17, 0, 0, 0, time.UTC)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, money(want).Equal(got), "expected %s, got %s", want, got)
}

// Helper to create a new Listing
func newListing(id, authorID string, price string, createdAt time.Time) model.Listing {
	return model.Listing{
		ID:            id,
		Title:         fmt.Sprintf("title %s", id),
		Description:   fmt.Sprintf("%s description", id),
		StartingPrice: money(price),
		Price:         money(price),
		Status:        model.StatusOpen,
		AuthorID:      authorID,
		CreatedAt:     createdAt,
	}
}

// Helper to create a new Bid
func newBid(id, listingID, userID, amount string, createdAt time.Time) model.Bid {
	return model.Bid{
		ID:        id,
		ListingID: listingID,
		UserID:    userID,
		Amount:    money(amount),
		CreatedAt: createdAt,
	}
}

// runAuctionDBContract exercises behaviour every AuctionDB implementation must share
func runAuctionDBContract(t *testing.T, newRepo func(t *testing.T) AuctionDB) {
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		repo := newRepo(t)
		alice := model.User{ID: "u1", Username: "alice", Email: "a@example.com", PasswordHash: "hash", CreatedAt: baseTime}
		require.NoError(t, repo.CreateUser(ctx, alice))

		err := repo.CreateUser(ctx, model.User{ID: "u2", Username: "alice", PasswordHash: "hash", CreatedAt: baseTime})
		require.ErrorIs(t, err, auctionerrors.ErrUsernameTaken)

		got, err := repo.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "u1", got.ID)

		got, err = repo.GetUser(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "alice", got.Username)

		_, err = repo.GetUser(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
		_, err = repo.GetUserByUsername(ctx, "bob")
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	})

	t.Run("categories_are_created_once", func(t *testing.T) {
		repo := newRepo(t)
		first, err := repo.GetOrCreateCategory(ctx, "Tools")
		require.NoError(t, err)
		second, err := repo.GetOrCreateCategory(ctx, "Tools")
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)

		_, err = repo.GetOrCreateCategory(ctx, "Books")
		require.NoError(t, err)

		categories, err := repo.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		require.Equal(t, "Books", categories[0].Name)
		require.Equal(t, "Tools", categories[1].Name)

		got, err := repo.GetCategory(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, "Tools", got.Name)

		_, err = repo.GetCategory(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrCategoryNotFound)
	})

	t.Run("listings_newest_first_with_filters", func(t *testing.T) {
		repo := newRepo(t)
		tools, err := repo.GetOrCreateCategory(ctx, "Tools")
		require.NoError(t, err)

		older := newListing("l1", "u1", "10.00", baseTime)
		older.CategoryID = &tools.ID
		newer := newListing("l2", "u1", "20.00", baseTime.Add(time.Hour))
		uncategorized := newListing("l3", "u1", "30.00", baseTime.Add(2*time.Hour))
		require.NoError(t, repo.CreateListing(ctx, older))
		require.NoError(t, repo.CreateListing(ctx, newer))
		require.NoError(t, repo.CreateListing(ctx, uncategorized))

		newerInTools := newListing("l4", "u1", "40.00", baseTime.Add(3*time.Hour))
		newerInTools.CategoryID = &tools.ID
		require.NoError(t, repo.CreateListing(ctx, newerInTools))
		_, err = repo.CloseListing(ctx, "l4")
		require.NoError(t, err)

		all, err := repo.ListListings(ctx, ListingFilter{})
		require.NoError(t, err)
		require.Equal(t, []string{"l4", "l3", "l2", "l1"}, listingIDs(all))

		open, err := repo.ListListings(ctx, ListingFilter{Status: model.StatusOpen})
		require.NoError(t, err)
		require.Equal(t, []string{"l3", "l2", "l1"}, listingIDs(open))

		inTools, err := repo.ListListings(ctx, ListingFilter{Status: model.StatusOpen, CategoryName: "Tools"})
		require.NoError(t, err)
		require.Equal(t, []string{"l1"}, listingIDs(inTools))
		require.NotNil(t, inTools[0].Category)
		require.Equal(t, "Tools", inTools[0].Category.Name)

		none, err := repo.ListListings(ctx, ListingFilter{CategoryName: "Books"})
		require.NoError(t, err)
		require.Empty(t, none)

		got, err := repo.GetListing(ctx, "l2")
		require.NoError(t, err)
		require.Nil(t, got.Category)
		requireMoney(t, "20.00", got.Price)

		_, err = repo.GetListing(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)
	})

	t.Run("record_bid_compare_and_set", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateListing(ctx, newListing("l1", "u1", "100.00", baseTime)))

		require.NoError(t, repo.RecordBid(ctx, newBid("b1", "l1", "u2", "150.00", baseTime.Add(time.Minute)), money("100.00")))

		listing, err := repo.GetListing(ctx, "l1")
		require.NoError(t, err)
		requireMoney(t, "150.00", listing.Price)
		requireMoney(t, "100.00", listing.StartingPrice)

		// stale expected price
		err = repo.RecordBid(ctx, newBid("b2", "l1", "u3", "160.00", baseTime.Add(2*time.Minute)), money("100.00"))
		require.ErrorIs(t, err, auctionerrors.ErrConcurrencyConflict)

		err = repo.RecordBid(ctx, newBid("b3", "missing", "u3", "160.00", baseTime), money("100.00"))
		require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)

		bids, err := repo.GetBidsByListing(ctx, "l1")
		require.NoError(t, err)
		require.Len(t, bids, 1)
		require.Equal(t, "b1", bids[0].ID)

		listing, err = repo.GetListing(ctx, "l1")
		require.NoError(t, err)
		requireMoney(t, "150.00", listing.Price)

		_, err = repo.CloseListing(ctx, "l1")
		require.NoError(t, err)
		err = repo.RecordBid(ctx, newBid("b4", "l1", "u3", "200.00", baseTime.Add(3*time.Minute)), money("150.00"))
		require.ErrorIs(t, err, auctionerrors.ErrListingClosed)

		_, err = repo.GetBidsByListing(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)
	})

	t.Run("bids_newest_first", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateListing(ctx, newListing("l1", "u1", "100.00", baseTime)))
		require.NoError(t, repo.RecordBid(ctx, newBid("b1", "l1", "u2", "110.00", baseTime.Add(time.Minute)), money("100.00")))
		require.NoError(t, repo.RecordBid(ctx, newBid("b2", "l1", "u3", "120.00", baseTime.Add(2*time.Minute)), money("110.00")))
		require.NoError(t, repo.RecordBid(ctx, newBid("b3", "l1", "u2", "130.50", baseTime.Add(3*time.Minute)), money("120.00")))

		bids, err := repo.GetBidsByListing(ctx, "l1")
		require.NoError(t, err)
		require.Len(t, bids, 3)
		require.Equal(t, "b3", bids[0].ID)
		require.Equal(t, "b2", bids[1].ID)
		require.Equal(t, "b1", bids[2].ID)
		requireMoney(t, "130.50", bids[0].Amount)
	})

	t.Run("equal_timestamps_order_by_id", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateListing(ctx, newListing("l2", "u1", "100.00", baseTime)))
		require.NoError(t, repo.CreateListing(ctx, newListing("l1", "u1", "100.00", baseTime)))

		listings, err := repo.ListListings(ctx, ListingFilter{})
		require.NoError(t, err)
		require.Equal(t, []string{"l2", "l1"}, listingIDs(listings))

		// stored out of id order, same instant and amount
		require.NoError(t, repo.RecordBid(ctx, newBid("b9", "l1", "u2", "300.00", baseTime), money("100.00")))
		require.NoError(t, repo.RecordBid(ctx, newBid("b1", "l1", "u3", "300.00", baseTime), money("300.00")))

		bids, err := repo.GetBidsByListing(ctx, "l1")
		require.NoError(t, err)
		require.Len(t, bids, 2)
		require.Equal(t, "b9", bids[0].ID)
		require.Equal(t, "b1", bids[1].ID)

		closed, err := repo.CloseListing(ctx, "l1")
		require.NoError(t, err)
		require.NotNil(t, closed.WinnerID)
		require.Equal(t, "u2", *closed.WinnerID)

		require.NoError(t, repo.AddComment(ctx, model.Comment{ID: "c2", ListingID: "l1", UserID: "u2", Body: "second", CreatedAt: baseTime}))
		require.NoError(t, repo.AddComment(ctx, model.Comment{ID: "c1", ListingID: "l1", UserID: "u3", Body: "first", CreatedAt: baseTime}))

		comments, err := repo.GetCommentsByListing(ctx, "l1")
		require.NoError(t, err)
		require.Len(t, comments, 2)
		require.Equal(t, "c1", comments[0].ID)
		require.Equal(t, "c2", comments[1].ID)
	})

	t.Run("close_listing", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateListing(ctx, newListing("with-bids", "u1", "100.00", baseTime)))
		require.NoError(t, repo.CreateListing(ctx, newListing("no-bids", "u1", "100.00", baseTime)))
		require.NoError(t, repo.CreateListing(ctx, newListing("tied", "u1", "100.00", baseTime)))

		require.NoError(t, repo.RecordBid(ctx, newBid("b1", "with-bids", "u2", "150.00", baseTime.Add(time.Minute)), money("100.00")))
		require.NoError(t, repo.RecordBid(ctx, newBid("b2", "with-bids", "u3", "200.00", baseTime.Add(2*time.Minute)), money("150.00")))

		// the store does not compare amounts, so an equal amount can be stored here
		require.NoError(t, repo.RecordBid(ctx, newBid("t1", "tied", "u2", "300.00", baseTime.Add(time.Minute)), money("100.00")))
		require.NoError(t, repo.RecordBid(ctx, newBid("t2", "tied", "u3", "300.00", baseTime.Add(2*time.Minute)), money("300.00")))

		closed, err := repo.CloseListing(ctx, "with-bids")
		require.NoError(t, err)
		require.Equal(t, model.StatusClosed, closed.Status)
		require.NotNil(t, closed.WinnerID)
		require.Equal(t, "u3", *closed.WinnerID)

		closed, err = repo.CloseListing(ctx, "no-bids")
		require.NoError(t, err)
		require.Equal(t, model.StatusClosed, closed.Status)
		require.Nil(t, closed.WinnerID)

		closed, err = repo.CloseListing(ctx, "tied")
		require.NoError(t, err)
		require.NotNil(t, closed.WinnerID)
		require.Equal(t, "u3", *closed.WinnerID)

		// closing again recomputes from the same bids
		again, err := repo.CloseListing(ctx, "with-bids")
		require.NoError(t, err)
		require.Equal(t, "u3", *again.WinnerID)

		stored, err := repo.GetListing(ctx, "with-bids")
		require.NoError(t, err)
		require.Equal(t, model.StatusClosed, stored.Status)
		require.Equal(t, "u3", *stored.WinnerID)

		_, err = repo.CloseListing(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)
	})

	t.Run("comments_oldest_first", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateListing(ctx, newListing("l1", "u1", "100.00", baseTime)))
		require.NoError(t, repo.AddComment(ctx, model.Comment{ID: "c1", ListingID: "l1", UserID: "u2", Body: "first", CreatedAt: baseTime}))
		require.NoError(t, repo.AddComment(ctx, model.Comment{ID: "c2", ListingID: "l1", UserID: "u3", Body: "second", CreatedAt: baseTime.Add(time.Minute)}))

		comments, err := repo.GetCommentsByListing(ctx, "l1")
		require.NoError(t, err)
		require.Len(t, comments, 2)
		require.Equal(t, "first", comments[0].Body)
		require.Equal(t, "second", comments[1].Body)

		err = repo.AddComment(ctx, model.Comment{ID: "c3", ListingID: "missing", UserID: "u2", Body: "x", CreatedAt: baseTime})
		require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)
		_, err = repo.GetCommentsByListing(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)
	})

	t.Run("watchlist_is_idempotent", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateListing(ctx, newListing("l1", "u1", "100.00", baseTime)))
		require.NoError(t, repo.CreateListing(ctx, newListing("l2", "u1", "100.00", baseTime.Add(time.Hour))))

		watching, err := repo.IsWatching(ctx, "u2", "l1")
		require.NoError(t, err)
		require.False(t, watching)

		require.NoError(t, repo.AddToWatchlist(ctx, "u2", "l1"))
		require.NoError(t, repo.AddToWatchlist(ctx, "u2", "l1"))
		require.NoError(t, repo.AddToWatchlist(ctx, "u2", "l2"))

		watched, err := repo.GetWatchlist(ctx, "u2")
		require.NoError(t, err)
		require.Equal(t, []string{"l2", "l1"}, listingIDs(watched))

		require.NoError(t, repo.RemoveFromWatchlist(ctx, "u2", "l1"))
		require.NoError(t, repo.RemoveFromWatchlist(ctx, "u2", "l1"))

		watching, err = repo.IsWatching(ctx, "u2", "l1")
		require.NoError(t, err)
		require.False(t, watching)

		watched, err = repo.GetWatchlist(ctx, "u2")
		require.NoError(t, err)
		require.Equal(t, []string{"l2"}, listingIDs(watched))

		empty, err := repo.GetWatchlist(ctx, "nobody")
		require.NoError(t, err)
		require.Empty(t, empty)

		err = repo.AddToWatchlist(ctx, "u2", "missing")
		require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)
	})
}

func listingIDs(listings []model.Listing) []string {
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	return ids
}
