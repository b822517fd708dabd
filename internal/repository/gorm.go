package repository

import (
	"auction-site/internal/auctionerrors"
	model "auction-site/internal/models"
	"auction-site/utils"
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepo is the relational implementation of AuctionDB.
// The *gorm.DB should be opened with TranslateError enabled.
type GormRepo struct {
	db *gorm.DB
}

// NewGormRepo wraps an open database handle
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// Migrate creates or updates the schema for all entities
func (r *GormRepo) Migrate(ctx context.Context) error {
	err := r.db.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Listing{},
		&model.Bid{},
		&model.Comment{},
		&model.WatchlistEntry{},
	)
	if err != nil {
		return fmt.Errorf("repository: migrate schema: %w", err)
	}
	return nil
}

func (r *GormRepo) CreateUser(ctx context.Context, user model.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return auctionerrors.ErrUsernameTaken
		}
		return tx.Create(&user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = auctionerrors.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return nil
}

func (r *GormRepo) GetUser(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, notFound(err, auctionerrors.ErrUserNotFound))
	}
	return user, nil
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", username, notFound(err, auctionerrors.ErrUserNotFound))
	}
	return user, nil
}

// GetOrCreateCategory looks the name up first and only inserts when it is
// missing. A concurrent insert of the same name is resolved by re-reading.
func (r *GormRepo) GetOrCreateCategory(ctx context.Context, name string) (model.Category, error) {
	db := r.db.WithContext(ctx)

	var category model.Category
	err := db.Where("name = ?", name).First(&category).Error
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, fmt.Errorf("get category %s: %w", name, err)
	}

	category = model.Category{ID: utils.GenerateID(), Name: name}
	if err := db.Create(&category).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.Category{}, fmt.Errorf("create category %s: %w", name, err)
		}
		if err := db.Where("name = ?", name).First(&category).Error; err != nil {
			return model.Category{}, fmt.Errorf("get category %s: %w", name, err)
		}
	}
	return category, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, categoryID string) (model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("id = ?", categoryID).First(&category).Error; err != nil {
		return model.Category{}, fmt.Errorf("get category %s: %w", categoryID, notFound(err, auctionerrors.ErrCategoryNotFound))
	}
	return category, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := make([]model.Category, 0)
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *GormRepo) CreateListing(ctx context.Context, listing model.Listing) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&listing).Error; err != nil {
		return fmt.Errorf("create listing %s: %w", listing.ID, err)
	}
	return nil
}

func (r *GormRepo) GetListing(ctx context.Context, listingID string) (model.Listing, error) {
	var listing model.Listing
	if err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", listingID).First(&listing).Error; err != nil {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, notFound(err, auctionerrors.ErrListingNotFound))
	}
	return listing, nil
}

func (r *GormRepo) ListListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	db := r.db.WithContext(ctx)
	query := db.Preload("Category")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryName != "" {
		query = query.Where("category_id IN (?)", db.Model(&model.Category{}).Select("id").Where("name = ?", filter.CategoryName))
	}

	listings := make([]model.Listing, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

// RecordBid performs the price compare-and-set and the bid insert in one
// transaction. When no row matches, the listing is re-read to report why.
func (r *GormRepo) RecordBid(ctx context.Context, bid model.Bid, expectedPrice decimal.Decimal) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Listing{}).
			Where("id = ? AND status = ? AND price = ?", bid.ListingID, model.StatusOpen, expectedPrice).
			Update("price", bid.Amount)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var current model.Listing
			if err := tx.Select("id", "status", "price").Where("id = ?", bid.ListingID).First(&current).Error; err != nil {
				return notFound(err, auctionerrors.ErrListingNotFound)
			}
			if !current.IsOpen() {
				return auctionerrors.ErrListingClosed
			}
			return auctionerrors.ErrConcurrencyConflict
		}
		return tx.Omit(clause.Associations).Create(&bid).Error
	})
	if err != nil {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, err)
	}
	return nil
}

func (r *GormRepo) GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error) {
	if err := r.ensureListing(ctx, listingID); err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, err)
	}
	bids := make([]model.Bid, 0)
	if err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).Order("created_at DESC, id DESC").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, err)
	}
	return bids, nil
}

// CloseListing locks the listing row so no bid lands between choosing the
// winner and writing it.
func (r *GormRepo) CloseListing(ctx context.Context, listingID string) (model.Listing, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked := tx
		if tx.Dialector.Name() == "postgres" {
			locked = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var listing model.Listing
		if err := locked.Where("id = ?", listingID).First(&listing).Error; err != nil {
			return notFound(err, auctionerrors.ErrListingNotFound)
		}

		var bids []model.Bid
		if err := tx.Where("listing_id = ?", listingID).Order("created_at ASC, id ASC").Find(&bids).Error; err != nil {
			return err
		}
		var winnerID *string
		if winning, found := winningBid(bids); found {
			winnerID = &winning.UserID
		}

		return tx.Model(&model.Listing{}).Where("id = ?", listingID).Updates(map[string]any{
			"status":    model.StatusClosed,
			"winner_id": winnerID,
		}).Error
	})
	if err != nil {
		return model.Listing{}, fmt.Errorf("close listing %s: %w", listingID, err)
	}
	return r.GetListing(ctx, listingID)
}

func (r *GormRepo) AddComment(ctx context.Context, comment model.Comment) error {
	if err := r.ensureListing(ctx, comment.ListingID); err != nil {
		return fmt.Errorf("add comment to listing %s: %w", comment.ListingID, err)
	}
	if err := r.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return fmt.Errorf("add comment to listing %s: %w", comment.ListingID, err)
	}
	return nil
}

func (r *GormRepo) GetCommentsByListing(ctx context.Context, listingID string) ([]model.Comment, error) {
	if err := r.ensureListing(ctx, listingID); err != nil {
		return nil, fmt.Errorf("get comments for listing %s: %w", listingID, err)
	}
	comments := make([]model.Comment, 0)
	if err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("get comments for listing %s: %w", listingID, err)
	}
	return comments, nil
}

func (r *GormRepo) AddToWatchlist(ctx context.Context, userID, listingID string) error {
	if err := r.ensureListing(ctx, listingID); err != nil {
		return fmt.Errorf("watch listing %s: %w", listingID, err)
	}
	entry := model.WatchlistEntry{UserID: userID, ListingID: listingID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
		return fmt.Errorf("watch listing %s: %w", listingID, err)
	}
	return nil
}

func (r *GormRepo) RemoveFromWatchlist(ctx context.Context, userID, listingID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&model.WatchlistEntry{}).Error
	if err != nil {
		return fmt.Errorf("unwatch listing %s: %w", listingID, err)
	}
	return nil
}

func (r *GormRepo) IsWatching(ctx context.Context, userID, listingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WatchlistEntry{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check watchlist for listing %s: %w", listingID, err)
	}
	return count > 0, nil
}

func (r *GormRepo) GetWatchlist(ctx context.Context, userID string) ([]model.Listing, error) {
	db := r.db.WithContext(ctx)
	watched := db.Model(&model.WatchlistEntry{}).Select("listing_id").Where("user_id = ?", userID)

	listings := make([]model.Listing, 0)
	if err := db.Preload("Category").Where("id IN (?)", watched).Order("created_at DESC, id DESC").Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("get watchlist for user %s: %w", userID, err)
	}
	return listings, nil
}

func (r *GormRepo) ensureListing(ctx context.Context, listingID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Listing{}).Where("id = ?", listingID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return auctionerrors.ErrListingNotFound
	}
	return nil
}

// notFound maps gorm's missing-row error onto the domain sentinel
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
