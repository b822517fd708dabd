package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus is the bidding state of a listing
type ListingStatus string

const (
	StatusOpen   ListingStatus = "open"
	StatusClosed ListingStatus = "closed"
)

// User represents a registered participant in the auction
type User struct {
	ID           string    `json:"user_id" gorm:"type:varchar(36);primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(150);not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"type:varchar(254)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(72);not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
}

// Category groups listings under a unique name
type Category struct {
	ID   string `json:"category_id" gorm:"type:varchar(36);primaryKey"`
	Name string `json:"name" gorm:"type:varchar(64);not null;uniqueIndex"`
}

// Listing represents an item up for auction
type Listing struct {
	ID            string          `json:"listing_id" gorm:"type:varchar(36);primaryKey"`
	Title         string          `json:"title" gorm:"type:varchar(64);not null"`
	Description   string          `json:"description" gorm:"type:text;not null"`
	StartingPrice decimal.Decimal `json:"starting_price" gorm:"type:numeric(9,2);not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(9,2);not null"`
	ImageURL      string          `json:"image_url" gorm:"type:text"`
	CategoryID    *string         `json:"category_id" gorm:"type:varchar(36);index"`
	Status        ListingStatus   `json:"status" gorm:"type:varchar(16);not null;index"`
	AuthorID      string          `json:"author_id" gorm:"type:varchar(36);not null;index"`
	WinnerID      *string         `json:"winner_id" gorm:"type:varchar(36)"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Bids     []Bid     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// IsOpen reports whether the listing still accepts bids
func (l Listing) IsOpen() bool {
	return l.Status == StatusOpen
}

// Bid represents a user's bid on a listing
type Bid struct {
	ID        string          `json:"bid_id" gorm:"type:varchar(36);primaryKey"`
	ListingID string          `json:"listing_id" gorm:"type:varchar(36);not null;index"`
	UserID    string          `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(9,2);not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null"`
}

// Comment is a free-text remark left on a listing
type Comment struct {
	ID        string    `json:"comment_id" gorm:"type:varchar(36);primaryKey"`
	ListingID string    `json:"listing_id" gorm:"type:varchar(36);not null;index"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

// WatchlistEntry links a user to a listing they watch
type WatchlistEntry struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey"`
	ListingID string    `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}
