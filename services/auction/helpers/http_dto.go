package helpers

import "github.com/shopspring/decimal"

// Request/Response DTOs
type RegisterRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email"`
	Password     string `json:"password" binding:"required"`
	Confirmation string `json:"confirmation"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateListingRequest takes either an existing category_id or a new_category name.
// Prices are accepted as JSON numbers or strings.
type CreateListingRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	CategoryID    string          `json:"category_id"`
	NewCategory   string          `json:"new_category"`
	ImageURL      string          `json:"image_url"`
}

type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type CommentRequest struct {
	Body string `json:"body" binding:"required"`
}

type UserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type CategoryResponse struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
}

// ListingResponse carries the description as written and, in DescriptionHTML,
// sanitized for embedding in a page.
type ListingResponse struct {
	ListingID       string  `json:"listing_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	DescriptionHTML string  `json:"description_html"`
	StartingPrice   string  `json:"starting_price"`
	Price           string  `json:"price"`
	ImageURL        string  `json:"image_url,omitempty"`
	CategoryID      *string `json:"category_id"`
	Category        string  `json:"category,omitempty"`
	Status          string  `json:"status"`
	AuthorID        string  `json:"author_id"`
	WinnerID        *string `json:"winner_id"`
	CreatedAt       string  `json:"created_at"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	ListingID string `json:"listing_id"`
	UserID    string `json:"user_id"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

type PlaceBidResponse struct {
	Listing ListingResponse `json:"listing"`
	Bid     BidResponse     `json:"bid"`
}

type CommentResponse struct {
	CommentID string `json:"comment_id"`
	ListingID string `json:"listing_id"`
	UserID    string `json:"user_id"`
	Body      string `json:"body"`
	BodyHTML  string `json:"body_html"`
	CreatedAt string `json:"created_at"`
}

type ListingDetailsResponse struct {
	Listing  ListingResponse   `json:"listing"`
	Bids     []BidResponse     `json:"bids"`
	Comments []CommentResponse `json:"comments"`
	Watching bool              `json:"watching"`
}

type WatchResponse struct {
	ListingID string `json:"listing_id"`
	Watching  bool   `json:"watching"`
}
