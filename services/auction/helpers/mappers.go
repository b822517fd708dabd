package helpers

import (
	"time"

	auction "auction-site/internal/auctionService"
	model "auction-site/internal/models"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
)

// Stored text is kept as the user wrote it; these render it for HTML pages.
// Descriptions keep safe formatting, comments are escaped as plain text.
var (
	descriptionPolicy = bluemonday.UGCPolicy()
	commentPolicy     = bluemonday.StrictPolicy()
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func ToUserResponse(u model.User) UserResponse {
	return UserResponse{UserID: u.ID, Username: u.Username, Email: u.Email}
}

func ToCategoryResponses(categories []model.Category) []CategoryResponse {
	return lo.Map(categories, func(c model.Category, _ int) CategoryResponse {
		return CategoryResponse{CategoryID: c.ID, Name: c.Name}
	})
}

// ToListingResponse renders money with exactly two decimal places
func ToListingResponse(l model.Listing) ListingResponse {
	resp := ListingResponse{
		ListingID:       l.ID,
		Title:           l.Title,
		Description:     l.Description,
		DescriptionHTML: descriptionPolicy.Sanitize(l.Description),
		StartingPrice:   l.StartingPrice.StringFixed(2),
		Price:           l.Price.StringFixed(2),
		ImageURL:        l.ImageURL,
		CategoryID:      l.CategoryID,
		Status:          string(l.Status),
		AuthorID:        l.AuthorID,
		WinnerID:        l.WinnerID,
		CreatedAt:       formatTime(l.CreatedAt),
	}
	if l.Category != nil {
		resp.Category = l.Category.Name
	}
	return resp
}

func ToListingResponses(listings []model.Listing) []ListingResponse {
	return lo.Map(listings, func(l model.Listing, _ int) ListingResponse {
		return ToListingResponse(l)
	})
}

func ToBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.ID,
		ListingID: b.ListingID,
		UserID:    b.UserID,
		Amount:    b.Amount.StringFixed(2),
		CreatedAt: formatTime(b.CreatedAt),
	}
}

func ToCommentResponse(c model.Comment) CommentResponse {
	return CommentResponse{
		CommentID: c.ID,
		ListingID: c.ListingID,
		UserID:    c.UserID,
		Body:      c.Body,
		BodyHTML:  commentPolicy.Sanitize(c.Body),
		CreatedAt: formatTime(c.CreatedAt),
	}
}

func ToListingDetailsResponse(d auction.ListingDetails) ListingDetailsResponse {
	return ListingDetailsResponse{
		Listing: ToListingResponse(d.Listing),
		Bids: lo.Map(d.Bids, func(b model.Bid, _ int) BidResponse {
			return ToBidResponse(b)
		}),
		Comments: lo.Map(d.Comments, func(c model.Comment, _ int) CommentResponse {
			return ToCommentResponse(c)
		}),
		Watching: d.Watching,
	}
}
