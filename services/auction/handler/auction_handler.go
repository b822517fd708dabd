package handler

//go:generate mockgen -source=auction_handler.go -destination=mock_handler.go -package=handler

import (
	"context"
	"net/http"

	auction "auction-site/internal/auctionService"
	model "auction-site/internal/models"
	"auction-site/internal/validation"
	"auction-site/services/auction/helpers"
	"auction-site/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AuctionServiceInterface interface {
	CreateListing(ctx context.Context, authorID string, in validation.ListingInput) (model.Listing, error)
	PlaceBid(ctx context.Context, listingID, bidderID string, amount decimal.Decimal) (model.Listing, model.Bid, error)
	CloseListing(ctx context.Context, listingID, actorID string) (model.Listing, error)
	AddComment(ctx context.Context, listingID, userID, body string) (model.Comment, error)
	AddToWatchlist(ctx context.Context, userID, listingID string) error
	RemoveFromWatchlist(ctx context.Context, userID, listingID string) error
	GetWatchlist(ctx context.Context, userID string) ([]model.Listing, error)
	ListOpenListings(ctx context.Context) ([]model.Listing, error)
	ListByCategory(ctx context.Context, name string) ([]model.Listing, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetListingDetails(ctx context.Context, listingID, viewerID string) (auction.ListingDetails, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// ListOpenListingsHandler handles GET /listings
func (h *AuctionHandler) ListOpenListingsHandler(c *gin.Context) {
	listings, err := h.service.ListOpenListings(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "ListOpenListingsHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(listings), "listings retrieved successfully")
}

// CreateListingHandler handles POST /listings
func (h *AuctionHandler) CreateListingHandler(c *gin.Context) {
	userID, _ := helpers.IdentityFromContext(c)

	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	listing, err := h.service.CreateListing(c.Request.Context(), userID, validation.ListingInput{
		Title:         req.Title,
		Description:   req.Description,
		StartingPrice: req.StartingPrice,
		CategoryID:    req.CategoryID,
		NewCategory:   req.NewCategory,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		helpers.RespondError(c, "CreateListingHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToListingResponse(listing), "listing created successfully")
	helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
		"listing_id": listing.ID,
		"user_id":    userID,
	})
}

// GetListingHandler handles GET /listings/:listing_id
func (h *AuctionHandler) GetListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	viewerID, _ := helpers.IdentityFromContext(c)

	details, err := h.service.GetListingDetails(c.Request.Context(), listingID, viewerID)
	if err != nil {
		helpers.RespondError(c, "GetListingHandler", err, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingDetailsResponse(details), "listing retrieved successfully")
}

// PlaceBidHandler handles POST /listings/:listing_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	userID, _ := helpers.IdentityFromContext(c)

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	listing, bid, err := h.service.PlaceBid(c.Request.Context(), listingID, userID, req.Amount)
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
			"amount":     req.Amount.String(),
		})
		return
	}

	resp := helpers.PlaceBidResponse{
		Listing: helpers.ToListingResponse(listing),
		Bid:     helpers.ToBidResponse(bid),
	}
	utils.JSONResponse(c, http.StatusCreated, resp, "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.ID,
		"listing_id": listingID,
		"user_id":    userID,
		"amount":     bid.Amount.StringFixed(2),
	})
}

// AddCommentHandler handles POST /listings/:listing_id/comments
func (h *AuctionHandler) AddCommentHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	userID, _ := helpers.IdentityFromContext(c)

	var req helpers.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddCommentHandler", err)
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), listingID, userID, req.Body)
	if err != nil {
		helpers.RespondError(c, "AddCommentHandler", err, map[string]any{"listing_id": listingID, "user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToCommentResponse(comment), "comment added successfully")
}

// CloseListingHandler handles POST /listings/:listing_id/close
func (h *AuctionHandler) CloseListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	userID, _ := helpers.IdentityFromContext(c)

	listing, err := h.service.CloseListing(c.Request.Context(), listingID, userID)
	if err != nil {
		helpers.RespondError(c, "CloseListingHandler", err, map[string]any{"listing_id": listingID, "user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponse(listing), "listing closed successfully")
	helpers.LogSuccess("CloseListingHandler", "listing closed successfully", map[string]any{
		"listing_id": listingID,
		"user_id":    userID,
	})
}

// WatchHandler handles POST /listings/:listing_id/watch
func (h *AuctionHandler) WatchHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	userID, _ := helpers.IdentityFromContext(c)

	if err := h.service.AddToWatchlist(c.Request.Context(), userID, listingID); err != nil {
		helpers.RespondError(c, "WatchHandler", err, map[string]any{"listing_id": listingID, "user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.WatchResponse{ListingID: listingID, Watching: true}, "listing added to watchlist")
}

// UnwatchHandler handles DELETE /listings/:listing_id/watch
func (h *AuctionHandler) UnwatchHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	userID, _ := helpers.IdentityFromContext(c)

	if err := h.service.RemoveFromWatchlist(c.Request.Context(), userID, listingID); err != nil {
		helpers.RespondError(c, "UnwatchHandler", err, map[string]any{"listing_id": listingID, "user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.WatchResponse{ListingID: listingID, Watching: false}, "listing removed from watchlist")
}

// GetWatchlistHandler handles GET /watchlist
func (h *AuctionHandler) GetWatchlistHandler(c *gin.Context) {
	userID, _ := helpers.IdentityFromContext(c)

	listings, err := h.service.GetWatchlist(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetWatchlistHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(listings), "watchlist retrieved successfully")
}

// ListCategoriesHandler handles GET /categories
func (h *AuctionHandler) ListCategoriesHandler(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "ListCategoriesHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToCategoryResponses(categories), "categories retrieved successfully")
}

// ListByCategoryHandler handles GET /categories/:name/listings
func (h *AuctionHandler) ListByCategoryHandler(c *gin.Context) {
	name := c.Param("name")

	listings, err := h.service.ListByCategory(c.Request.Context(), name)
	if err != nil {
		helpers.RespondError(c, "ListByCategoryHandler", err, map[string]any{"category": name})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(listings), "listings retrieved successfully")
}
