// Package validation holds the input rules for listings, bids, comments and registration.
// Nothing here touches storage; a value that passes may still be refused by the workflow.
package validation

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"auction-site/internal/auctionerrors"

	"github.com/shopspring/decimal"
)

const (
	MaxTitleLength    = 64
	MaxCategoryLength = 64
	MoneyPlaces       = 2
)

// MaxAmount is the largest value a numeric(9,2) column holds.
var MaxAmount = decimal.RequireFromString("999999.99")

// ListingInput carries the fields of a listing creation request.
// Exactly one of CategoryID and NewCategory must be set.
type ListingInput struct {
	Title         string
	Description   string
	StartingPrice decimal.Decimal
	CategoryID    string
	NewCategory   string
	ImageURL      string
}

// RegistrationInput carries the fields of a sign-up request.
type RegistrationInput struct {
	Username     string
	Email        string
	Password     string
	Confirmation string
}

// ValidateListing checks a listing creation request and returns it trimmed,
// with NewCategory normalized.
func ValidateListing(in ListingInput) (ListingInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.NewCategory = strings.TrimSpace(in.NewCategory)
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	if in.Title == "" {
		return in, auctionerrors.NewValidationError("title", auctionerrors.ReasonEmpty)
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		return in, auctionerrors.NewValidationError("title", auctionerrors.ReasonTooLong)
	}
	if in.Description == "" {
		return in, auctionerrors.NewValidationError("description", auctionerrors.ReasonEmpty)
	}
	if err := ValidateAmount("starting_price", in.StartingPrice); err != nil {
		return in, err
	}

	switch {
	case in.CategoryID != "" && in.NewCategory != "":
		return in, auctionerrors.NewValidationError("category", auctionerrors.ReasonCategoryConflict)
	case in.CategoryID == "" && in.NewCategory == "":
		return in, auctionerrors.NewValidationError("category", auctionerrors.ReasonCategoryMissing)
	case in.NewCategory != "":
		if utf8.RuneCountInString(in.NewCategory) > MaxCategoryLength {
			return in, auctionerrors.NewValidationError("new_category", auctionerrors.ReasonTooLong)
		}
		in.NewCategory = NormalizeCategoryName(in.NewCategory)
	}

	if in.ImageURL != "" {
		u, err := url.Parse(in.ImageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return in, auctionerrors.NewValidationError("image_url", auctionerrors.ReasonInvalidURL)
		}
	}

	return in, nil
}

// ValidateAmount checks that a monetary value is positive, fits the storage
// precision and has at most two fractional digits.
func ValidateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return auctionerrors.NewValidationError(field, auctionerrors.ReasonNonPositive)
	}
	if amount.GreaterThan(MaxAmount) {
		return auctionerrors.NewValidationError(field, auctionerrors.ReasonTooLarge)
	}
	if !amount.Equal(amount.Truncate(MoneyPlaces)) {
		return auctionerrors.NewValidationError(field, auctionerrors.ReasonTooPrecise)
	}
	return nil
}

// ValidateBidAmount checks the shape of a bid amount only; the comparison
// against the live price happens in the workflow.
func ValidateBidAmount(amount decimal.Decimal) error {
	return ValidateAmount("amount", amount)
}

// ValidateComment returns the trimmed body or an error when it is blank.
func ValidateComment(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", auctionerrors.NewValidationError("body", auctionerrors.ReasonEmpty)
	}
	return body, nil
}

// ValidateRegistration checks a sign-up request and returns it with the
// username and email trimmed.
func ValidateRegistration(in RegistrationInput) (RegistrationInput, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" {
		return in, auctionerrors.NewValidationError("username", auctionerrors.ReasonEmpty)
	}
	if utf8.RuneCountInString(in.Username) > 150 {
		return in, auctionerrors.NewValidationError("username", auctionerrors.ReasonTooLong)
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return in, auctionerrors.NewValidationError("email", auctionerrors.ReasonInvalidEmail)
	}
	if in.Password == "" {
		return in, auctionerrors.NewValidationError("password", auctionerrors.ReasonEmpty)
	}
	// bcrypt ignores everything past 72 bytes
	if len(in.Password) > 72 {
		return in, auctionerrors.NewValidationError("password", auctionerrors.ReasonTooLong)
	}
	if in.Password != in.Confirmation {
		return in, auctionerrors.NewValidationError("confirmation", auctionerrors.ReasonPasswordMismatch)
	}
	return in, nil
}

// NormalizeCategoryName upper-cases the first letter and lower-cases the rest,
// so "tools", "TOOLS" and " Tools " all name the same category.
func NormalizeCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	runes := []rune(strings.ToLower(name))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
