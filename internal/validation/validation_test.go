package validation

import (
	"errors"
	"strings"
	"testing"

	"auction-site/internal/auctionerrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validListing() ListingInput {
	return ListingInput{
		Title:         "Vintage lamp",
		Description:   "Brass, works fine",
		StartingPrice: decimal.RequireFromString("100.00"),
		NewCategory:   "home",
	}
}

func TestValidateListing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(in *ListingInput)
		wantField  string
		wantReason string
	}{
		{name: "valid_new_category", mutate: func(in *ListingInput) {}},
		{name: "valid_existing_category", mutate: func(in *ListingInput) { in.NewCategory = ""; in.CategoryID = "cat-1" }},
		{name: "valid_image", mutate: func(in *ListingInput) { in.ImageURL = "https://example.com/lamp.png" }},
		{name: "empty_title", mutate: func(in *ListingInput) { in.Title = "   " }, wantField: "title", wantReason: auctionerrors.ReasonEmpty},
		{name: "long_title", mutate: func(in *ListingInput) { in.Title = strings.Repeat("a", 65) }, wantField: "title", wantReason: auctionerrors.ReasonTooLong},
		{name: "empty_description", mutate: func(in *ListingInput) { in.Description = "" }, wantField: "description", wantReason: auctionerrors.ReasonEmpty},
		{name: "zero_price", mutate: func(in *ListingInput) { in.StartingPrice = decimal.Zero }, wantField: "starting_price", wantReason: auctionerrors.ReasonNonPositive},
		{name: "price_too_large", mutate: func(in *ListingInput) { in.StartingPrice = decimal.RequireFromString("1000000") }, wantField: "starting_price", wantReason: auctionerrors.ReasonTooLarge},
		{name: "price_too_precise", mutate: func(in *ListingInput) { in.StartingPrice = decimal.RequireFromString("10.005") }, wantField: "starting_price", wantReason: auctionerrors.ReasonTooPrecise},
		{name: "both_categories", mutate: func(in *ListingInput) { in.CategoryID = "cat-1" }, wantField: "category", wantReason: auctionerrors.ReasonCategoryConflict},
		{name: "no_category", mutate: func(in *ListingInput) { in.NewCategory = "  " }, wantField: "category", wantReason: auctionerrors.ReasonCategoryMissing},
		{name: "relative_image_url", mutate: func(in *ListingInput) { in.ImageURL = "/lamp.png" }, wantField: "image_url", wantReason: auctionerrors.ReasonInvalidURL},
		{name: "ftp_image_url", mutate: func(in *ListingInput) { in.ImageURL = "ftp://example.com/lamp.png" }, wantField: "image_url", wantReason: auctionerrors.ReasonInvalidURL},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			in := validListing()
			tc.mutate(&in)

			_, err := ValidateListing(in)
			if tc.wantReason == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			require.True(t, errors.Is(err, auctionerrors.ErrValidation))
			var ve *auctionerrors.ValidationError
			require.True(t, errors.As(err, &ve))
			require.Equal(t, tc.wantField, ve.Field)
			require.Equal(t, tc.wantReason, ve.Reason)
		})
	}
}

func TestValidateListing_NormalizesNewCategory(t *testing.T) {
	in := validListing()
	in.NewCategory = "  tOOLS "

	out, err := ValidateListing(in)
	require.NoError(t, err)
	require.Equal(t, "Tools", out.NewCategory)
}

func TestValidateBidAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		amount     string
		wantReason string
	}{
		{name: "smallest", amount: "0.01"},
		{name: "largest", amount: "999999.99"},
		{name: "whole", amount: "150"},
		{name: "zero", amount: "0", wantReason: auctionerrors.ReasonNonPositive},
		{name: "negative", amount: "-5.00", wantReason: auctionerrors.ReasonNonPositive},
		{name: "over_max", amount: "1000000.00", wantReason: auctionerrors.ReasonTooLarge},
		{name: "three_places", amount: "1.001", wantReason: auctionerrors.ReasonTooPrecise},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateBidAmount(decimal.RequireFromString(tc.amount))
			if tc.wantReason == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, auctionerrors.ErrValidation)
			require.Equal(t, tc.wantReason, auctionerrors.Reason(err))
		})
	}
}

func TestValidateComment(t *testing.T) {
	body, err := ValidateComment("  nice lamp  ")
	require.NoError(t, err)
	require.Equal(t, "nice lamp", body)

	_, err = ValidateComment(" \n\t ")
	require.ErrorIs(t, err, auctionerrors.ErrValidation)
	require.Equal(t, auctionerrors.ReasonEmpty, auctionerrors.Reason(err))
}

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         RegistrationInput
		wantReason string
	}{
		{name: "valid", in: RegistrationInput{Username: "alice", Email: "a@example.com", Password: "pw", Confirmation: "pw"}},
		{name: "valid_no_email", in: RegistrationInput{Username: "alice", Password: "pw", Confirmation: "pw"}},
		{name: "no_username", in: RegistrationInput{Username: " ", Password: "pw", Confirmation: "pw"}, wantReason: auctionerrors.ReasonEmpty},
		{name: "bad_email", in: RegistrationInput{Username: "alice", Email: "nope", Password: "pw", Confirmation: "pw"}, wantReason: auctionerrors.ReasonInvalidEmail},
		{name: "no_password", in: RegistrationInput{Username: "alice"}, wantReason: auctionerrors.ReasonEmpty},
		{name: "long_password", in: RegistrationInput{Username: "alice", Password: strings.Repeat("p", 73), Confirmation: strings.Repeat("p", 73)}, wantReason: auctionerrors.ReasonTooLong},
		{name: "mismatch", in: RegistrationInput{Username: "alice", Password: "pw", Confirmation: "wp"}, wantReason: auctionerrors.ReasonPasswordMismatch},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ValidateRegistration(tc.in)
			if tc.wantReason == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, auctionerrors.ErrValidation)
			require.Equal(t, tc.wantReason, auctionerrors.Reason(err))
		})
	}
}

func TestNormalizeCategoryName(t *testing.T) {
	require.Equal(t, "Tools", NormalizeCategoryName("tools"))
	require.Equal(t, "Tools", NormalizeCategoryName("TOOLS"))
	require.Equal(t, "Home garden", NormalizeCategoryName(" home Garden "))
	require.Equal(t, "Électronique", NormalizeCategoryName("électronique"))
	require.Equal(t, "", NormalizeCategoryName("   "))
}
