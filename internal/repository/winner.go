package repository

import model "auction-site/internal/models"

// winningBid returns the highest bid. Among equal amounts the latest one wins,
// and bids with equal timestamps are ordered by id.
func winningBid(bids []model.Bid) (model.Bid, bool) {
	if len(bids) == 0 {
		return model.Bid{}, false
	}

	winning := bids[0]
	for _, b := range bids[1:] {
		switch cmp := b.Amount.Cmp(winning.Amount); {
		case cmp > 0:
			winning = b
		case cmp == 0 && bidAfter(b, winning):
			winning = b
		}
	}
	return winning, true
}

// bidAfter reports whether a was placed after b: later CreatedAt, then greater id.
// Both stores use the same order when listing bids.
func bidAfter(a, b model.Bid) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
