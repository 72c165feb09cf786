package loyaltyRepo

import (
	"errors"

	"slotify/models"
)

// ErrInsufficientPoints is returned by Redeem when the atomic balance guard
// finds fewer points than requested.
var ErrInsufficientPoints = errors.New("insufficient loyalty points")

// LoyaltyRepository defines data access for loyalty accounts. Accounts are
// created lazily: every mutation and read upserts the zeroed document on
// first touch.
type LoyaltyRepository interface {
	// GetOrCreate returns the account, creating an empty bronze one if absent.
	GetOrCreate(customerID string) (*models.LoyaltyAccount, error)
	// Earn appends an earning entry and increments points and totalEarned in
	// one atomic update, then re-derives the tier. Returns the updated account.
	Earn(customerID string, txn models.LoyaltyTransaction) (*models.LoyaltyAccount, error)
	// Redeem appends a redemption entry, decrements points and increments
	// totalRedeemed. The balance check is part of the update filter; a short
	// balance yields ErrInsufficientPoints with no partial effect.
	Redeem(customerID string, points int64, txn models.LoyaltyTransaction) (*models.LoyaltyAccount, error)
	// GetHistoryPage returns one page of the history, newest first.
	GetHistoryPage(customerID string, page, limit int64) ([]models.LoyaltyTransaction, error)
}
