package loyalty

import (
	"errors"
	"math"
	"time"

	"slotify/models"

	loyaltyRepo "slotify/database/repository/loyalty"
)

// RedeemResult is the outcome of a successful redemption.
type RedeemResult struct {
	Account *models.LoyaltyAccount
	Value   float64 // dollar value of the redeemed points
}

// LoyaltyService is the append-only points ledger per customer.
type LoyaltyService interface {
	// Award credits floor(amount) points for a completed payment. Amounts of
	// zero or less are a no-op. Award never produces a user-visible failure;
	// callers on the payment path log and swallow its error.
	Award(customerID string, amount float64, sourceAppointmentID, description string) (*models.LoyaltyAccount, error)
	// Redeem converts points to credit at 100 points = $5.00. Fails with
	// ErrInvalidAmount unless points is a positive multiple of 100, and with
	// *InsufficientBalanceError when the balance is short.
	Redeem(customerID string, points int64, description string) (*RedeemResult, error)
	// GetAccount returns the customer's account, creating it lazily.
	GetAccount(customerID string) (*models.LoyaltyAccount, error)
	// GetHistory returns one page of ledger entries, newest first.
	GetHistory(customerID string, page, limit int64) ([]models.LoyaltyTransaction, error)
}

// DefaultLoyaltyService is the production implementation of LoyaltyService.
type DefaultLoyaltyService struct {
	Repo loyaltyRepo.LoyaltyRepository
}

// Award credits floor(amount) points to the customer's ledger.
// Sub-dollar remainders are dropped, not rolled over.
func (s *DefaultLoyaltyService) Award(customerID string, amount float64, sourceAppointmentID, description string) (*models.LoyaltyAccount, error) {
	points := int64(math.Floor(amount))
	if points <= 0 {
		return nil, nil
	}
	if description == "" {
		description = "Points earned from appointment"
	}
	txn := models.LoyaltyTransaction{
		Type:        models.LoyaltyEarned,
		Points:      points,
		Description: description,
		CreatedAt:   time.Now(),
	}
	return s.Repo.Earn(customerID, txn)
}

// Redeem converts points to credit at the fixed rate.
func (s *DefaultLoyaltyService) Redeem(customerID string, points int64, description string) (*RedeemResult, error) {
	if points <= 0 || points%models.RedeemBlock != 0 {
		return nil, ErrInvalidAmount
	}

	acc, err := s.Repo.GetOrCreate(customerID)
	if err != nil {
		return nil, err
	}
	if points > acc.Points {
		return nil, &InsufficientBalanceError{Available: acc.Points, Requested: points}
	}

	value := models.RedeemValue(points)
	if description == "" {
		description = "Points redeemed for credit"
	}
	txn := models.LoyaltyTransaction{
		Type:        models.LoyaltyRedeemed,
		Points:      -points,
		Description: description,
		CreatedAt:   time.Now(),
	}

	updated, err := s.Repo.Redeem(customerID, points, txn)
	if err != nil {
		// The balance guard sits in the store; a concurrent redemption may
		// have drained the account since the read above.
		if errors.Is(err, loyaltyRepo.ErrInsufficientPoints) {
			return nil, &InsufficientBalanceError{Available: acc.Points, Requested: points}
		}
		return nil, err
	}
	return &RedeemResult{Account: updated, Value: value}, nil
}

// GetAccount returns the customer's account, creating it lazily.
func (s *DefaultLoyaltyService) GetAccount(customerID string) (*models.LoyaltyAccount, error) {
	return s.Repo.GetOrCreate(customerID)
}

// GetHistory returns one page of ledger entries, newest first.
func (s *DefaultLoyaltyService) GetHistory(customerID string, page, limit int64) ([]models.LoyaltyTransaction, error) {
	return s.Repo.GetHistoryPage(customerID, page, limit)
}
