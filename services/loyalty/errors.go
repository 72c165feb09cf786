package loyalty

import (
	"errors"
	"fmt"
)

// ErrInvalidAmount signals a redemption that is not a positive multiple of 100.
var ErrInvalidAmount = errors.New("points must be a positive multiple of 100")

// InsufficientBalanceError signals a redemption exceeding the account balance.
type InsufficientBalanceError struct {
	Available int64
	Requested int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient points: requested %d, available %d", e.Requested, e.Available)
}
