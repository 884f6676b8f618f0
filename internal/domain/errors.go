package domain

import "errors"

var (
	ErrAlreadyPlaced      = errors.New("member already placed")
	ErrMemberNotFound     = errors.New("member not found")
	ErrSponsorNotFound    = errors.New("sponsor not found")
	ErrParentNotPlaced    = errors.New("placement root is not in the tree")
	ErrSlotTaken          = errors.New("placement slot already taken")
	ErrInvalidStrategy    = errors.New("invalid spillover strategy")
	ErrInvalidConfig      = errors.New("invalid config snapshot")
	ErrConfigNotFound     = errors.New("config snapshot not found")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrNotActive          = errors.New("member is not active")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrCommissionNotFound = errors.New("commission record not found")
	ErrTransient          = errors.New("transient storage failure")
)

// IsRetryable reports whether a failed unit of work may be replayed from the top.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrSlotTaken)
}
