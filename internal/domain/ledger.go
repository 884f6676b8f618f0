package domain

import (
	"context"
	"time"
)

type CommissionType string

const (
	CommissionBinaryBonus     CommissionType = "BINARY_BONUS"
	CommissionMatchingBonus   CommissionType = "MATCHING_BONUS"
	CommissionDirectReferral  CommissionType = "DIRECT_REFERRAL"
	CommissionRankAchievement CommissionType = "RANK_ACHIEVEMENT"
	CommissionROI             CommissionType = "ROI"
	CommissionCustom          CommissionType = "CUSTOM"
)

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionPending   TransactionStatus = "PENDING"
)

type WalletTransaction struct {
	ID          string
	MemberID    string
	Reference   string
	Type        CommissionType
	Amount      float64
	Description string
	Status      TransactionStatus
	CreatedAt   time.Time
}

// Wallet.Balance always equals the sum of its transaction amounts.
type Wallet struct {
	MemberID     string
	Balance      float64
	Transactions []WalletTransaction
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CommissionEntry struct {
	ID              string
	MemberID        string
	Type            CommissionType
	Amount          float64
	RelatedMemberID string
	Details         string
	CreatedAt       time.Time
}

// CommissionRecord.TotalEarned is a running total and never decreases.
type CommissionRecord struct {
	MemberID    string
	TotalEarned float64
	History     []CommissionEntry
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Credit is one payout landing in both the wallet and the commission ledger.
type Credit struct {
	MemberID        string
	Type            CommissionType
	Amount          float64
	Description     string
	RelatedMemberID string
}

type LedgerRepository interface {
	EnsureAccounts(ctx context.Context, memberID string) error
	// Credit appends to both ledgers and returns the member's new TotalEarned.
	Credit(ctx context.Context, credit Credit) (float64, error)
	GetWallet(ctx context.Context, memberID string) (*Wallet, error)
	GetCommissionRecord(ctx context.Context, memberID string) (*CommissionRecord, error)
	SumEarnedSince(ctx context.Context, memberID string, commissionType CommissionType, since time.Time) (float64, error)
}
