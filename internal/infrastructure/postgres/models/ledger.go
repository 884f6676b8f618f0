package models

import "time"

type WalletModel struct {
	MemberID  string  `gorm:"primaryKey;type:uuid"`
	Balance   float64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (WalletModel) TableName() string { return "wallets" }

type WalletTransactionModel struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	MemberID    string `gorm:"type:uuid;not null;index:idx_wallet_tx_member"`
	Reference   string `gorm:"uniqueIndex"`
	Type        string `gorm:"not null"`
	Amount      float64
	Description string
	Status      string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index:idx_wallet_tx_member"`
}

func (WalletTransactionModel) TableName() string { return "wallet_transactions" }

type CommissionModel struct {
	MemberID    string  `gorm:"primaryKey;type:uuid"`
	TotalEarned float64 `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CommissionModel) TableName() string { return "commissions" }

type CommissionEntryModel struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	MemberID        string `gorm:"type:uuid;not null;index:idx_commission_entries_member_type"`
	Type            string `gorm:"not null;index:idx_commission_entries_member_type"`
	Amount          float64
	RelatedMemberID *string `gorm:"type:uuid"`
	Details         string
	CreatedAt       time.Time `gorm:"index:idx_commission_entries_member_type"`
}

func (CommissionEntryModel) TableName() string { return "commission_entries" }
