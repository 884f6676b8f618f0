package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultLedgerRepository struct {
	DB          *gorm.DB
	referenceID func() string
}

func NewDefaultLedgerRepository(db *gorm.DB) (*DefaultLedgerRepository, error) {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, fmt.Errorf("failed to init reference generator: %w", err)
	}
	return &DefaultLedgerRepository{DB: db, referenceID: idGenerator}, nil
}

func (r *DefaultLedgerRepository) EnsureAccounts(ctx context.Context, memberID string) error {
	now := time.Now()
	db := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true})
	if err := db.Create(&models.WalletModel{MemberID: memberID, CreatedAt: now, UpdatedAt: now}).Error; err != nil {
		return classify(fmt.Errorf("failed to ensure wallet: %w", err))
	}
	if err := db.Create(&models.CommissionModel{MemberID: memberID, CreatedAt: now, UpdatedAt: now}).Error; err != nil {
		return classify(fmt.Errorf("failed to ensure commission record: %w", err))
	}
	return nil
}

// Credit must run inside a unit of work: it touches four tables.
func (r *DefaultLedgerRepository) Credit(ctx context.Context, credit domain.Credit) (float64, error) {
	if err := r.EnsureAccounts(ctx, credit.MemberID); err != nil {
		return 0, err
	}

	now := time.Now()
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.WalletModel{}).
		Where("member_id = ?", credit.MemberID).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", credit.Amount),
			"updated_at": now,
		}).Error; err != nil {
		return 0, classify(fmt.Errorf("failed to update wallet balance: %w", err))
	}

	tx := mappers.ToGORMWalletTransaction(&domain.WalletTransaction{
		ID:          uuid.New().String(),
		MemberID:    credit.MemberID,
		Reference:   r.referenceID(),
		Type:        credit.Type,
		Amount:      credit.Amount,
		Description: credit.Description,
		Status:      domain.TransactionCompleted,
		CreatedAt:   now,
	})
	if err := db.Create(tx).Error; err != nil {
		return 0, classify(fmt.Errorf("failed to append wallet transaction: %w", err))
	}

	if err := db.Model(&models.CommissionModel{}).
		Where("member_id = ?", credit.MemberID).
		Updates(map[string]interface{}{
			"total_earned": gorm.Expr("total_earned + ?", credit.Amount),
			"updated_at":   now,
		}).Error; err != nil {
		return 0, classify(fmt.Errorf("failed to update commission total: %w", err))
	}

	entry := mappers.ToGORMCommissionEntry(&domain.CommissionEntry{
		ID:              uuid.New().String(),
		MemberID:        credit.MemberID,
		Type:            credit.Type,
		Amount:          credit.Amount,
		RelatedMemberID: credit.RelatedMemberID,
		Details:         credit.Description,
		CreatedAt:       now,
	})
	if err := db.Create(entry).Error; err != nil {
		return 0, classify(fmt.Errorf("failed to append commission entry: %w", err))
	}

	var totalEarned float64
	if err := db.Model(&models.CommissionModel{}).
		Where("member_id = ?", credit.MemberID).
		Select("total_earned").
		Scan(&totalEarned).Error; err != nil {
		return 0, classify(err)
	}
	return totalEarned, nil
}

func (r *DefaultLedgerRepository) GetWallet(ctx context.Context, memberID string) (*domain.Wallet, error) {
	db := r.DB.WithContext(ctx)
	var wallet models.WalletModel
	if err := db.Where("member_id = ?", memberID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, memberID)
		}
		return nil, classify(err)
	}
	var txs []models.WalletTransactionModel
	if err := db.Where("member_id = ?", memberID).Order("created_at ASC").Find(&txs).Error; err != nil {
		return nil, classify(err)
	}
	return mappers.ToDomainWallet(&wallet, txs), nil
}

func (r *DefaultLedgerRepository) GetCommissionRecord(ctx context.Context, memberID string) (*domain.CommissionRecord, error) {
	db := r.DB.WithContext(ctx)
	var record models.CommissionModel
	if err := db.Where("member_id = ?", memberID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCommissionNotFound, memberID)
		}
		return nil, classify(err)
	}
	var entries []models.CommissionEntryModel
	if err := db.Where("member_id = ?", memberID).Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, classify(err)
	}
	return mappers.ToDomainCommissionRecord(&record, entries), nil
}

func (r *DefaultLedgerRepository) SumEarnedSince(ctx context.Context, memberID string, commissionType domain.CommissionType, since time.Time) (float64, error) {
	var sum float64
	if err := r.DB.WithContext(ctx).
		Model(&models.CommissionEntryModel{}).
		Where("member_id = ? AND type = ? AND created_at >= ?", memberID, string(commissionType), since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error; err != nil {
		return 0, classify(err)
	}
	return sum, nil
}
