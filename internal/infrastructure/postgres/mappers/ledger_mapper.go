package mappers

import (
	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/postgres/models"
)

func ToDomainWallet(model *models.WalletModel, txs []models.WalletTransactionModel) *domain.Wallet {
	wallet := &domain.Wallet{
		MemberID:     model.MemberID,
		Balance:      model.Balance,
		Transactions: make([]domain.WalletTransaction, len(txs)),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
	for i, tx := range txs {
		wallet.Transactions[i] = domain.WalletTransaction{
			ID:          tx.ID,
			MemberID:    tx.MemberID,
			Reference:   tx.Reference,
			Type:        domain.CommissionType(tx.Type),
			Amount:      tx.Amount,
			Description: tx.Description,
			Status:      domain.TransactionStatus(tx.Status),
			CreatedAt:   tx.CreatedAt,
		}
	}
	return wallet
}

func ToDomainCommissionRecord(model *models.CommissionModel, entries []models.CommissionEntryModel) *domain.CommissionRecord {
	record := &domain.CommissionRecord{
		MemberID:    model.MemberID,
		TotalEarned: model.TotalEarned,
		History:     make([]domain.CommissionEntry, len(entries)),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	for i, e := range entries {
		record.History[i] = domain.CommissionEntry{
			ID:              e.ID,
			MemberID:        e.MemberID,
			Type:            domain.CommissionType(e.Type),
			Amount:          e.Amount,
			RelatedMemberID: deref(e.RelatedMemberID),
			Details:         e.Details,
			CreatedAt:       e.CreatedAt,
		}
	}
	return record
}

func ToGORMCommissionEntry(entry *domain.CommissionEntry) *models.CommissionEntryModel {
	return &models.CommissionEntryModel{
		ID:              entry.ID,
		MemberID:        entry.MemberID,
		Type:            string(entry.Type),
		Amount:          entry.Amount,
		RelatedMemberID: ref(entry.RelatedMemberID),
		Details:         entry.Details,
		CreatedAt:       entry.CreatedAt,
	}
}

func ToGORMWalletTransaction(tx *domain.WalletTransaction) *models.WalletTransactionModel {
	return &models.WalletTransactionModel{
		ID:          tx.ID,
		MemberID:    tx.MemberID,
		Reference:   tx.Reference,
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Description: tx.Description,
		Status:      string(tx.Status),
		CreatedAt:   tx.CreatedAt,
	}
}
