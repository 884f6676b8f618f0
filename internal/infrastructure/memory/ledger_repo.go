package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/google/uuid"
)

type ledgerRepo struct {
	v *view
}

func (r *ledgerRepo) ensure(memberID string) (*domain.Wallet, *domain.CommissionRecord) {
	st := r.v.state()
	now := r.v.now()
	w, ok := st.wallets[memberID]
	if !ok {
		w = &domain.Wallet{MemberID: memberID, CreatedAt: now, UpdatedAt: now}
		st.wallets[memberID] = w
	}
	c, ok := st.commissions[memberID]
	if !ok {
		c = &domain.CommissionRecord{MemberID: memberID, CreatedAt: now, UpdatedAt: now}
		st.commissions[memberID] = c
	}
	return w, c
}

func (r *ledgerRepo) EnsureAccounts(ctx context.Context, memberID string) error {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	r.ensure(memberID)
	return nil
}

func (r *ledgerRepo) Credit(ctx context.Context, credit domain.Credit) (float64, error) {
	if hook := r.v.store.Hooks.BeforeCredit; hook != nil {
		if err := hook(credit); err != nil {
			return 0, err
		}
	}

	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	w, c := r.ensure(credit.MemberID)
	now := r.v.now()
	w.Balance += credit.Amount
	w.UpdatedAt = now
	w.Transactions = append(w.Transactions, domain.WalletTransaction{
		ID:          uuid.New().String(),
		MemberID:    credit.MemberID,
		Type:        credit.Type,
		Amount:      credit.Amount,
		Description: credit.Description,
		Status:      domain.TransactionCompleted,
		CreatedAt:   now,
	})
	c.TotalEarned += credit.Amount
	c.UpdatedAt = now
	c.History = append(c.History, domain.CommissionEntry{
		ID:              uuid.New().String(),
		MemberID:        credit.MemberID,
		Type:            credit.Type,
		Amount:          credit.Amount,
		RelatedMemberID: credit.RelatedMemberID,
		Details:         credit.Description,
		CreatedAt:       now,
	})
	return c.TotalEarned, nil
}

func (r *ledgerRepo) GetWallet(ctx context.Context, memberID string) (*domain.Wallet, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	w, ok := r.v.state().wallets[memberID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, memberID)
	}
	return cloneWallet(w), nil
}

func (r *ledgerRepo) GetCommissionRecord(ctx context.Context, memberID string) (*domain.CommissionRecord, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	c, ok := r.v.state().commissions[memberID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCommissionNotFound, memberID)
	}
	return cloneCommission(c), nil
}

func (r *ledgerRepo) SumEarnedSince(ctx context.Context, memberID string, commissionType domain.CommissionType, since time.Time) (float64, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	c, ok := r.v.state().commissions[memberID]
	if !ok {
		return 0, nil
	}
	var sum float64
	for _, e := range c.History {
		if e.Type == commissionType && !e.CreatedAt.Before(since) {
			sum += e.Amount
		}
	}
	return sum, nil
}
