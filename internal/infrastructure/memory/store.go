// Package memory is an in-process implementation of the domain storage ports.
// InTx holds a store-wide lock and restores a copy of the state when fn fails,
// which gives the same all-or-nothing behaviour as a database transaction.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
)

type state struct {
	members     map[string]*domain.Member
	order       []string
	wallets     map[string]*domain.Wallet
	commissions map[string]*domain.CommissionRecord
	configs     []*domain.ConfigSnapshot
}

func newState() *state {
	return &state{
		members:     make(map[string]*domain.Member),
		wallets:     make(map[string]*domain.Wallet),
		commissions: make(map[string]*domain.CommissionRecord),
	}
}

func (s *state) clone() *state {
	out := newState()
	for id, m := range s.members {
		out.members[id] = cloneMember(m)
	}
	out.order = append([]string(nil), s.order...)
	for id, w := range s.wallets {
		out.wallets[id] = cloneWallet(w)
	}
	for id, c := range s.commissions {
		out.commissions[id] = cloneCommission(c)
	}
	for _, c := range s.configs {
		out.configs = append(out.configs, cloneConfig(c))
	}
	return out
}

// Hooks let tests inject storage failures at specific writes.
type Hooks struct {
	BeforeCredit       func(credit domain.Credit) error
	BeforeAddLegVolume func(memberID string, side domain.Side) error
}

type Store struct {
	mu    sync.Mutex
	st    *state
	Hooks Hooks
	Now   func() time.Time
}

func NewStore() *Store {
	return &Store{st: newState(), Now: time.Now}
}

func (s *Store) view(locker sync.Locker) *view {
	return &view{store: s, lock: locker}
}

func (s *Store) Members() domain.MemberRepository         { return &memberRepo{s.view(&s.mu)} }
func (s *Store) Ledger() domain.LedgerRepository          { return &ledgerRepo{s.view(&s.mu)} }
func (s *Store) Configs() domain.ConfigSnapshotRepository { return &configRepo{s.view(&s.mu)} }

func (s *Store) InTx(ctx context.Context, fn func(uow domain.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.st.clone()
	if err := fn(s.view(noopLocker{})); err != nil {
		*s.st = *backup
		return err
	}
	return nil
}

// view is the unit of work handed to repositories; inside InTx it does not lock.
type view struct {
	store *Store
	lock  sync.Locker
}

func (v *view) Members() domain.MemberRepository         { return &memberRepo{v} }
func (v *view) Ledger() domain.LedgerRepository          { return &ledgerRepo{v} }
func (v *view) Configs() domain.ConfigSnapshotRepository { return &configRepo{v} }

func (v *view) state() *state { return v.store.st }

func (v *view) now() time.Time {
	if v.store.Now != nil {
		return v.store.Now()
	}
	return time.Now()
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

func cloneMember(m *domain.Member) *domain.Member {
	if m == nil {
		return nil
	}
	out := *m
	return &out
}

func cloneWallet(w *domain.Wallet) *domain.Wallet {
	out := *w
	out.Transactions = append([]domain.WalletTransaction(nil), w.Transactions...)
	return &out
}

func cloneCommission(c *domain.CommissionRecord) *domain.CommissionRecord {
	out := *c
	out.History = append([]domain.CommissionEntry(nil), c.History...)
	return &out
}

func cloneConfig(c *domain.ConfigSnapshot) *domain.ConfigSnapshot {
	out := *c
	out.MatchingBonusGenerations = append([]float64(nil), c.MatchingBonusGenerations...)
	return &out
}
