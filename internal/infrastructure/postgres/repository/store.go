package repository

import (
	"context"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB

	members *DefaultMemberRepository
	ledger  *DefaultLedgerRepository
	configs *DefaultConfigSnapshotRepository
}

func NewStore(db *gorm.DB) (*Store, error) {
	ledger, err := NewDefaultLedgerRepository(db)
	if err != nil {
		return nil, err
	}
	return &Store{
		DB:      db,
		members: NewDefaultMemberRepository(db),
		ledger:  ledger,
		configs: NewDefaultConfigSnapshotRepository(db),
	}, nil
}

func (s *Store) Members() domain.MemberRepository         { return s.members }
func (s *Store) Ledger() domain.LedgerRepository          { return s.ledger }
func (s *Store) Configs() domain.ConfigSnapshotRepository { return s.configs }

func (s *Store) InTx(ctx context.Context, fn func(uow domain.UnitOfWork) error) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.withTx(tx))
	})
	if err != nil && !domain.IsRetryable(err) {
		return classify(err)
	}
	return err
}

func (s *Store) withTx(tx *gorm.DB) *Store {
	return &Store{
		DB:      tx,
		members: &DefaultMemberRepository{DB: tx},
		ledger:  &DefaultLedgerRepository{DB: tx, referenceID: s.ledger.referenceID},
		configs: &DefaultConfigSnapshotRepository{DB: tx},
	}
}
