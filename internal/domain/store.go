package domain

import "context"

type UnitOfWork interface {
	Members() MemberRepository
	Ledger() LedgerRepository
	Configs() ConfigSnapshotRepository
}

// Store runs fn atomically: either every write made through uow lands or none does.
type Store interface {
	UnitOfWork
	InTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}
