package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
)

// SequenceRepositoryFacade defines the per-account counter operations. Both
// allocation variants are single atomic upsert-increments: two concurrent
// calls can never observe the same value.
type SequenceRepositoryFacade interface {
	// GetCounter retrieves the counter state for (account, namespace), or
	// ErrNotFound when it has never been allocated.
	GetCounter(ctx context.Context, accountID string, namespace domain.SequenceNamespace) (*domain.SequenceCounter, error)

	// AllocateNext advances the counter to at least candidate and returns the
	// new value. Passing candidate 0 is a plain increment.
	AllocateNext(ctx context.Context, accountID string, namespace domain.SequenceNamespace, candidate int64) (int64, error)

	// AllocateNextInTx is AllocateNext inside the caller's transaction. An
	// aborted payment rolls the allocated receipt number back with the rest
	// of the write.
	AllocateNextInTx(ctx context.Context, tx pgx.Tx, accountID string, namespace domain.SequenceNamespace, candidate int64) (int64, error)

	// SetTemplate stores the account's number format template for a
	// namespace, creating the counter row when needed.
	SetTemplate(ctx context.Context, accountID string, namespace domain.SequenceNamespace, template string) error
}
