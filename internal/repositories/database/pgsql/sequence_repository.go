package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	portsrepo "github.com/quillbooks/invoicing_app/internal/core/ports/repositories"
	"github.com/quillbooks/invoicing_app/internal/models"
	"github.com/quillbooks/invoicing_app/internal/utils/mapping"
)

type PgxSequenceRepository struct {
	BaseRepository
}

// newPgxSequenceRepository creates a new repository for sequence counters.
func newPgxSequenceRepository(pool *pgxpool.Pool) portsrepo.SequenceRepositoryFacade {
	return &PgxSequenceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxSequenceRepository implements portsrepo.SequenceRepositoryFacade
var _ portsrepo.SequenceRepositoryFacade = (*PgxSequenceRepository)(nil)

// allocateQuery advances the counter in one atomic upsert. GREATEST folds the
// caller's candidate (derived from the latest issued number) into the
// increment, so a lagging counter can never re-issue a taken value. Two
// concurrent executions serialize on the row and observe distinct values.
const allocateQuery = `
	INSERT INTO sequence_counters (account_id, namespace, last_value, template, last_updated_at)
	VALUES ($1, $2, GREATEST(1, $3), '', $4)
	ON CONFLICT (account_id, namespace)
	DO UPDATE SET last_value = GREATEST(sequence_counters.last_value + 1, $3),
	              last_updated_at = $4
	RETURNING last_value;
`

// GetCounter retrieves the counter state for (account, namespace).
func (r *PgxSequenceRepository) GetCounter(ctx context.Context, accountID string, namespace domain.SequenceNamespace) (*domain.SequenceCounter, error) {
	query := `
		SELECT account_id, namespace, last_value, template, last_updated_at
		FROM sequence_counters
		WHERE account_id = $1 AND namespace = $2;
	`
	var m models.SequenceCounter
	err := r.Pool.QueryRow(ctx, query, accountID, string(namespace)).Scan(
		&m.AccountID,
		&m.Namespace,
		&m.LastValue,
		&m.Template,
		&m.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find sequence counter for account "+accountID, err)
	}
	counter := mapping.ToDomainSequenceCounter(m)
	return &counter, nil
}

// AllocateNext advances the counter to at least candidate and returns the new
// value.
func (r *PgxSequenceRepository) AllocateNext(ctx context.Context, accountID string, namespace domain.SequenceNamespace, candidate int64) (int64, error) {
	var next int64
	err := r.Pool.QueryRow(ctx, allocateQuery, accountID, string(namespace), candidate, time.Now().UTC()).Scan(&next)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to allocate sequence for account "+accountID, err)
	}
	return next, nil
}

// AllocateNextInTx is AllocateNext inside the caller's transaction, so an
// aborted write rolls the allocation back.
func (r *PgxSequenceRepository) AllocateNextInTx(ctx context.Context, tx pgx.Tx, accountID string, namespace domain.SequenceNamespace, candidate int64) (int64, error) {
	var next int64
	err := tx.QueryRow(ctx, allocateQuery, accountID, string(namespace), candidate, time.Now().UTC()).Scan(&next)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to allocate sequence for account "+accountID, err)
	}
	return next, nil
}

// SetTemplate stores the account's number format template for a namespace.
func (r *PgxSequenceRepository) SetTemplate(ctx context.Context, accountID string, namespace domain.SequenceNamespace, template string) error {
	query := `
		INSERT INTO sequence_counters (account_id, namespace, last_value, template, last_updated_at)
		VALUES ($1, $2, 0, $3, $4)
		ON CONFLICT (account_id, namespace)
		DO UPDATE SET template = $3, last_updated_at = $4;
	`
	if _, err := r.Pool.Exec(ctx, query, accountID, string(namespace), template, time.Now().UTC()); err != nil {
		return apperrors.NewAppError(500, "failed to set sequence template for account "+accountID, err)
	}
	return nil
}
