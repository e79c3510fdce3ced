package round

import "context"

// Repository describes round persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Round, error)
	GetByID(ctx context.Context, roundID string) (Round, bool, error)
	// GetCurrent returns the next round whose race has not started yet.
	GetCurrent(ctx context.Context) (Round, bool, error)
	Upsert(ctx context.Context, item Round) error
}
