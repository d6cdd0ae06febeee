package procedures

import "context"

// Repo defines persistence operations for procedures.
type Repo interface {
	Create(ctx context.Context, p Procedure) error
	GetByID(ctx context.Context, id string) (Procedure, error)
	// List returns matching procedures newest first.
	List(ctx context.Context, f Filter) ([]Procedure, error)
}
