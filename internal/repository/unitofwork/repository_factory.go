package unitofwork

import "context"

// RepositoryFactory hands out fresh units of work bound to the shared DB handle.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
