package ledger

import (
	"context"

	"github.com/inventra/backend/internal/domain/catalog"
	"github.com/inventra/backend/internal/domain/ledger"
	"github.com/inventra/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the stock-affecting
// repositories. Everything executed within one scope commits or rolls back
// atomically: an order status write and its ledger entries are never
// observed half-applied.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories scoped to
// the current transaction. Products() must hand out a repository whose
// locked lookups hold a row lock for the rest of the transaction; that lock
// is what serializes concurrent stock checks on the same product.
type TransactionalRepositories interface {
	// Products returns the product repository scoped to the current transaction
	Products() catalog.ProductRepository
	// Entries returns the stock ledger repository scoped to the current transaction
	Entries() ledger.EntryRepository
	// Orders returns the order repository scoped to the current transaction
	Orders() order.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests where repositories are in-memory fakes.
type NoOpTransactionScope struct {
	products catalog.ProductRepository
	entries  ledger.EntryRepository
	orders   order.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(products catalog.ProductRepository, entries ledger.EntryRepository, orders order.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{products: products, entries: entries, orders: orders}
}

// Execute runs the function directly, outside any transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository {
	return s.products
}

// Entries returns the stock ledger repository
func (s *NoOpTransactionScope) Entries() ledger.EntryRepository {
	return s.entries
}

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() order.Repository {
	return s.orders
}
