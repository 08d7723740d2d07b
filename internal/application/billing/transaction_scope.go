package billing

import (
	"context"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/project"
)

// TransactionScope provides transactional access to the repositories a billing write touches.
// All repository operations inside Execute commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to the current transaction
type TransactionalRepositories interface {
	Projects() project.ProjectRepository
	Offers() billing.OfferRepository
	Invoices() billing.InvoiceRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Used in tests.
type NoOpTransactionScope struct {
	projects project.ProjectRepository
	offers   billing.OfferRepository
	invoices billing.InvoiceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(projects project.ProjectRepository, offers billing.OfferRepository, invoices billing.InvoiceRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{projects: projects, offers: offers, invoices: invoices}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Projects returns the project repository
func (s *NoOpTransactionScope) Projects() project.ProjectRepository { return s.projects }

// Offers returns the offer repository
func (s *NoOpTransactionScope) Offers() billing.OfferRepository { return s.offers }

// Invoices returns the invoice repository
func (s *NoOpTransactionScope) Invoices() billing.InvoiceRepository { return s.invoices }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
