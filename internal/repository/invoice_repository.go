package repository

import (
	"context"

	"funnybanny-backend/internal/db"
	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/ports"
)

type InvoiceRepository struct {
	Store ports.Store
}

func InvoicePath(id string) string { return db.JoinPath(domain.PathInvoices, id) }

// InvoiceFieldPath addresses a single field of an invoice, e.g. "status".
func InvoiceFieldPath(id, field string) string {
	return db.JoinPath(domain.PathInvoices, id, field)
}

func (r InvoiceRepository) List(ctx context.Context) ([]domain.Invoice, error) {
	return listCollection(ctx, r.Store, domain.PathInvoices, func(i *domain.Invoice, id string) { i.ID = id })
}

func (r InvoiceRepository) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	inv, err := getOne[domain.Invoice](ctx, r.Store, InvoicePath(id))
	if err != nil {
		return nil, err
	}
	inv.ID = id
	return inv, nil
}

// NewID reserves a key for an invoice that will be written as part of a batch.
func (r InvoiceRepository) NewID(ctx context.Context) (string, error) {
	return r.Store.Push(ctx, domain.PathInvoices)
}

func (r InvoiceRepository) Create(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	id, err := r.NewID(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.Store.Set(ctx, InvoicePath(id), inv); err != nil {
		return nil, err
	}
	inv.ID = id
	return &inv, nil
}

func (r InvoiceRepository) Save(ctx context.Context, inv domain.Invoice) error {
	return r.Store.Set(ctx, InvoicePath(inv.ID), inv)
}

func (r InvoiceRepository) Delete(ctx context.Context, ids []string) error {
	return r.Store.Update(ctx, DeletePaths(domain.PathInvoices, ids))
}
