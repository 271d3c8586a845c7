package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/metrics"
	"funnybanny-backend/internal/repository"
)

// NextDueDate moves currentDueDate one calendar month forward and pins it to the
// first or last day of that month. Month arithmetic is done on the month number,
// so a source day that does not exist in the target month never spills over
// (2024-01-31 -> 2024-02-01 / 2024-02-29). Unknown strategies fall back to the first day.
func NextDueDate(currentDueDate string, strategy domain.DueDateStrategy) (string, error) {
	d, err := domain.ParseDate(currentDueDate)
	if err != nil {
		return "", fmt.Errorf("parse due date: %w", err)
	}
	year, month := d.Year(), d.Month()+1

	var next time.Time
	if strategy == domain.LastDayNextMonth {
		// day 0 of the following month is the last day of this one
		next = time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	} else {
		next = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	}
	return domain.FormatDate(next), nil
}

// PromoteOverdue marks unpaid invoices whose due date is strictly before today as
// overdue. It updates invoices in place and returns the store writes to persist.
// Running it again on its own output returns no writes.
func PromoteOverdue(invoices []domain.Invoice, today string) map[string]any {
	updates := map[string]any{}
	day, err := domain.ParseDate(today)
	if err != nil {
		return updates
	}
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status != domain.InvoiceUnpaid {
			continue
		}
		due, err := domain.ParseDate(inv.DueDate)
		if err != nil {
			continue
		}
		if due.Before(day) {
			inv.Status = domain.InvoiceOverdue
			updates[repository.InvoiceFieldPath(inv.ID, "status")] = domain.InvoiceOverdue
		}
	}
	return updates
}

type MarkPaidOutcome string

const (
	MarkPaidAll     MarkPaidOutcome = "paid"
	MarkPaidPartial MarkPaidOutcome = "partial"
	MarkPaidNoop    MarkPaidOutcome = "noop"
)

type MarkPaidResult struct {
	Outcome     MarkPaidOutcome
	Paid        []string
	AlreadyPaid []string
	Missing     []string
	Successors  []domain.Invoice
}

// PlanMarkPaid computes the writes that pay the selected invoices and create one
// successor invoice for each. Already paid and unknown ids are reported, not paid.
func PlanMarkPaid(invoices []domain.Invoice, ids []string, today string, strategy domain.DueDateStrategy, newID func() (string, error)) (MarkPaidResult, map[string]any, error) {
	byID := make(map[string]domain.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}

	res := MarkPaidResult{}
	updates := map[string]any{}
	seen := map[string]struct{}{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		inv, ok := byID[id]
		switch {
		case !ok:
			res.Missing = append(res.Missing, id)
			continue
		case inv.Status == domain.InvoicePaid:
			res.AlreadyPaid = append(res.AlreadyPaid, id)
			continue
		}

		due, err := NextDueDate(inv.DueDate, strategy)
		if err != nil {
			return MarkPaidResult{}, nil, fmt.Errorf("invoice %s: %w", id, err)
		}
		successorID, err := newID()
		if err != nil {
			return MarkPaidResult{}, nil, err
		}
		successor := domain.Invoice{
			ID:        successorID,
			ChildID:   inv.ChildID,
			ChildName: inv.ChildName,
			Amount:    inv.Amount,
			IssueDate: today,
			DueDate:   due,
			Status:    domain.InvoiceUnpaid,
		}

		updates[repository.InvoiceFieldPath(id, "status")] = domain.InvoicePaid
		updates[repository.InvoiceFieldPath(id, "paymentDate")] = today
		updates[repository.InvoicePath(successorID)] = successor

		res.Paid = append(res.Paid, id)
		res.Successors = append(res.Successors, successor)
	}

	switch {
	case len(res.Paid) == 0:
		res.Outcome = MarkPaidNoop
	case len(res.AlreadyPaid) > 0 || len(res.Missing) > 0:
		res.Outcome = MarkPaidPartial
	default:
		res.Outcome = MarkPaidAll
	}
	return res, updates, nil
}

type InvoiceService struct {
	Invoices repository.InvoiceRepository
	Settings SettingsService
	Activity repository.ActivityLogRepository
	Clock    Clock
	Logger   *slog.Logger
}

var ErrInvalidInvoice = errors.New("invalid invoice")

// MarkPaid re-reads invoices from the store rather than trusting a caller's snapshot,
// then writes every status change and successor in one atomic update.
func (s InvoiceService) MarkPaid(ctx context.Context, actor string, ids []string) (MarkPaidResult, error) {
	if len(ids) == 0 {
		return MarkPaidResult{Outcome: MarkPaidNoop}, nil
	}
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return MarkPaidResult{}, err
	}
	invoices, err := s.Invoices.List(ctx)
	if err != nil {
		return MarkPaidResult{}, err
	}

	res, updates, err := PlanMarkPaid(invoices, ids, s.Clock.Today(), settings.NextDueDateStrategy, func() (string, error) {
		return s.Invoices.NewID(ctx)
	})
	if err != nil {
		return MarkPaidResult{}, err
	}
	if res.Outcome == MarkPaidNoop {
		return res, nil
	}
	if err := s.Invoices.Store.Update(ctx, updates); err != nil {
		return MarkPaidResult{}, fmt.Errorf("mark invoices paid: %w", err)
	}

	metrics.InvoicesPaid.Add(float64(len(res.Paid)))
	metrics.InvoicesIssued.Add(float64(len(res.Successors)))
	s.Logger.Info("invoices marked paid", "paid", len(res.Paid), "already_paid", len(res.AlreadyPaid), "missing", len(res.Missing))
	s.logActivity(ctx, actor, fmt.Sprintf("%d invoice(s) marked paid, %d successor(s) issued", len(res.Paid), len(res.Successors)))
	return res, nil
}

type InvoiceInput struct {
	ChildID   string
	Amount    float64
	IssueDate string
	DueDate   string
}

// Create issues an unpaid invoice for a child; the child's name is denormalized onto it.
func (s InvoiceService) Create(ctx context.Context, child domain.Child, in InvoiceInput) (*domain.Invoice, error) {
	inv, err := s.fromInput(child, in, s.Clock.Today())
	if err != nil {
		return nil, err
	}
	inv.Status = domain.InvoiceUnpaid
	return s.Invoices.Create(ctx, inv)
}

// Update edits the child, amount and dates of an invoice. Status and payment date
// are kept from the stored invoice; paying only happens through MarkPaid.
func (s InvoiceService) Update(ctx context.Context, id string, child domain.Child, in InvoiceInput) (*domain.Invoice, error) {
	current, err := s.Invoices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	inv, err := s.fromInput(child, in, current.IssueDate)
	if err != nil {
		return nil, err
	}
	inv.ID = id
	inv.Status = current.Status
	inv.PaymentDate = current.PaymentDate
	if err := s.Invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s InvoiceService) fromInput(child domain.Child, in InvoiceInput, defaultIssue string) (domain.Invoice, error) {
	if in.Amount < 0 {
		return domain.Invoice{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidInvoice)
	}
	if _, err := domain.ParseDate(in.DueDate); err != nil {
		return domain.Invoice{}, fmt.Errorf("%w: dueDate: %v", ErrInvalidInvoice, err)
	}
	issue := in.IssueDate
	if issue == "" {
		issue = defaultIssue
	} else if _, err := domain.ParseDate(issue); err != nil {
		return domain.Invoice{}, fmt.Errorf("%w: issueDate: %v", ErrInvalidInvoice, err)
	}
	return domain.Invoice{
		ChildID:   child.ID,
		ChildName: child.Name,
		Amount:    in.Amount,
		IssueDate: issue,
		DueDate:   in.DueDate,
	}, nil
}

func (s InvoiceService) logActivity(ctx context.Context, actor, message string) {
	if _, err := s.Activity.Create(ctx, repository.CreateActivityLogInput{
		Title:   "Invoices",
		Message: message,
		Actor:   actor,
		Type:    domain.LogInfo,
	}); err != nil {
		s.Logger.Warn("failed to write activity log", "err", err)
	}
}
