// Package memory provides in-process implementations of the persistence and broker ports,
// used for local development and tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/zerowaste/payment-service/internal/domain"
	"github.com/zerowaste/payment-service/internal/pagination"
)

type record struct {
	payment domain.Payment
	seq     int
}

// PaymentRepository keeps payments in a map guarded by a RWMutex.
// Stored values are copied in and out so callers never share state.
type PaymentRepository struct {
	mu      sync.RWMutex
	byID    map[string]*record
	byOrder map[string]string
	seq     int
}

// NewPaymentRepository creates an empty repository.
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		byID:    make(map[string]*record),
		byOrder: make(map[string]string),
	}
}

// Create stores p, assigning an ID when empty.
func (r *PaymentRepository) Create(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOrder[p.OrderID]; exists {
		return domain.ErrDuplicateOrder
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	r.seq++
	r.byID[p.ID] = &record{payment: clone(*p), seq: r.seq}
	r.byOrder[p.OrderID] = p.ID
	return nil
}

// Update replaces the stored payment.
func (r *PaymentRepository) Update(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[p.ID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	rec.payment = clone(*p)
	return nil
}

// FindByID returns a copy of the payment with id.
func (r *PaymentRepository) FindByID(_ context.Context, id string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	p := clone(rec.payment)
	return &p, nil
}

// FindByOrderID returns a copy of the payment for orderID.
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	r.mu.RLock()
	id, ok := r.byOrder[orderID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return r.FindByID(ctx, id)
}

// Find returns matching payments, newest first.
func (r *PaymentRepository) Find(_ context.Context, filter domain.PaymentFilter, page domain.PageRequest) ([]domain.Payment, error) {
	matches := r.matching(filter)
	window := pagination.Window(matches, page.Offset, page.Limit)

	out := make([]domain.Payment, 0, len(window))
	for _, rec := range window {
		out = append(out, clone(rec.payment))
	}
	return out, nil
}

// Count returns the number of matching payments.
func (r *PaymentRepository) Count(_ context.Context, filter domain.PaymentFilter) (int64, error) {
	return int64(len(r.matching(filter))), nil
}

// CountByStatus groups all payments of userID by status.
func (r *PaymentRepository) CountByStatus(_ context.Context, userID string) (map[domain.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[domain.Status]int64)
	for _, rec := range r.byID {
		if rec.payment.UserID == userID {
			stats[rec.payment.Status]++
		}
	}
	return stats, nil
}

func (r *PaymentRepository) matching(filter domain.PaymentFilter) []record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]record, 0, len(r.byID))
	for _, rec := range r.byID {
		if Matches(rec.payment, filter) {
			matches = append(matches, *rec)
		}
	}

	slices.SortFunc(matches, func(a, b record) int {
		if c := b.payment.CreatedAt.Compare(a.payment.CreatedAt); c != 0 {
			return c
		}
		return b.seq - a.seq
	})
	return matches
}

// Matches reports whether p satisfies every set field of filter.
func Matches(p domain.Payment, filter domain.PaymentFilter) bool {
	if filter.UserID != "" && p.UserID != filter.UserID {
		return false
	}
	if filter.Status != "" && p.Status != filter.Status {
		return false
	}
	if filter.CreatedFrom != nil && p.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && p.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	return true
}

func clone(p domain.Payment) domain.Payment {
	p.Items = slices.Clone(p.Items)
	if p.Metadata != nil {
		md := make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			md[k] = v
		}
		p.Metadata = md
	}
	return p
}
