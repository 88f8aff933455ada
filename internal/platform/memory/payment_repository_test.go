package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerowaste/payment-service/internal/domain"
	"github.com/zerowaste/payment-service/internal/platform/memory"
)

func seed(t *testing.T, repo *memory.PaymentRepository, orderID, userID string, status domain.Status, created time.Time) *domain.Payment {
	t.Helper()
	p := &domain.Payment{OrderID: orderID, UserID: userID, Status: status, CreatedAt: created, UpdatedAt: created}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestPaymentRepository_CreateAssignsIDAndRejectsDuplicates(t *testing.T) {
	repo := memory.NewPaymentRepository()
	p := seed(t, repo, "o1", "u1", domain.StatusPending, time.Now())

	assert.NotEmpty(t, p.ID)

	err := repo.Create(context.Background(), &domain.Payment{OrderID: "o1", UserID: "u2"})
	assert.ErrorIs(t, err, domain.ErrDuplicateOrder)
}

func TestPaymentRepository_ReturnsCopies(t *testing.T) {
	repo := memory.NewPaymentRepository()
	ctx := context.Background()
	p := seed(t, repo, "o1", "u1", domain.StatusPending, time.Now())

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	got.Status = domain.StatusApproved

	again, err := repo.FindByOrderID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)

	require.NoError(t, repo.Update(ctx, got))
	again, err = repo.FindByOrderID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, again.Status)
}

func TestPaymentRepository_NotFound(t *testing.T) {
	repo := memory.NewPaymentRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	_, err = repo.FindByOrderID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.Payment{ID: "missing"}), domain.ErrPaymentNotFound)
}

func TestPaymentRepository_FindSortsAndFilters(t *testing.T) {
	repo := memory.NewPaymentRepository()
	ctx := context.Background()
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	seed(t, repo, "o1", "u1", domain.StatusPending, day)
	seed(t, repo, "o2", "u1", domain.StatusApproved, day.Add(time.Hour))
	seed(t, repo, "o3", "u1", domain.StatusPending, day.Add(2*time.Hour))
	seed(t, repo, "o4", "u2", domain.StatusPending, day.Add(3*time.Hour))

	all, err := repo.Find(ctx, domain.PaymentFilter{UserID: "u1"}, domain.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "o3", all[0].OrderID)
	assert.Equal(t, "o1", all[2].OrderID)

	page, err := repo.Find(ctx, domain.PaymentFilter{UserID: "u1"}, domain.PageRequest{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "o2", page[0].OrderID)

	count, err := repo.Count(ctx, domain.PaymentFilter{UserID: "u1", Status: domain.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	to := day.Add(90 * time.Minute)
	ranged, err := repo.Find(ctx, domain.PaymentFilter{CreatedTo: &to}, domain.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}

func TestPaymentRepository_CountByStatus(t *testing.T) {
	repo := memory.NewPaymentRepository()
	now := time.Now()
	seed(t, repo, "o1", "u1", domain.StatusPending, now)
	seed(t, repo, "o2", "u1", domain.StatusApproved, now)
	seed(t, repo, "o3", "u1", domain.StatusPending, now)
	seed(t, repo, "o4", "u2", domain.StatusRejected, now)

	stats, err := repo.CountByStatus(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, map[domain.Status]int64{domain.StatusPending: 2, domain.StatusApproved: 1}, stats)
}

func TestBroker_RecordsMessages(t *testing.T) {
	b := memory.NewBroker()
	ctx := context.Background()

	require.NoError(t, b.Publish(ctx, "payments_exchange", "payment.request", map[string]string{"orderId": "o1"}))
	require.NoError(t, b.Publish(ctx, "payments_exchange", "payment.result", map[string]string{"orderId": "o1"}))

	msgs := b.ByRoutingKey("payment.request")
	require.Len(t, msgs, 1)

	var body map[string]string
	require.NoError(t, msgs[0].Decode(&body))
	assert.Equal(t, "o1", body["orderId"])

	b.FailWith(assert.AnError)
	assert.ErrorIs(t, b.Publish(ctx, "x", "y", nil), assert.AnError)
	assert.Len(t, b.Messages(), 2)
}
