package ap

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/comanda-erp/comanda-erp/internal/accounting/bridge"
	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestResolveStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 30)
	past := now.AddDate(0, 0, -1)

	require.Equal(t, StatusPending, ResolveStatus(d("500"), d("0"), future, now))
	require.Equal(t, StatusPartial, ResolveStatus(d("500"), d("200"), future, now))
	require.Equal(t, StatusPartial, ResolveStatus(d("500"), d("200"), past, now))
	require.Equal(t, StatusOverdue, ResolveStatus(d("500"), d("0"), past, now))
	require.Equal(t, StatusPaid, ResolveStatus(d("500"), d("499.995"), past, now))
}

func TestApplyPaymentStampsPaidDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p := Payable{Amount: d("500"), DueDate: now.AddDate(0, 0, 30)}

	p = applyPayment(p, d("200"), now)
	require.Equal(t, StatusPartial, p.Status)
	require.Nil(t, p.PaidDate)

	later := now.AddDate(0, 0, 5)
	p = applyPayment(p, d("300"), later)
	require.Equal(t, StatusPaid, p.Status)
	require.NotNil(t, p.PaidDate)
	require.Equal(t, later, *p.PaidDate)
}

type memoryRepo struct {
	items  []Payable
	nextID int64
}

func (m *memoryRepo) List(_ context.Context, businessID int64, f Filter, _ shared.ListRange) ([]Payable, error) {
	var out []Payable
	for _, p := range m.items {
		if p.BusinessID != businessID {
			continue
		}
		if f.SupplierID != nil && p.SupplierID != *f.SupplierID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id, businessID int64) (Payable, error) {
	for _, p := range m.items {
		if p.ID == id && p.BusinessID == businessID {
			return p, nil
		}
	}
	return Payable{}, ErrPayableNotFound
}

func (m *memoryRepo) Insert(_ context.Context, p Payable) (Payable, error) {
	m.nextID++
	p.ID = m.nextID
	m.items = append(m.items, p)
	return p, nil
}

func (m *memoryRepo) ListPayments(context.Context, int64) ([]Payment, error) { return nil, nil }

func (m *memoryRepo) GetForUpdateTx(ctx context.Context, _ pgx.Tx, id, businessID int64) (Payable, error) {
	return m.Get(ctx, id, businessID)
}

func (m *memoryRepo) InsertPaymentTx(context.Context, pgx.Tx, Payment) (Payment, error) {
	return Payment{}, nil
}

func (m *memoryRepo) UpdateAmountsTx(context.Context, pgx.Tx, Payable) error { return nil }

type recordingLedger struct {
	purchases []bridge.InventoryPurchased
	payments  []bridge.PayablePaymentRecorded
}

func (l *recordingLedger) RecordPurchase(_ context.Context, ev bridge.InventoryPurchased) (bridge.Result, error) {
	l.purchases = append(l.purchases, ev)
	return bridge.Result{EntryID: 1}, nil
}

func (l *recordingLedger) RecordPayablePayment(_ context.Context, ev bridge.PayablePaymentRecorded) (bridge.Result, error) {
	l.payments = append(l.payments, ev)
	return bridge.Result{EntryID: 2}, nil
}

func TestOpenRejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(nil, &memoryRepo{}, nil, slog.Default())
	_, err := svc.Open(context.Background(), Payable{
		BusinessID: 1,
		SupplierID: 3,
		Amount:     d("-10"),
		DueDate:    time.Now().AddDate(0, 1, 0),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestOpenWithPurchaseBooksCreditPurchase(t *testing.T) {
	ledger := &recordingLedger{}
	svc := NewService(nil, &memoryRepo{}, ledger, slog.Default())

	purchaseID := int64(77)
	ctx := shared.ContextWithUser(context.Background(), 9)
	created, err := svc.Open(ctx, Payable{
		BusinessID: 1,
		SupplierID: 3,
		PurchaseID: &purchaseID,
		Reference:  "OC-77",
		Amount:     d("310.00"),
		DueDate:    time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	require.Len(t, ledger.purchases, 1)

	ev := ledger.purchases[0]
	require.Equal(t, purchaseID, ev.PurchaseID)
	require.True(t, ev.OnCredit)
	require.True(t, ev.Amount.Equal(created.Amount))
	require.Equal(t, int64(9), ev.UserID)
}

func TestOpenWithoutPurchaseSkipsLedger(t *testing.T) {
	ledger := &recordingLedger{}
	svc := NewService(nil, &memoryRepo{}, ledger, slog.Default())

	_, err := svc.Open(context.Background(), Payable{
		BusinessID: 1,
		SupplierID: 3,
		Amount:     d("45.00"),
		DueDate:    time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	require.Empty(t, ledger.purchases)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	repo := &memoryRepo{items: []Payable{
		{ID: 1, BusinessID: 1, Amount: d("300"), AmountPaid: d("100"), DueDate: now.AddDate(0, 0, 10)},
		{ID: 2, BusinessID: 1, Amount: d("120"), AmountPaid: d("0"), DueDate: now.AddDate(0, 0, -3)},
		{ID: 3, BusinessID: 1, Amount: d("90"), AmountPaid: d("90"), DueDate: now.AddDate(0, 0, -3)},
	}}
	svc := NewService(nil, repo, nil, slog.Default())
	svc.WithNow(func() time.Time { return now })

	sum, err := svc.Summarize(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, sum.OpenCount)
	require.Equal(t, 1, sum.OverdueCount)
	require.True(t, sum.TotalOutstanding.Equal(d("320")))
	require.True(t, sum.TotalOverdue.Equal(d("120")))
}
