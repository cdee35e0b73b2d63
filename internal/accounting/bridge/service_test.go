package bridge

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
	"github.com/comanda-erp/comanda-erp/internal/accounting/journals"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type memoryJournal struct {
	entries []journals.CreateInput
	nextID  int64
}

func (j *memoryJournal) Create(_ context.Context, in journals.CreateInput) (journals.Entry, error) {
	if _, _, err := journals.ValidateLines(in.Lines); err != nil {
		return journals.Entry{}, err
	}
	j.entries = append(j.entries, in)
	j.nextID++
	return journals.Entry{ID: j.nextID, Status: journals.StatusPosted}, nil
}

type staticRoles struct {
	accounts map[accounts.Role]accounts.Account
}

func (r staticRoles) DefaultAccounts(context.Context, int64) (map[accounts.Role]accounts.Account, error) {
	return r.accounts, nil
}

type staticCatalog struct {
	costs map[int64]decimal.Decimal
}

func (c staticCatalog) UnitCost(_ context.Context, _, productID int64) (decimal.Decimal, error) {
	return c.costs[productID], nil
}

func fullRoles() staticRoles {
	return staticRoles{accounts: map[accounts.Role]accounts.Account{
		accounts.RoleCash:        {ID: 1, Code: "1000"},
		accounts.RoleReceivable:  {ID: 2, Code: "1100"},
		accounts.RoleInventory:   {ID: 3, Code: "1200"},
		accounts.RolePayable:     {ID: 4, Code: "2000"},
		accounts.RoleTaxPayable:  {ID: 5, Code: "2100"},
		accounts.RoleRevenue:     {ID: 6, Code: "4000"},
		accounts.RoleCostOfSales: {ID: 7, Code: "5000"},
	}}
}

func saleEvent() OrderSettled {
	return OrderSettled{
		BusinessID: 1,
		OrderID:    42,
		OrderRef:   "ORD-42",
		Date:       time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Subtotal:   d("100.00"),
		Total:      d("118.00"),
		Method:     PaymentCash,
		UserID:     9,
	}
}

func TestRecordSaleCashWithTaxSplit(t *testing.T) {
	journal := &memoryJournal{}
	svc := NewService(journal, fullRoles(), nil, slog.Default())

	res, err := svc.RecordSale(context.Background(), saleEvent())
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Len(t, journal.entries, 1)

	entry := journal.entries[0]
	require.True(t, entry.Post)
	require.Equal(t, journals.SourceSale, entry.SourceType)
	require.Len(t, entry.Lines, 3)
	require.Equal(t, int64(1), entry.Lines[0].AccountID) // cash
	require.True(t, entry.Lines[0].Debit.Equal(d("118.00")))
	require.Equal(t, int64(6), entry.Lines[1].AccountID) // revenue
	require.True(t, entry.Lines[1].Credit.Equal(d("100.00")))
	require.Equal(t, int64(5), entry.Lines[2].AccountID) // tax payable
	require.True(t, entry.Lines[2].Credit.Equal(d("18.00")))
}

func TestRecordSaleCreditDebitsReceivable(t *testing.T) {
	journal := &memoryJournal{}
	svc := NewService(journal, fullRoles(), nil, slog.Default())

	ev := saleEvent()
	ev.Method = PaymentCredit
	res, err := svc.RecordSale(context.Background(), ev)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Equal(t, int64(2), journal.entries[0].Lines[0].AccountID) // receivable
}

func TestRecordSaleWithoutTaxRoleKeepsTwoLines(t *testing.T) {
	roles := fullRoles()
	delete(roles.accounts, accounts.RoleTaxPayable)
	journal := &memoryJournal{}
	var logged bytes.Buffer
	svc := NewService(journal, roles, nil, slog.New(slog.NewTextHandler(&logged, nil)))

	res, err := svc.RecordSale(context.Background(), saleEvent())
	require.NoError(t, err)
	require.False(t, res.Skipped)

	entry := journal.entries[0]
	require.Len(t, entry.Lines, 2)
	require.True(t, entry.Lines[1].Credit.Equal(d("118.00")), "full total goes to revenue")
	require.Contains(t, logged.String(), "tax folded into revenue")
}

func TestRecordSaleAddsCOGSWhenCatalogResolves(t *testing.T) {
	journal := &memoryJournal{}
	catalog := staticCatalog{costs: map[int64]decimal.Decimal{10: d("12.50")}}
	svc := NewService(journal, fullRoles(), catalog, slog.Default())

	ev := saleEvent()
	ev.Items = []SoldItem{{ProductID: 10, Quantity: d("2")}}
	_, err := svc.RecordSale(context.Background(), ev)
	require.NoError(t, err)

	entry := journal.entries[0]
	require.Len(t, entry.Lines, 5)
	require.Equal(t, int64(7), entry.Lines[3].AccountID) // cost of sales
	require.True(t, entry.Lines[3].Debit.Equal(d("25.00")))
	require.Equal(t, int64(3), entry.Lines[4].AccountID) // inventory
	require.True(t, entry.Lines[4].Credit.Equal(d("25.00")))
}

func TestRecordSaleSkipsCOGSWithoutInventoryRole(t *testing.T) {
	roles := fullRoles()
	delete(roles.accounts, accounts.RoleInventory)
	journal := &memoryJournal{}
	catalog := staticCatalog{costs: map[int64]decimal.Decimal{10: d("12.50")}}
	svc := NewService(journal, roles, catalog, slog.Default())

	ev := saleEvent()
	ev.Items = []SoldItem{{ProductID: 10, Quantity: d("2")}}
	_, err := svc.RecordSale(context.Background(), ev)
	require.NoError(t, err)
	require.Len(t, journal.entries[0].Lines, 3, "sale still posts, just without COGS")
}

func TestRecordSaleSkipsWhenRevenueRoleMissing(t *testing.T) {
	journal := &memoryJournal{}
	svc := NewService(journal, staticRoles{accounts: map[accounts.Role]accounts.Account{}}, nil, slog.Default())

	res, err := svc.RecordSale(context.Background(), saleEvent())
	require.NoError(t, err, "missing configuration must not fail the caller")
	require.True(t, res.Skipped)
	require.NotEmpty(t, res.SkipReason)
	require.Empty(t, journal.entries)
}

func TestRecordReceivablePayment(t *testing.T) {
	journal := &memoryJournal{}
	svc := NewService(journal, fullRoles(), nil, slog.Default())

	res, err := svc.RecordReceivablePayment(context.Background(), ReceivablePaymentRecorded{
		BusinessID:   1,
		ReceivableID: 8,
		Reference:    "CXC-8",
		Date:         time.Now(),
		Amount:       d("40.00"),
		UserID:       9,
	})
	require.NoError(t, err)
	require.False(t, res.Skipped)

	entry := journal.entries[0]
	require.Equal(t, journals.SourcePayment, entry.SourceType)
	require.Equal(t, int64(1), entry.Lines[0].AccountID) // cash debit
	require.Equal(t, int64(2), entry.Lines[1].AccountID) // receivable credit
}

func TestRecordPayablePayment(t *testing.T) {
	journal := &memoryJournal{}
	svc := NewService(journal, fullRoles(), nil, slog.Default())

	res, err := svc.RecordPayablePayment(context.Background(), PayablePaymentRecorded{
		BusinessID: 1,
		PayableID:  3,
		Amount:     d("75.00"),
		Date:       time.Now(),
	})
	require.NoError(t, err)
	require.False(t, res.Skipped)

	entry := journal.entries[0]
	require.Equal(t, int64(4), entry.Lines[0].AccountID) // payable debit
	require.Equal(t, int64(1), entry.Lines[1].AccountID) // cash credit
}

func TestRecordPurchaseOnCredit(t *testing.T) {
	journal := &memoryJournal{}
	svc := NewService(journal, fullRoles(), nil, slog.Default())

	res, err := svc.RecordPurchase(context.Background(), InventoryPurchased{
		BusinessID: 1,
		PurchaseID: 77,
		Amount:     d("310.00"),
		OnCredit:   true,
		Date:       time.Now(),
	})
	require.NoError(t, err)
	require.False(t, res.Skipped)

	entry := journal.entries[0]
	require.Equal(t, journals.SourcePurchase, entry.SourceType)
	require.Equal(t, int64(3), entry.Lines[0].AccountID) // inventory debit
	require.Equal(t, int64(4), entry.Lines[1].AccountID) // payable credit
}

func TestRecordPurchaseCashWhenNotOnCredit(t *testing.T) {
	journal := &memoryJournal{}
	svc := NewService(journal, fullRoles(), nil, slog.Default())

	_, err := svc.RecordPurchase(context.Background(), InventoryPurchased{
		BusinessID: 1,
		PurchaseID: 78,
		Amount:     d("55.00"),
		Date:       time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), journal.entries[0].Lines[1].AccountID) // cash credit
}

func TestZeroAmountEventsAreSkipped(t *testing.T) {
	journal := &memoryJournal{}
	svc := NewService(journal, fullRoles(), nil, slog.Default())

	ev := saleEvent()
	ev.Total = decimal.Zero
	ev.Subtotal = decimal.Zero
	res, err := svc.RecordSale(context.Background(), ev)
	require.NoError(t, err)
	require.True(t, res.Skipped)
	require.Empty(t, journal.entries)
}
