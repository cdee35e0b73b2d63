package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
	"github.com/comanda-erp/comanda-erp/internal/accounting/journals"
)

// Result reports what became of an event: the posted entry, or the reason
// it was skipped.
type Result struct {
	EntryID    int64
	Skipped    bool
	SkipReason string
}

func skipped(reason string) Result {
	return Result{Skipped: true, SkipReason: reason}
}

// Roles resolves the functional role accounts of a business. Implemented by
// the accounts service.
type Roles interface {
	DefaultAccounts(ctx context.Context, businessID int64) (map[accounts.Role]accounts.Account, error)
}

// Journal records entries. Implemented by the journals service.
type Journal interface {
	Create(ctx context.Context, in journals.CreateInput) (journals.Entry, error)
}

type Service struct {
	journal Journal
	roles   Roles
	catalog Catalog
	log     *slog.Logger
}

func NewService(journal Journal, roles Roles, catalog Catalog, log *slog.Logger) *Service {
	return &Service{journal: journal, roles: roles, catalog: catalog, log: log}
}

// RecordSale posts the accounting effect of a settled order: cash or
// receivable against revenue, tax payable split out when the role resolves,
// and a cost-of-sales movement when the catalog can cost the items.
func (s *Service) RecordSale(ctx context.Context, ev OrderSettled) (Result, error) {
	if !ev.Total.IsPositive() {
		return skipped("order total is not positive"), nil
	}
	roleAccounts, err := s.roles.DefaultAccounts(ctx, ev.BusinessID)
	if err != nil {
		return s.skipOnError(ctx, ev.BusinessID, "resolve role accounts", err), nil
	}

	revenue, ok := roleAccounts[accounts.RoleRevenue]
	if !ok {
		return s.skip(ctx, ev.BusinessID, "no revenue account configured"), nil
	}
	debitRole := accounts.RoleCash
	if !ev.Method.Immediate() {
		debitRole = accounts.RoleReceivable
	}
	debitAccount, ok := roleAccounts[debitRole]
	if !ok {
		return s.skip(ctx, ev.BusinessID, fmt.Sprintf("no %s account configured", debitRole)), nil
	}

	lines := []journals.Line{
		{AccountID: debitAccount.ID, Description: "Order " + ev.OrderRef, Debit: ev.Total},
	}
	tax := ev.Total.Sub(ev.Subtotal)
	taxAccount, haveTax := roleAccounts[accounts.RoleTaxPayable]
	if haveTax && tax.IsPositive() {
		lines = append(lines,
			journals.Line{AccountID: revenue.ID, Description: "Order " + ev.OrderRef, Credit: ev.Subtotal},
			journals.Line{AccountID: taxAccount.ID, Description: "Sales tax on order " + ev.OrderRef, Credit: tax},
		)
	} else {
		if !haveTax && tax.IsPositive() {
			// Without a tax account the tax portion folds into revenue to
			// keep the entry balanced.
			s.log.WarnContext(ctx, "no tax payable account, tax folded into revenue",
				slog.Int64("business_id", ev.BusinessID),
				slog.String("order_ref", ev.OrderRef),
				slog.String("tax", tax.StringFixed(2)))
		}
		lines = append(lines,
			journals.Line{AccountID: revenue.ID, Description: "Order " + ev.OrderRef, Credit: ev.Total},
		)
	}

	if s.catalog != nil && len(ev.Items) > 0 {
		cogsAccount, haveCogs := roleAccounts[accounts.RoleCostOfSales]
		invAccount, haveInv := roleAccounts[accounts.RoleInventory]
		if haveCogs && haveInv {
			cost, err := costOfItems(ctx, s.catalog, ev.BusinessID, ev.Items)
			if err != nil {
				return s.skipOnError(ctx, ev.BusinessID, "cost items", err), nil
			}
			if cost.IsPositive() {
				lines = append(lines,
					journals.Line{AccountID: cogsAccount.ID, Description: "Cost of order " + ev.OrderRef, Debit: cost},
					journals.Line{AccountID: invAccount.ID, Description: "Inventory out, order " + ev.OrderRef, Credit: cost},
				)
			}
		}
	}

	return s.post(ctx, journals.CreateInput{
		BusinessID:  ev.BusinessID,
		EntryDate:   ev.Date,
		Reference:   ev.OrderRef,
		Description: "Sale, order " + ev.OrderRef,
		SourceType:  journals.SourceSale,
		SourceID:    &ev.OrderID,
		CreatedBy:   ev.UserID,
		Lines:       lines,
		Post:        true,
	})
}

// RecordReceivablePayment posts a customer payment: cash in, receivable
// down.
func (s *Service) RecordReceivablePayment(ctx context.Context, ev ReceivablePaymentRecorded) (Result, error) {
	if !ev.Amount.IsPositive() {
		return skipped("payment amount is not positive"), nil
	}
	roleAccounts, err := s.roles.DefaultAccounts(ctx, ev.BusinessID)
	if err != nil {
		return s.skipOnError(ctx, ev.BusinessID, "resolve role accounts", err), nil
	}
	cash, okCash := roleAccounts[accounts.RoleCash]
	receivable, okAR := roleAccounts[accounts.RoleReceivable]
	if !okCash || !okAR {
		return s.skip(ctx, ev.BusinessID, "cash or receivable account missing"), nil
	}
	return s.post(ctx, journals.CreateInput{
		BusinessID:  ev.BusinessID,
		EntryDate:   ev.Date,
		Reference:   ev.Reference,
		Description: "Customer payment " + ev.Reference,
		SourceType:  journals.SourcePayment,
		SourceID:    &ev.ReceivableID,
		CreatedBy:   ev.UserID,
		Lines: []journals.Line{
			{AccountID: cash.ID, Description: "Payment received", Debit: ev.Amount},
			{AccountID: receivable.ID, Description: "Receivable settled", Credit: ev.Amount},
		},
		Post: true,
	})
}

// RecordPayablePayment posts a supplier payment: payable down, cash out.
func (s *Service) RecordPayablePayment(ctx context.Context, ev PayablePaymentRecorded) (Result, error) {
	if !ev.Amount.IsPositive() {
		return skipped("payment amount is not positive"), nil
	}
	roleAccounts, err := s.roles.DefaultAccounts(ctx, ev.BusinessID)
	if err != nil {
		return s.skipOnError(ctx, ev.BusinessID, "resolve role accounts", err), nil
	}
	cash, okCash := roleAccounts[accounts.RoleCash]
	payable, okAP := roleAccounts[accounts.RolePayable]
	if !okCash || !okAP {
		return s.skip(ctx, ev.BusinessID, "cash or payable account missing"), nil
	}
	return s.post(ctx, journals.CreateInput{
		BusinessID:  ev.BusinessID,
		EntryDate:   ev.Date,
		Reference:   ev.Reference,
		Description: "Supplier payment " + ev.Reference,
		SourceType:  journals.SourcePayment,
		SourceID:    &ev.PayableID,
		CreatedBy:   ev.UserID,
		Lines: []journals.Line{
			{AccountID: payable.ID, Description: "Payable settled", Debit: ev.Amount},
			{AccountID: cash.ID, Description: "Payment issued", Credit: ev.Amount},
		},
		Post: true,
	})
}

// RecordPurchase posts received stock: inventory up, payable or cash down.
func (s *Service) RecordPurchase(ctx context.Context, ev InventoryPurchased) (Result, error) {
	if !ev.Amount.IsPositive() {
		return skipped("purchase amount is not positive"), nil
	}
	roleAccounts, err := s.roles.DefaultAccounts(ctx, ev.BusinessID)
	if err != nil {
		return s.skipOnError(ctx, ev.BusinessID, "resolve role accounts", err), nil
	}
	inventory, okInv := roleAccounts[accounts.RoleInventory]
	if !okInv {
		return s.skip(ctx, ev.BusinessID, "no inventory account configured"), nil
	}
	creditRole := accounts.RoleCash
	if ev.OnCredit {
		creditRole = accounts.RolePayable
	}
	creditAccount, ok := roleAccounts[creditRole]
	if !ok {
		return s.skip(ctx, ev.BusinessID, fmt.Sprintf("no %s account configured", creditRole)), nil
	}
	return s.post(ctx, journals.CreateInput{
		BusinessID:  ev.BusinessID,
		EntryDate:   ev.Date,
		Reference:   ev.Reference,
		Description: "Inventory purchase " + ev.Reference,
		SourceType:  journals.SourcePurchase,
		SourceID:    &ev.PurchaseID,
		CreatedBy:   ev.UserID,
		Lines: []journals.Line{
			{AccountID: inventory.ID, Description: "Stock received", Debit: ev.Amount},
			{AccountID: creditAccount.ID, Description: "Purchase " + ev.Reference, Credit: ev.Amount},
		},
		Post: true,
	})
}

func (s *Service) post(ctx context.Context, in journals.CreateInput) (Result, error) {
	entry, err := s.journal.Create(ctx, in)
	if err != nil {
		return s.skipOnError(ctx, in.BusinessID, "post entry", err), nil
	}
	return Result{EntryID: entry.ID}, nil
}

// skipOnError downgrades an internal failure to a skip: accounting must not
// break the operational flow that produced the event.
func (s *Service) skipOnError(ctx context.Context, businessID int64, op string, err error) Result {
	s.log.ErrorContext(ctx, "accounting event dropped",
		slog.Int64("business_id", businessID),
		slog.String("op", op),
		slog.String("error", err.Error()))
	return skipped(op + ": " + err.Error())
}

func (s *Service) skip(ctx context.Context, businessID int64, reason string) Result {
	s.log.WarnContext(ctx, "accounting event skipped",
		slog.Int64("business_id", businessID),
		slog.String("reason", reason))
	return skipped(reason)
}
