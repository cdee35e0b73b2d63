package reports

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.trialBalance)
	r.Get("/balance-sheet", h.balanceSheet)
	r.Get("/income-statement", h.incomeStatement)
	r.Get("/summary", h.summary)
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, httpx.ErrValidation
	}
	return &d, nil
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

type tbRowJSON struct {
	AccountID int64  `json:"account_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Debit     string `json:"debit"`
	Credit    string `json:"credit"`
}

type tbJSON struct {
	From        string      `json:"from,omitempty"`
	To          string      `json:"to,omitempty"`
	Rows        []tbRowJSON `json:"rows"`
	TotalDebit  string      `json:"total_debit"`
	TotalCredit string      `json:"total_credit"`
	Balanced    bool        `json:"balanced"`
}

func toTBJSON(tb TrialBalance) tbJSON {
	out := tbJSON{
		Rows:        make([]tbRowJSON, 0, len(tb.Rows)),
		TotalDebit:  money(tb.TotalDebit),
		TotalCredit: money(tb.TotalCredit),
		Balanced:    tb.Balanced(),
	}
	if tb.From != nil {
		out.From = tb.From.Format("2006-01-02")
	}
	if tb.To != nil {
		out.To = tb.To.Format("2006-01-02")
	}
	for _, row := range tb.Rows {
		out.Rows = append(out.Rows, tbRowJSON{
			AccountID: row.AccountID,
			Code:      row.Code,
			Name:      row.Name,
			Type:      string(row.Type),
			Debit:     money(row.Debit),
			Credit:    money(row.Credit),
		})
	}
	return out
}

type sectionJSON struct {
	Rows  []sectionRowJSON `json:"rows"`
	Total string           `json:"total"`
}

type sectionRowJSON struct {
	AccountID int64  `json:"account_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Amount    string `json:"amount"`
}

func toSectionJSON(s Section) sectionJSON {
	out := sectionJSON{Rows: make([]sectionRowJSON, 0, len(s.Rows)), Total: money(s.Total)}
	for _, row := range s.Rows {
		out.Rows = append(out.Rows, sectionRowJSON{
			AccountID: row.AccountID,
			Code:      row.Code,
			Name:      row.Name,
			Amount:    money(row.Amount),
		})
	}
	return out
}

type bsJSON struct {
	AsOf                      string      `json:"as_of"`
	Assets                    sectionJSON `json:"assets"`
	Liabilities               sectionJSON `json:"liabilities"`
	Equity                    sectionJSON `json:"equity"`
	NetIncome                 string      `json:"net_income"`
	TotalAssets               string      `json:"total_assets"`
	TotalLiabilitiesAndEquity string      `json:"total_liabilities_and_equity"`
}

func toBSJSON(bs BalanceSheet) bsJSON {
	return bsJSON{
		AsOf:                      bs.AsOf.Format("2006-01-02"),
		Assets:                    toSectionJSON(bs.Assets),
		Liabilities:               toSectionJSON(bs.Liabilities),
		Equity:                    toSectionJSON(bs.Equity),
		NetIncome:                 money(bs.NetIncome),
		TotalAssets:               money(bs.TotalAssets),
		TotalLiabilitiesAndEquity: money(bs.TotalLiabilitiesAndEquity),
	}
}

type isJSON struct {
	From        string      `json:"from"`
	To          string      `json:"to"`
	Revenue     sectionJSON `json:"revenue"`
	CostOfSales sectionJSON `json:"cost_of_sales"`
	GrossProfit string      `json:"gross_profit"`
	Expenses    sectionJSON `json:"expenses"`
	NetIncome   string      `json:"net_income"`
}

func toISJSON(is IncomeStatement) isJSON {
	return isJSON{
		From:        is.From.Format("2006-01-02"),
		To:          is.To.Format("2006-01-02"),
		Revenue:     toSectionJSON(is.Revenue),
		CostOfSales: toSectionJSON(is.CostOfSales),
		GrossProfit: money(is.GrossProfit),
		Expenses:    toSectionJSON(is.Expenses),
		NetIncome:   money(is.NetIncome),
	}
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	from, err := parseDateParam(r, "from")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), businessID, from, to)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTBJSON(tb))
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	asOf, err := parseDateParam(r, "as_of")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	date := time.Now().UTC()
	if asOf != nil {
		date = *asOf
	}
	bs, err := h.service.BalanceSheet(r.Context(), businessID, date)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBSJSON(bs))
}

func (h *Handler) incomeStatement(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	from, err := parseDateParam(r, "from")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if from == nil || to == nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	is, err := h.service.IncomeStatement(r.Context(), businessID, *from, *to)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toISJSON(is))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	from, err := parseDateParam(r, "from")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if from == nil || to == nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	summary, err := h.service.Summary(r.Context(), businessID, *from, *to)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"trial_balance":    toTBJSON(summary.TrialBalance),
		"balance_sheet":    toBSJSON(summary.BalanceSheet),
		"income_statement": toISJSON(summary.IncomeStatement),
	})
}
