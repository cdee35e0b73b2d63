package journals

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
)

type lineRequest struct {
	AccountID    int64  `json:"account_id" validate:"required,gt=0"`
	Description  string `json:"description" validate:"max=512"`
	Reference    string `json:"reference" validate:"max=128"`
	Debit        string `json:"debit"`
	Credit       string `json:"credit"`
	CostCenterID *int64 `json:"cost_center_id"`
}

type createEntryRequest struct {
	EntryDate   string        `json:"entry_date" validate:"required"`
	Reference   string        `json:"reference" validate:"max=128"`
	Description string        `json:"description" validate:"max=512"`
	Lines       []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

type updateEntryRequest struct {
	EntryDate   string        `json:"entry_date" validate:"required"`
	Reference   string        `json:"reference" validate:"max=128"`
	Description string        `json:"description" validate:"max=512"`
	Lines       []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

type reverseEntryRequest struct {
	Date        string `json:"date"`
	Description string `json:"description" validate:"max=512"`
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid %s amount %q", httpx.ErrValidation, field, raw)
	}
	return d, nil
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", httpx.ErrValidation, raw)
	}
	return d, nil
}

func (req createEntryRequest) toInput(businessID, userID int64) (CreateInput, error) {
	date, err := parseDate(req.EntryDate)
	if err != nil {
		return CreateInput{}, err
	}
	lines, err := toLines(req.Lines)
	if err != nil {
		return CreateInput{}, err
	}
	return CreateInput{
		BusinessID:  businessID,
		EntryDate:   date,
		Reference:   req.Reference,
		Description: req.Description,
		SourceType:  SourceManual,
		CreatedBy:   userID,
		Lines:       lines,
	}, nil
}

func toLines(reqs []lineRequest) ([]Line, error) {
	out := make([]Line, 0, len(reqs))
	for i, lr := range reqs {
		debit, err := parseAmount(lr.Debit, "debit")
		if err != nil {
			return nil, err
		}
		credit, err := parseAmount(lr.Credit, "credit")
		if err != nil {
			return nil, err
		}
		out = append(out, Line{
			AccountID:    lr.AccountID,
			Description:  lr.Description,
			Reference:    lr.Reference,
			Debit:        debit,
			Credit:       credit,
			CostCenterID: lr.CostCenterID,
			Position:     i + 1,
		})
	}
	return out, nil
}

type lineResponse struct {
	ID           int64  `json:"id"`
	AccountID    int64  `json:"account_id"`
	Description  string `json:"description,omitempty"`
	Reference    string `json:"reference,omitempty"`
	Debit        string `json:"debit"`
	Credit       string `json:"credit"`
	CostCenterID *int64 `json:"cost_center_id,omitempty"`
	Position     int    `json:"position"`
}

type entryResponse struct {
	ID          int64          `json:"id"`
	EntryNumber string         `json:"entry_number,omitempty"`
	EntryDate   string         `json:"entry_date"`
	Reference   string         `json:"reference,omitempty"`
	Description string         `json:"description,omitempty"`
	Status      EntryStatus    `json:"status"`
	SourceType  SourceType     `json:"source_type"`
	SourceID    *int64         `json:"source_id,omitempty"`
	PeriodID    *int64         `json:"period_id,omitempty"`
	TotalDebit  string         `json:"total_debit"`
	TotalCredit string         `json:"total_credit"`
	PostedAt    *time.Time     `json:"posted_at,omitempty"`
	ReversedBy  *int64         `json:"reversed_by_entry_id,omitempty"`
	Reverses    *int64         `json:"reverses_entry_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Lines       []lineResponse `json:"lines,omitempty"`
}

func toEntryResponse(e Entry) entryResponse {
	resp := entryResponse{
		ID:          e.ID,
		EntryNumber: e.EntryNumber,
		EntryDate:   e.EntryDate.Format("2006-01-02"),
		Reference:   e.Reference,
		Description: e.Description,
		Status:      e.Status,
		SourceType:  e.SourceType,
		SourceID:    e.SourceID,
		PeriodID:    e.PeriodID,
		TotalDebit:  e.TotalDebit.StringFixed(2),
		TotalCredit: e.TotalCredit.StringFixed(2),
		PostedAt:    e.PostedAt,
		ReversedBy:  e.ReversedBy,
		Reverses:    e.Reverses,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, lineResponse{
			ID:           l.ID,
			AccountID:    l.AccountID,
			Description:  l.Description,
			Reference:    l.Reference,
			Debit:        l.Debit.StringFixed(2),
			Credit:       l.Credit.StringFixed(2),
			CostCenterID: l.CostCenterID,
			Position:     l.Position,
		})
	}
	return resp
}
