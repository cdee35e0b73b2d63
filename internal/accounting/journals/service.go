package journals

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
	"github.com/comanda-erp/comanda-erp/internal/accounting/periods"
	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
	"github.com/comanda-erp/comanda-erp/internal/platform/db"
	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
	sharedctx "github.com/comanda-erp/comanda-erp/internal/shared"
)

// Rebuilder regenerates the general ledger after the stock of posted
// entries changes. Implemented by the ledger package.
type Rebuilder interface {
	Rebuild(ctx context.Context, businessID int64, periodID *int64) error
}

type Service struct {
	pool     *pgxpool.Pool
	repo     Repository
	accounts accounts.Repository
	periods  *periods.Service
	rebuild  Rebuilder
	log      *slog.Logger

	now func() time.Time
}

func NewService(pool *pgxpool.Pool, repo Repository, accountRepo accounts.Repository, periodSvc *periods.Service, rebuild Rebuilder, log *slog.Logger) *Service {
	return &Service{
		pool:     pool,
		repo:     repo,
		accounts: accountRepo,
		periods:  periodSvc,
		rebuild:  rebuild,
		log:      log,
		now:      time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) { s.now = now }

func (s *Service) List(ctx context.Context, businessID int64, f Filter, rng sharedctx.ListRange) ([]Entry, error) {
	return s.repo.List(ctx, businessID, f, rng)
}

func (s *Service) Get(ctx context.Context, id, businessID int64) (Entry, error) {
	return s.repo.Get(ctx, id, businessID)
}

// CreateInput carries everything needed to record a new journal entry.
// Post makes the entry skip the draft stage; only system callers (the
// integration bridge, reversals) set it.
type CreateInput struct {
	BusinessID  int64
	EntryDate   time.Time
	Reference   string
	Description string
	SourceType  SourceType
	SourceID    *int64
	CreatedBy   int64
	Lines       []Line
	Post        bool
}

// Create validates and stores a journal entry. Manual entries start as
// drafts; callers with Post set get the entry numbered and posted in the
// same transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (Entry, error) {
	totalDebit, totalCredit, err := ValidateLines(in.Lines)
	if err != nil {
		return Entry{}, err
	}
	if err := s.checkAccounts(ctx, in.BusinessID, in.SourceType, in.Lines); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		BusinessID:  in.BusinessID,
		EntryDate:   in.EntryDate,
		Reference:   in.Reference,
		Description: in.Description,
		Status:      StatusDraft,
		SourceType:  in.SourceType,
		SourceID:    in.SourceID,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		CreatedBy:   in.CreatedBy,
		Lines:       in.Lines,
	}

	var periodID *int64
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		entry, err = s.repo.InsertTx(ctx, tx, entry)
		if err != nil {
			return err
		}
		if !in.Post {
			return nil
		}
		periodID, err = s.postInTx(ctx, tx, &entry, in.CreatedBy)
		return err
	})
	if err != nil {
		return Entry{}, err
	}

	if in.Post {
		s.rebuildAfterPost(ctx, entry.BusinessID, periodID)
	}
	s.log.InfoContext(ctx, "journal entry created",
		slog.Int64("business_id", entry.BusinessID),
		slog.Int64("entry_id", entry.ID),
		slog.String("status", string(entry.Status)),
		slog.String("source", string(entry.SourceType)))
	return entry, nil
}

// UpdateInput replaces a draft entry's header fields and all of its lines.
type UpdateInput struct {
	EntryDate   time.Time
	Reference   string
	Description string
	Lines       []Line
}

// Update rewrites a draft entry. Posted and reversed entries are immutable;
// corrections go through Reverse.
func (s *Service) Update(ctx context.Context, id, businessID int64, in UpdateInput) (Entry, error) {
	totalDebit, totalCredit, err := ValidateLines(in.Lines)
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		entry, err = s.repo.GetForUpdateTx(ctx, tx, id, businessID)
		if err != nil {
			return err
		}
		if entry.Status != StatusDraft {
			return shared.ErrEntryNotDraft
		}
		if err := s.checkAccounts(ctx, businessID, entry.SourceType, in.Lines); err != nil {
			return err
		}
		entry.EntryDate = in.EntryDate
		entry.Reference = in.Reference
		entry.Description = in.Description
		entry.TotalDebit = totalDebit
		entry.TotalCredit = totalCredit
		entry.Lines = in.Lines
		if err := s.repo.UpdateHeaderTx(ctx, tx, entry); err != nil {
			return err
		}
		return s.repo.ReplaceLinesTx(ctx, tx, entry.ID, in.Lines)
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Post moves a draft entry to posted: the entry date must fall in an open
// period, and the entry number is allocated here, not at creation, so the
// sequence has no gaps from abandoned drafts.
func (s *Service) Post(ctx context.Context, id, businessID, postedBy int64) (Entry, error) {
	var (
		entry    Entry
		periodID *int64
	)
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		entry, err = s.repo.GetForUpdateTx(ctx, tx, id, businessID)
		if err != nil {
			return err
		}
		switch entry.Status {
		case StatusDraft:
		case StatusPosted:
			return shared.ErrEntryAlreadyPosted
		default:
			return shared.ErrEntryReversed
		}
		periodID, err = s.postInTx(ctx, tx, &entry, postedBy)
		return err
	})
	if err != nil {
		return Entry{}, err
	}

	s.rebuildAfterPost(ctx, businessID, periodID)
	s.log.InfoContext(ctx, "journal entry posted",
		slog.Int64("business_id", businessID),
		slog.Int64("entry_id", entry.ID),
		slog.String("entry_number", entry.EntryNumber))
	return entry, nil
}

// postInTx numbers and posts the entry inside the caller's transaction.
func (s *Service) postInTx(ctx context.Context, tx pgx.Tx, entry *Entry, postedBy int64) (*int64, error) {
	periodID, err := s.periods.ResolveForDate(ctx, entry.BusinessID, entry.EntryDate)
	if err != nil {
		return nil, err
	}
	if periodID != nil {
		if err := s.periods.EnsurePostable(ctx, *periodID, entry.BusinessID, entry.EntryDate); err != nil {
			return nil, err
		}
	}
	number, err := s.repo.NextEntryNumberTx(ctx, tx, entry.BusinessID, entry.EntryDate.Year())
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.repo.MarkPostedTx(ctx, tx, entry.ID, number, periodID, postedBy, now); err != nil {
		return nil, err
	}
	entry.Status = StatusPosted
	entry.EntryNumber = number
	entry.PeriodID = periodID
	entry.PostedBy = &postedBy
	entry.PostedAt = &now
	return periodID, nil
}

// SoftDelete removes a draft entry. Posted entries stay forever; the audit
// trail only ever grows.
func (s *Service) SoftDelete(ctx context.Context, id, businessID int64) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		entry, err := s.repo.GetForUpdateTx(ctx, tx, id, businessID)
		if err != nil {
			return err
		}
		if entry.Status != StatusDraft {
			return shared.ErrEntryNotDraft
		}
		return s.repo.SoftDeleteTx(ctx, tx, entry.ID)
	})
}

// Reverse creates and posts a mirror entry with debits and credits swapped,
// then marks the original reversed. Both changes commit atomically.
func (s *Service) Reverse(ctx context.Context, id, businessID, userID int64, date time.Time, description string) (Entry, error) {
	var (
		reversal Entry
		periodID *int64
	)
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		original, err := s.repo.GetForUpdateTx(ctx, tx, id, businessID)
		if err != nil {
			return err
		}
		switch original.Status {
		case StatusPosted:
		case StatusReversed:
			return shared.ErrEntryReversed
		default:
			return shared.ErrEntryNotPosted
		}

		if date.IsZero() {
			date = s.now().UTC().Truncate(24 * time.Hour)
		}
		if description == "" {
			description = fmt.Sprintf("Reversal of %s", original.EntryNumber)
		}
		lines := original.ReversedLines()
		totalDebit, totalCredit, err := ValidateLines(lines)
		if err != nil {
			return err
		}
		reversal = Entry{
			BusinessID:  businessID,
			EntryDate:   date,
			Reference:   original.Reference,
			Description: description,
			Status:      StatusDraft,
			SourceType:  SourceReversal,
			SourceID:    &original.ID,
			TotalDebit:  totalDebit,
			TotalCredit: totalCredit,
			CreatedBy:   userID,
			Reverses:    &original.ID,
			Lines:       lines,
		}
		reversal, err = s.repo.InsertTx(ctx, tx, reversal)
		if err != nil {
			return err
		}
		periodID, err = s.postInTx(ctx, tx, &reversal, userID)
		if err != nil {
			return err
		}
		return s.repo.MarkReversedTx(ctx, tx, original.ID, reversal.ID)
	})
	if err != nil {
		return Entry{}, err
	}

	s.rebuildAfterPost(ctx, businessID, periodID)
	s.log.InfoContext(ctx, "journal entry reversed",
		slog.Int64("business_id", businessID),
		slog.Int64("entry_id", id),
		slog.Int64("reversal_id", reversal.ID))
	return reversal, nil
}

// checkAccounts verifies every line account exists, is active, and, for
// manual entries, allows manual movements.
func (s *Service) checkAccounts(ctx context.Context, businessID int64, source SourceType, lines []Line) error {
	seen := make(map[int64]accounts.Account, len(lines))
	for _, l := range lines {
		acc, ok := seen[l.AccountID]
		if !ok {
			var err error
			acc, err = s.accounts.Get(ctx, l.AccountID, businessID)
			if err != nil {
				return err
			}
			seen[l.AccountID] = acc
		}
		if !acc.IsActive {
			return fmt.Errorf("%w (%s)", shared.ErrAccountInactive, acc.Code)
		}
		if source == SourceManual && !acc.AllowsManualEntries {
			return fmt.Errorf("%w: account %s does not accept manual entries", httpx.ErrValidation, acc.Code)
		}
	}
	return nil
}

// rebuildAfterPost refreshes the ledger projection. Rebuild failures are
// logged, not returned: the posted entry is already durable and the ledger
// can be regenerated on demand.
func (s *Service) rebuildAfterPost(ctx context.Context, businessID int64, periodID *int64) {
	if s.rebuild == nil {
		return
	}
	if err := s.rebuild.Rebuild(ctx, businessID, periodID); err != nil {
		s.log.ErrorContext(ctx, "ledger rebuild after posting failed",
			slog.Int64("business_id", businessID),
			slog.String("error", err.Error()))
	}
}
