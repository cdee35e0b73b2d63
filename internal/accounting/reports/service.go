package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) TrialBalance(ctx context.Context, businessID int64, from, to *time.Time) (TrialBalance, error) {
	// Initial balances seed the final columns so an account with only an
	// opening balance still appears.
	balances, err := s.repo.AccountBalances(ctx, businessID, from, to, true)
	if err != nil {
		return TrialBalance{}, err
	}
	return BuildTrialBalance(balances, from, to), nil
}

func (s *Service) BalanceSheet(ctx context.Context, businessID int64, asOf time.Time) (BalanceSheet, error) {
	balances, err := s.repo.AccountBalances(ctx, businessID, nil, &asOf, true)
	if err != nil {
		return BalanceSheet{}, err
	}
	return BuildBalanceSheet(balances, asOf), nil
}

func (s *Service) IncomeStatement(ctx context.Context, businessID int64, from, to time.Time) (IncomeStatement, error) {
	balances, err := s.repo.AccountBalances(ctx, businessID, &from, &to, false)
	if err != nil {
		return IncomeStatement{}, err
	}
	return BuildIncomeStatement(balances, from, to), nil
}

// Summary fetches the three statements concurrently for one dashboard call.
func (s *Service) Summary(ctx context.Context, businessID int64, from, to time.Time) (Summary, error) {
	var out Summary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tb, err := s.TrialBalance(ctx, businessID, &from, &to)
		out.TrialBalance = tb
		return err
	})
	g.Go(func() error {
		bs, err := s.BalanceSheet(ctx, businessID, to)
		out.BalanceSheet = bs
		return err
	})
	g.Go(func() error {
		is, err := s.IncomeStatement(ctx, businessID, from, to)
		out.IncomeStatement = is
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return out, nil
}
