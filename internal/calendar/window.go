package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// HolidayRecord is one entry of a per-year holiday listing.
type HolidayRecord struct {
	Date      Date   `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name,omitempty"`
}

// Source supplies public holidays for one (year, country) pair.
type Source interface {
	FetchYear(ctx context.Context, year int, countryCode string) ([]HolidayRecord, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context, year int, countryCode string) ([]HolidayRecord, error)

func (f SourceFunc) FetchYear(ctx context.Context, year int, countryCode string) ([]HolidayRecord, error) {
	return f(ctx, year, countryCode)
}

// Holiday is a window entry. IsTradingDay is always false: the source conflates
// public holidays with exchange closures and no exchange calendar is consulted.
type Holiday struct {
	Date         Date   `json:"date"`
	Name         string `json:"name"`
	IsTradingDay bool   `json:"is_trading_day"`
}

// HolidayWindow lists the holidays in [PeriodStart, PeriodEnd], both inclusive.
type HolidayWindow struct {
	CountryCode string    `json:"country_code"`
	PeriodStart Date      `json:"period_start"`
	PeriodEnd   Date      `json:"period_end"`
	Holidays    []Holiday `json:"holidays"`
	Count       int       `json:"trading_days_affected"`
	Advisory    string    `json:"advice"`
	DaysAhead   int       `json:"-"`
}

var (
	// ErrNegativeHorizon is returned when daysAhead < 0.
	ErrNegativeHorizon = errors.New("days ahead must not be negative")
	// ErrHorizonTooLarge is returned when the window would touch more than two calendar years.
	ErrHorizonTooLarge = errors.New("days ahead spans more than two calendar years")
)

// ComputeWindow fetches every calendar year touched by [now, now+daysAhead] and
// keeps the holidays inside that range. Fetches run concurrently and are
// all-or-nothing: any failure fails the whole call with a *FetchError.
func ComputeWindow(ctx context.Context, countryCode string, daysAhead int, now time.Time, src Source) (*HolidayWindow, error) {
	if daysAhead < 0 {
		return nil, ErrNegativeHorizon
	}

	start := DateOf(now)
	end := start.AddDays(daysAhead)
	if end.Year()-start.Year() > 1 {
		return nil, ErrHorizonTooLarge
	}

	years := make([]int, 0, 2)
	for y := start.Year(); y <= end.Year(); y++ {
		years = append(years, y)
	}

	perYear := make([][]HolidayRecord, len(years))
	errs := make([]error, len(years))

	g, gctx := errgroup.WithContext(ctx)
	for i, year := range years {
		g.Go(func() error {
			recs, err := src.FetchYear(gctx, year, countryCode)
			if err != nil {
				errs[i] = err
				return err
			}
			perYear[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, newFetchError(countryCode, firstFailure(ctx, errs, err))
	}

	holidays := make([]Holiday, 0)
	for _, recs := range perYear {
		for _, r := range recs {
			if r.Date.Before(start.Time) || r.Date.After(end.Time) {
				continue
			}
			holidays = append(holidays, Holiday{Date: r.Date, Name: r.LocalName})
		}
	}

	return &HolidayWindow{
		CountryCode: countryCode,
		PeriodStart: start,
		PeriodEnd:   end,
		Holidays:    holidays,
		Count:       len(holidays),
		Advisory:    advisory(len(holidays), daysAhead),
		DaysAhead:   daysAhead,
	}, nil
}

// firstFailure picks the earliest year's own error, skipping fetches that only
// failed because the group cancelled them.
func firstFailure(parent context.Context, errs []error, groupErr error) error {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if parent.Err() == nil && errors.Is(err, context.Canceled) {
			continue
		}
		return err
	}
	return groupErr
}

func advisory(count, daysAhead int) string {
	if count > 0 {
		return fmt.Sprintf("%d market closure(s) in the next %d days. "+
			"Plan trade executions and client meetings accordingly.", count, daysAhead)
	}
	return fmt.Sprintf("No scheduled market closures in the next %d days.", daysAhead)
}
