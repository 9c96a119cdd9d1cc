package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
	"github.com/iliyamo/guest-suite-booking/internal/repository"
)

// SpecialService manages the holiday windows and renders the month view.
type SpecialService struct{ *core }

// SpecialView is a special period with its derived gate dates.
type SpecialView struct {
	model.SpecialPeriod
	OpenDate     calendar.Date `json:"open_date"`
	DecisionDate calendar.Date `json:"decision_date"`
}

// List returns every special period ordered by start.
func (s *SpecialService) List(ctx context.Context) ([]SpecialView, error) {
	specials, err := s.store.LoadSpecials(ctx)
	if err != nil {
		return nil, storeErr("load specials", err)
	}
	sort.SliceStable(specials, func(i, j int) bool { return specials[i].Start.Before(specials[j].Start) })
	lim := s.policy.Limits()
	out := make([]SpecialView, 0, len(specials))
	for _, sp := range specials {
		out = append(out, SpecialView{
			SpecialPeriod: sp,
			OpenDate:      sp.OpenDate(lim.HolidayOpenDays),
			DecisionDate:  sp.DecisionDate(lim.HolidayDecisionDays),
		})
	}
	return out, nil
}

// Add validates and appends a special period.
func (s *SpecialService) Add(ctx context.Context, sp model.SpecialPeriod) (model.SpecialPeriod, error) {
	sp.Label = strings.TrimSpace(sp.Label)
	sp.Type = strings.ToLower(strings.TrimSpace(sp.Type))
	if sp.Type == "" {
		sp.Type = model.SpecialTypeHoliday
	}
	if sp.Type != model.SpecialTypeHoliday {
		return sp, invalid("type", "only holiday periods are supported")
	}
	if sp.Label == "" {
		return sp, invalid("label", "label is required")
	}
	if !sp.Range().Valid() {
		return sp, invalid("end", "end must be after start")
	}
	sp.ID = uuid.NewString()

	s.mu.Lock()
	err := s.update(ctx, func(list []model.SpecialPeriod) ([]model.SpecialPeriod, error) {
		return append(list, sp), nil
	})
	s.mu.Unlock()
	if err != nil {
		return sp, err
	}
	s.logger.Info("special period added", "id", sp.ID, "label", sp.Label, "range", sp.Range().String())
	s.invalidate(ctx)
	return sp, nil
}

// Delete removes the special period with id.
func (s *SpecialService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	err := s.update(ctx, func(list []model.SpecialPeriod) ([]model.SpecialPeriod, error) {
		out := list[:0]
		found := false
		for _, sp := range list {
			if sp.ID == id {
				found = true
				continue
			}
			out = append(out, sp)
		}
		if !found {
			return nil, fmt.Errorf("special %s: %w", id, repository.ErrNotFound)
		}
		return out, nil
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Info("special period deleted", "id", id)
	s.invalidate(ctx)
	return nil
}

func (s *SpecialService) update(ctx context.Context, fn func([]model.SpecialPeriod) ([]model.SpecialPeriod, error)) error {
	list, err := s.store.LoadSpecials(ctx)
	if err != nil {
		return storeErr("load specials", err)
	}
	next, err := fn(list)
	if err != nil {
		return err
	}
	if err := s.store.SaveSpecials(ctx, next); err != nil {
		return storeErr("save specials", err)
	}
	return nil
}

func (s *SpecialService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("cache invalidate failed", "err", err)
	}
}

// Night status values in the month view.
const (
	NightFree    = "free"
	NightBooked  = "booked"
	NightHoliday = "holiday"
)

// DayStatus is one cell of the public month calendar.
type DayStatus struct {
	Date   calendar.Date `json:"date"`
	Status string        `json:"status"`
	Label  string        `json:"label,omitempty"`
}

// MonthView returns the status of every night in month (yyyy-MM).  A
// holiday wins over booked, booked over free.  Member names are not shown.
func (s *SpecialService) MonthView(ctx context.Context, month string) ([]DayStatus, error) {
	first, err := calendar.Parse(month + "-01")
	if err != nil {
		return nil, invalid("month", "month must be yyyy-MM")
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	occupied := make(calendar.DateSet)
	for _, b := range snap.Bookings {
		occupied.AddRange(b.Range())
	}
	end := first.AddMonths(1)
	out := make([]DayStatus, 0, 31)
	for _, d := range calendar.NightsInRange(first, end) {
		day := DayStatus{Date: d, Status: NightFree}
		if occupied.Has(d) {
			day.Status = NightBooked
		}
		for _, sp := range snap.Specials {
			if sp.Range().Contains(d) {
				day.Status = NightHoliday
				day.Label = sp.Label
				break
			}
		}
		out = append(out, day)
	}
	return out, nil
}
