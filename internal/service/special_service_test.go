package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/guest-suite-booking/internal/model"
	"github.com/iliyamo/guest-suite-booking/internal/repository"
)

func TestSpecialService_AddListDelete(t *testing.T) {
	f := newFixture(t, "2025-09-01")
	ctx := context.Background()

	var ve *ValidationError
	if _, err := f.svc.Specials.Add(ctx, model.SpecialPeriod{Label: "", Start: d("2025-12-14"), End: d("2025-12-22")}); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for missing label, got %v", err)
	}
	if _, err := f.svc.Specials.Add(ctx, model.SpecialPeriod{Label: "x", Type: "sale", Start: d("2025-12-14"), End: d("2025-12-22")}); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}

	sp, err := f.svc.Specials.Add(ctx, model.SpecialPeriod{Label: "Hanukkah", Start: d("2025-12-14"), End: d("2025-12-22")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	list, err := f.svc.Specials.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v (%v)", list, err)
	}
	if list[0].OpenDate.String() != "2025-10-15" || list[0].DecisionDate.String() != "2025-11-09" {
		t.Fatalf("unexpected gate dates %s / %s", list[0].OpenDate, list[0].DecisionDate)
	}

	if err := f.svc.Specials.Delete(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := f.svc.Specials.Delete(ctx, sp.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestMonthView(t *testing.T) {
	f := newFixture(t, "2025-09-01", seedBooking("b1", "123", "Noa Cohen", "2025-12-12", "2025-12-15"))
	ctx := context.Background()
	if _, err := f.svc.Specials.Add(ctx, model.SpecialPeriod{Label: "Hanukkah", Start: d("2025-12-14"), End: d("2025-12-22")}); err != nil {
		t.Fatalf("add special: %v", err)
	}
	days, err := f.svc.Specials.MonthView(ctx, "2025-12")
	if err != nil {
		t.Fatalf("month view: %v", err)
	}
	if len(days) != 31 {
		t.Fatalf("expected 31 days, got %d", len(days))
	}
	checks := map[int]string{10: NightFree, 11: NightBooked, 12: NightBooked, 13: NightHoliday, 21: NightFree}
	for idx, want := range checks {
		if days[idx].Status != want {
			t.Fatalf("%s: expected %s, got %s", days[idx].Date, want, days[idx].Status)
		}
	}
	var ve *ValidationError
	if _, err := f.svc.Specials.MonthView(ctx, "December"); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
