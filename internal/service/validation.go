package service

import (
	"strings"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// normalizeRequest trims and normalizes a member-facing request and rejects
// anything incomplete.  Nothing is coerced silently: a bad member id or an
// empty range is an error.
func normalizeRequest(r model.CheckRequest) (model.CheckRequest, error) {
	id, ok := model.NormalizeMemberID(r.MemberID)
	if !ok {
		return r, invalid("member_id", "member id must be 1 to 3 digits")
	}
	name := strings.TrimSpace(r.MemberName)
	if name == "" {
		return r, invalid("member_name", "member name is required")
	}
	if r.Start.IsZero() {
		return r, invalid("start", "start date is required")
	}
	if r.End.IsZero() {
		return r, invalid("end", "end date is required")
	}
	if !r.Start.Before(r.End) {
		return r, invalid("end", "end must be after start")
	}
	return model.CheckRequest{MemberID: id, MemberName: name, Start: r.Start, End: r.End}, nil
}

func parseNights(raw []string) ([]calendar.Date, error) {
	if len(raw) == 0 {
		return nil, invalid("nights", "at least one night is required")
	}
	out := make([]calendar.Date, 0, len(raw))
	seen := make(calendar.DateSet, len(raw))
	for _, s := range raw {
		d, err := calendar.Parse(s)
		if err != nil {
			return nil, invalid("nights", err.Error())
		}
		if seen.Has(d) {
			continue
		}
		seen.Add(d)
		out = append(out, d)
	}
	return out, nil
}
