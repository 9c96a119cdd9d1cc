package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/mail"
	"github.com/iliyamo/guest-suite-booking/internal/model"
	"github.com/iliyamo/guest-suite-booking/internal/queue"
	"github.com/iliyamo/guest-suite-booking/internal/repository"
	"github.com/iliyamo/guest-suite-booking/internal/rules"
)

// ApprovedNote is attached to bookings created from a mail approval link.
const ApprovedNote = "approved from mail link"

// AdminService applies manager corrections.  The monthly cap is only a
// warning here, and the consecutive-night cap can be overridden with an
// explicit confirmation.
type AdminService struct{ *core }

// AdminResult reports the bookings written by an admin action together
// with any soft-limit warnings.
type AdminResult struct {
	Created  []model.Booking `json:"created,omitempty"`
	Updated  []model.Booking `json:"updated,omitempty"`
	Removed  []string        `json:"removed,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ListBookings returns every booking ordered by start date.
func (s *AdminService) ListBookings(ctx context.Context) ([]model.Booking, error) {
	bookings, err := s.store.LoadBookings(ctx)
	if err != nil {
		return nil, storeErr("load bookings", err)
	}
	sort.SliceStable(bookings, func(i, j int) bool { return bookings[i].Start.Before(bookings[j].Start) })
	return bookings, nil
}

// DeleteBooking removes one booking by id.
func (s *AdminService) DeleteBooking(ctx context.Context, id string) error {
	var removed model.Booking
	s.mu.Lock()
	err := s.updateBookings(ctx, func(list []model.Booking) ([]model.Booking, error) {
		out := make([]model.Booking, 0, len(list))
		found := false
		for _, b := range list {
			if b.ID == id {
				removed, found = b, true
				continue
			}
			out = append(out, b)
		}
		if !found {
			return nil, fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
		}
		return out, nil
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Info("booking deleted", "booking_id", id, "member_id", removed.MemberID)
	s.afterWrite(ctx, queue.BookingEvent{
		Type:       queue.EventBookingDeleted,
		BookingIDs: []string{id},
		MemberID:   removed.MemberID,
		MemberName: removed.MemberName,
		Start:      removed.Start.String(),
		End:        removed.End.String(),
		Nights:     removed.NightCount(),
		Actor:      "admin",
	})
	return nil
}

// ReleaseNights frees the given nights across every booking.  A booking
// that loses nights in its middle is split into kept segments; one that
// loses every night is removed.
func (s *AdminService) ReleaseNights(ctx context.Context, rawNights []string) (AdminResult, error) {
	nights, err := parseNights(rawNights)
	if err != nil {
		return AdminResult{}, err
	}
	released := make(calendar.DateSet, len(nights))
	for _, n := range nights {
		released.Add(n)
	}
	suffix := numberedSuffix
	if len(nights) == 1 {
		suffix = letteredSuffix
	}

	var res AdminResult
	s.mu.Lock()
	err = s.updateBookings(ctx, func(list []model.Booking) ([]model.Booking, error) {
		next, updated, removed := releaseFrom(list, released, suffix)
		res.Updated, res.Removed = updated, removed
		return next, nil
	})
	s.mu.Unlock()
	if err != nil {
		return AdminResult{}, err
	}
	s.logger.Info("nights released", "nights", len(nights), "updated", len(res.Updated), "removed", len(res.Removed))
	s.afterWrite(ctx, queue.BookingEvent{
		Type:       queue.EventNightsReleased,
		BookingIDs: append(bookingIDs(res.Updated), res.Removed...),
		Nights:     len(nights),
		Actor:      "admin",
	})
	return res, nil
}

// ReassignNight moves one night to another member.  Whatever booking held
// the night is trimmed or split around it and a one-night booking is added
// for the target member.
func (s *AdminService) ReassignNight(ctx context.Context, rawNight, rawMemberID string) (AdminResult, error) {
	night, err := calendar.Parse(rawNight)
	if err != nil {
		return AdminResult{}, invalid("night", err.Error())
	}
	var res AdminResult
	s.mu.Lock()
	err = s.withMember(ctx, rawMemberID, func(m model.Member) error {
		return s.updateBookings(ctx, func(list []model.Booking) ([]model.Booking, error) {
			released := make(calendar.DateSet, 1)
			released.Add(night)
			next, updated, removed := releaseFrom(list, released, letteredSuffix)
			res.Warnings = s.monthlyWarnings(rules.BuildUsage(next, s.today()), m, []calendar.Date{night})
			b := model.Booking{ID: uuid.NewString(), MemberID: m.ID, MemberName: m.Name, Start: night, End: night.AddDays(1)}
			res.Updated, res.Removed, res.Created = updated, removed, []model.Booking{b}
			return append(next, b), nil
		})
	})
	s.mu.Unlock()
	if err != nil {
		return AdminResult{}, err
	}
	b := res.Created[0]
	s.logger.Info("night reassigned", "night", night.String(), "member_id", b.MemberID, "warnings", len(res.Warnings))
	s.afterWrite(ctx, queue.BookingEvent{
		Type:       queue.EventNightReassigned,
		BookingIDs: append([]string{b.ID}, res.Removed...),
		MemberID:   b.MemberID,
		MemberName: b.MemberName,
		Start:      b.Start.String(),
		End:        b.End.String(),
		Nights:     1,
		Warnings:   res.Warnings,
		Actor:      "admin",
	})
	return res, nil
}

// AssignInput selects free nights for a member.
type AssignInput struct {
	Nights          []string
	MemberID        string
	ConfirmOverride bool
}

// AssignNights books the selected free nights for a member, one booking per
// contiguous segment.  A segment longer than the consecutive cap needs
// ConfirmOverride.
func (s *AdminService) AssignNights(ctx context.Context, in AssignInput) (AdminResult, error) {
	nights, err := parseNights(in.Nights)
	if err != nil {
		return AdminResult{}, err
	}
	segments := calendar.MergeToBlocks(nights)
	limit := s.policy.Limits().MaxConsecutiveNights
	if !in.ConfirmOverride {
		for _, seg := range segments {
			if seg.Nights() > limit {
				return AdminResult{}, fmt.Errorf("%w: segment %s has %d nights (limit %d)", ErrOverrideRequired, seg, seg.Nights(), limit)
			}
		}
	}

	var res AdminResult
	s.mu.Lock()
	err = s.withMember(ctx, in.MemberID, func(m model.Member) error {
		return s.updateBookings(ctx, func(list []model.Booking) ([]model.Booking, error) {
			occupied := rules.OccupiedNights(list)
			var taken []string
			for _, n := range nights {
				if occupied.Has(n) {
					taken = append(taken, n.String())
				}
			}
			if len(taken) > 0 {
				sort.Strings(taken)
				return nil, fmt.Errorf("%w: %s", ErrNightsOccupied, strings.Join(taken, ", "))
			}
			res.Warnings = s.monthlyWarnings(rules.BuildUsage(list, s.today()), m, nights)
			next := model.CloneBookings(list)
			for _, seg := range segments {
				b := model.Booking{ID: uuid.NewString(), MemberID: m.ID, MemberName: m.Name, Start: seg.Start, End: seg.End}
				res.Created = append(res.Created, b)
				next = append(next, b)
			}
			return next, nil
		})
	})
	s.mu.Unlock()
	if err != nil {
		return AdminResult{}, err
	}
	s.logger.Info("nights assigned", "member_id", in.MemberID, "segments", len(res.Created), "override", in.ConfirmOverride, "warnings", len(res.Warnings))
	s.afterWrite(ctx, queue.BookingEvent{
		Type:       queue.EventNightsAssigned,
		BookingIDs: bookingIDs(res.Created),
		MemberID:   res.Created[0].MemberID,
		MemberName: res.Created[0].MemberName,
		Nights:     len(nights),
		Warnings:   res.Warnings,
		Actor:      "admin",
	})
	return res, nil
}

// Approval decisions accepted by ApproveRequest.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ApprovalInput is the decoded target of an approve or reject mail link.
type ApprovalInput struct {
	Payload         string
	Decision        string
	ConfirmOverride bool
}

// ApproveRequest handles the approve/reject links from an inquiry mail.
// Approving appends the requested booking unless an identical one exists;
// rejecting changes nothing.  Overlaps and monthly cap overflows come back
// as warnings, and a range longer than the consecutive cap needs
// ConfirmOverride.
func (s *AdminService) ApproveRequest(ctx context.Context, in ApprovalInput) (AdminResult, error) {
	p, err := mail.DecodePayload(in.Payload)
	if err != nil {
		return AdminResult{}, invalid("payload", err.Error())
	}
	id, ok := model.NormalizeMemberID(p.MemberID)
	if !ok {
		return AdminResult{}, invalid("payload", "member id must be 1 to 3 digits")
	}
	start, err := calendar.Parse(p.Start)
	if err != nil {
		return AdminResult{}, invalid("payload", err.Error())
	}
	end, err := calendar.Parse(p.End)
	if err != nil {
		return AdminResult{}, invalid("payload", err.Error())
	}
	if !start.Before(end) {
		return AdminResult{}, invalid("payload", "end must be after start")
	}
	switch in.Decision {
	case DecisionReject:
		s.logger.Info("mail request rejected", "member_id", id, "range", start.String()+".."+end.String())
		return AdminResult{}, nil
	case DecisionApprove, "":
	default:
		return AdminResult{}, invalid("decision", "decision must be approve or reject")
	}

	name := strings.TrimSpace(p.MemberName)
	if name == "" {
		name = id
	}
	b := model.Booking{ID: uuid.NewString(), MemberID: id, MemberName: name, Start: start, End: end, Note: ApprovedNote}
	if limit := s.policy.Limits().MaxConsecutiveNights; !in.ConfirmOverride && b.NightCount() > limit {
		return AdminResult{}, fmt.Errorf("%w: request %s has %d nights (limit %d)", ErrOverrideRequired, b.Range(), b.NightCount(), limit)
	}

	var res AdminResult
	s.mu.Lock()
	err = s.updateBookings(ctx, func(list []model.Booking) ([]model.Booking, error) {
		for _, x := range list {
			if x.MemberID == id && x.Start.Equal(start) && x.End.Equal(end) {
				return nil, ErrAlreadyApproved
			}
		}
		for _, c := range rules.DetectConflicts(b.Range(), list).Conflicts {
			res.Warnings = append(res.Warnings, fmt.Sprintf("overlaps booking %s of %s (%s)", c.ID, c.MemberName, c.Range()))
		}
		member := model.Member{ID: id, Name: name}
		res.Warnings = append(res.Warnings, s.monthlyWarnings(rules.BuildUsage(list, s.today()), member, b.Nights())...)
		res.Created = []model.Booking{b}
		return append(model.CloneBookings(list), b), nil
	})
	s.mu.Unlock()
	if err != nil {
		return AdminResult{}, err
	}
	s.logger.Info("mail request approved", "booking_id", b.ID, "member_id", id, "override", in.ConfirmOverride, "warnings", len(res.Warnings))
	s.afterWrite(ctx, queue.BookingEvent{
		Type:       queue.EventBookingApproved,
		BookingIDs: []string{b.ID},
		MemberID:   b.MemberID,
		MemberName: b.MemberName,
		Start:      b.Start.String(),
		End:        b.End.String(),
		Nights:     b.NightCount(),
		Note:       b.Note,
		Warnings:   res.Warnings,
		Actor:      "admin",
	})
	return res, nil
}

// updateBookings loads, transforms and saves the booking collection.  The
// caller holds s.mu.
func (s *AdminService) updateBookings(ctx context.Context, fn func([]model.Booking) ([]model.Booking, error)) error {
	list, err := s.store.LoadBookings(ctx)
	if err != nil {
		return storeErr("load bookings", err)
	}
	next, err := fn(list)
	if err != nil {
		return err
	}
	if err := s.store.SaveBookings(ctx, next); err != nil {
		return storeErr("save bookings", err)
	}
	return nil
}

// withMember resolves a member id against the member list.
func (s *AdminService) withMember(ctx context.Context, rawID string, fn func(model.Member) error) error {
	id, ok := model.NormalizeMemberID(rawID)
	if !ok {
		return invalid("member_id", "member id must be 1 to 3 digits")
	}
	members, err := s.store.LoadMembers(ctx)
	if err != nil {
		return storeErr("load members", err)
	}
	for _, m := range members {
		if m.ID == id {
			return fn(m)
		}
	}
	return fmt.Errorf("member %s: %w", id, repository.ErrNotFound)
}

func (s *AdminService) monthlyWarnings(usage rules.UsageIndex, m model.Member, nights []calendar.Date) []string {
	limit := s.policy.Limits().MonthlyCap
	var out []string
	for _, month := range rules.MonthlyOverflow(usage, m.ID, nights, limit) {
		out = append(out, fmt.Sprintf("%s exceeds %d nights in %s", m.Name, limit, month))
	}
	return out
}

// releaseFrom removes the released nights from every booking.  Bookings
// left with one segment keep their id; bookings split into several get
// suffixed ids.
func releaseFrom(list []model.Booking, released calendar.DateSet, suffix func(int) string) (next, updated []model.Booking, removed []string) {
	next = make([]model.Booking, 0, len(list)+1)
	for _, b := range list {
		segs := keepSegments(b, released)
		switch {
		case len(segs) == 0:
			removed = append(removed, b.ID)
		case len(segs) == 1 && segs[0].Start.Equal(b.Start) && segs[0].End.Equal(b.End):
			next = append(next, b)
		case len(segs) == 1:
			nb := b
			nb.Start, nb.End = segs[0].Start, segs[0].End
			next = append(next, nb)
			updated = append(updated, nb)
		default:
			for i, seg := range segs {
				nb := b
				nb.ID = b.ID + "-" + suffix(i)
				nb.Start, nb.End = seg.Start, seg.End
				next = append(next, nb)
				updated = append(updated, nb)
			}
		}
	}
	return next, updated, removed
}

// keepSegments returns the runs of b's nights that are not released.
func keepSegments(b model.Booking, released calendar.DateSet) []calendar.Range {
	var kept []calendar.Date
	for _, n := range b.Nights() {
		if !released.Has(n) {
			kept = append(kept, n)
		}
	}
	return calendar.MergeToBlocks(kept)
}

func numberedSuffix(i int) string { return strconv.Itoa(i + 1) }

func letteredSuffix(i int) string { return string(rune('a' + i)) }

func bookingIDs(bs []model.Booking) []string {
	ids := make([]string, 0, len(bs))
	for _, b := range bs {
		ids = append(ids, b.ID)
	}
	return ids
}

// UsageRow is one member's line in the monthly nights report.
type UsageRow struct {
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
	Nights     int    `json:"nights"`
	OverCap    bool   `json:"over_cap"`
}

// UsageReport is the monthly nights report.
type UsageReport struct {
	Month   string     `json:"month"`
	Members []UsageRow `json:"members"`
}

// MonthlyUsage reports booked nights per member for one month (yyyy-MM),
// most nights first.  An empty month means the current one.
func (s *AdminService) MonthlyUsage(ctx context.Context, month string) (UsageReport, error) {
	if month == "" {
		month = calendar.MonthKeyOf(s.today())
	}
	first, err := calendar.Parse(month + "-01")
	if err != nil || calendar.MonthKeyOf(first) != month {
		return UsageReport{}, invalid("month", "month must be yyyy-MM")
	}
	bookings, err := s.store.LoadBookings(ctx)
	if err != nil {
		return UsageReport{}, storeErr("load bookings", err)
	}
	names := make(map[string]string)
	for _, b := range bookings {
		if _, ok := names[b.MemberID]; !ok {
			names[b.MemberID] = b.MemberName
		}
	}
	limit := s.policy.Limits().MonthlyCap
	rows := make([]UsageRow, 0)
	for id, n := range rules.BuildUsage(bookings, s.today()).ForMonth(month) {
		rows = append(rows, UsageRow{MemberID: id, MemberName: names[id], Nights: n, OverCap: n > limit})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Nights != rows[j].Nights {
			return rows[i].Nights > rows[j].Nights
		}
		return rows[i].MemberID < rows[j].MemberID
	})
	return UsageReport{Month: month, Members: rows}, nil
}
