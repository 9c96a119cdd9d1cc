package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/mail"
	"github.com/iliyamo/guest-suite-booking/internal/model"
	"github.com/iliyamo/guest-suite-booking/internal/queue"
	"github.com/iliyamo/guest-suite-booking/internal/rules"
	"github.com/iliyamo/guest-suite-booking/internal/utils"
)

// Status tags a check result.
type Status string

const (
	StatusOK               Status = "ok"
	StatusPolicyRejected   Status = "policy_rejected"
	StatusFullyBlocked     Status = "fully_blocked"
	StatusPartiallyBlocked Status = "partially_blocked"
)

// Result is the outcome of evaluating one request against one snapshot.
// Which optional fields are set depends on Status.
type Result struct {
	Status       Status             `json:"status"`
	Request      model.CheckRequest `json:"request"`
	ReasonCode   rules.ReasonCode   `json:"reason_code,omitempty"`
	Message      string             `json:"message,omitempty"`
	Months       []string           `json:"months,omitempty"`
	Notice       *rules.Notice      `json:"notice,omitempty"`
	Conflicts    []model.Booking    `json:"conflicts,omitempty"`
	Alternative  *calendar.Range    `json:"alternative,omitempty"`
	FreeSegments []calendar.Range   `json:"free_segments,omitempty"`
	CheckToken   string             `json:"check_token,omitempty"`
}

// Offers lists the ranges a commit may select: the request itself when it
// is free, each free segment when it is partly taken, the alternative when
// it is fully taken.
func (r Result) Offers() []calendar.Range {
	switch r.Status {
	case StatusOK:
		return []calendar.Range{r.Request.Range()}
	case StatusPartiallyBlocked:
		return r.FreeSegments
	case StatusFullyBlocked:
		if r.Alternative != nil {
			return []calendar.Range{*r.Alternative}
		}
	}
	return nil
}

// Committable reports whether the result exposes a commit action.
func (r Result) Committable() bool { return len(r.Offers()) > 0 }

func (r Result) outcome() mail.Outcome {
	o := mail.Outcome{
		Request:      r.Request,
		Status:       string(r.Status),
		Message:      r.Message,
		Alternative:  r.Alternative,
		FreeSegments: r.FreeSegments,
	}
	if r.Notice != nil {
		o.Notice = r.Notice.Message
	}
	return o
}

// BookingService is the member-facing side: check, commit, mail.
type BookingService struct{ *core }

// evaluate runs the policy pipeline, then conflict detection, then the
// alternative search when nothing in the request is free.
func (s *BookingService) evaluate(req model.CheckRequest, snap rules.Snapshot) Result {
	res := Result{Request: req}
	dec := s.policy.Evaluate(req, snap)
	if !dec.Allowed() {
		res.Status = StatusPolicyRejected
		res.ReasonCode = dec.Failure.Code
		res.Message = dec.Failure.Message
		res.Months = dec.Failure.Months
		return res
	}
	if len(dec.Notices) > 0 {
		n := dec.Notices[0]
		res.Notice = &n
	}

	rep := rules.DetectConflicts(req.Range(), snap.Bookings)
	switch rep.Status {
	case rules.AvailabilityFree:
		res.Status = StatusOK
	case rules.AvailabilityPartial:
		res.Status = StatusPartiallyBlocked
		res.Conflicts = rep.Conflicts
		res.FreeSegments = rep.FreeSegments()
	case rules.AvailabilityFull:
		res.Status = StatusFullyBlocked
		res.Conflicts = rep.Conflicts
		if alt, ok := rules.FindAlternative(req.Range(), rules.OccupiedNights(snap.Bookings), s.policy.Limits().AlternativeSearch); ok {
			res.Alternative = &alt
		}
	}
	return res
}

func (s *BookingService) sign(res *Result) error {
	tok, err := utils.NewCheckToken(s.secret, res.Request, string(res.Status), s.tokenTTL, s.clock())
	if err != nil {
		return fmt.Errorf("sign check token: %w", err)
	}
	res.CheckToken = tok
	return nil
}

// Check validates req and evaluates it against the current bookings.  The
// returned result carries a check token binding a later commit to exactly
// this request.
func (s *BookingService) Check(ctx context.Context, req model.CheckRequest) (Result, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return Result{}, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return Result{}, err
	}
	res := s.evaluate(req, snap)
	if err := s.sign(&res); err != nil {
		return Result{}, err
	}
	s.logger.Info("availability checked", "member_id", req.MemberID, "range", req.Range().String(), "status", res.Status, "reason", res.ReasonCode)
	return res, nil
}

// CommitInput carries the token from a check, the inputs as they are now,
// and the range the member picked from the offers.
type CommitInput struct {
	CheckToken string
	Current    model.CheckRequest
	Selected   calendar.Range
}

// CommitError carries the re-evaluated result alongside a commit failure.
type CommitError struct {
	Err    error
	Result Result
}

func (e *CommitError) Error() string { return e.Err.Error() }
func (e *CommitError) Unwrap() error { return e.Err }

// Commit re-runs the check against the freshest snapshot and appends the
// selected range as a booking.  It fails with ErrStaleRequest when the
// inputs changed since the check, and with a *CommitError wrapping
// ErrSnapshotChanged or ErrPolicyRejected when the bookings moved underneath.
func (s *BookingService) Commit(ctx context.Context, in CommitInput) (model.Booking, error) {
	checked, _, err := utils.ParseCheckToken(s.secret, in.CheckToken, s.clock())
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: %v", ErrStaleRequest, err)
	}
	current, err := normalizeRequest(in.Current)
	if err != nil {
		return model.Booking{}, err
	}
	if !checked.SameAs(current) {
		return model.Booking{}, ErrStaleRequest
	}
	selected := in.Selected
	if selected.Start.IsZero() && selected.End.IsZero() {
		selected = checked.Range()
	}
	if !selected.Valid() {
		return model.Booking{}, invalid("end", "end must be after start")
	}

	s.mu.Lock()
	booking, err := s.commitLocked(ctx, checked, selected)
	s.mu.Unlock()
	if err != nil {
		var ce *CommitError
		if errors.As(err, &ce) {
			s.logger.Info("commit refused", "member_id", checked.MemberID, "selected", selected.String(), "err", ce.Err, "status", ce.Result.Status)
		}
		return model.Booking{}, err
	}

	s.logger.Info("booking committed", "booking_id", booking.ID, "member_id", booking.MemberID, "range", booking.Range().String())
	s.afterWrite(ctx, queue.BookingEvent{
		Type:       queue.EventBookingCreated,
		BookingIDs: []string{booking.ID},
		MemberID:   booking.MemberID,
		MemberName: booking.MemberName,
		Start:      booking.Start.String(),
		End:        booking.End.String(),
		Nights:     booking.NightCount(),
		Note:       booking.Note,
		Actor:      "member",
	})
	return booking, nil
}

func (s *BookingService) commitLocked(ctx context.Context, checked model.CheckRequest, selected calendar.Range) (model.Booking, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return model.Booking{}, err
	}

	res := s.evaluate(checked, snap)
	if res.Status == StatusPolicyRejected {
		_ = s.sign(&res)
		return model.Booking{}, &CommitError{Err: ErrPolicyRejected, Result: res}
	}
	if !containsRange(res.Offers(), selected) {
		_ = s.sign(&res)
		return model.Booking{}, &CommitError{Err: ErrSnapshotChanged, Result: res}
	}

	pick := checked
	pick.Start, pick.End = selected.Start, selected.End
	picked := s.evaluate(pick, snap)
	switch picked.Status {
	case StatusOK:
	case StatusPolicyRejected:
		_ = s.sign(&picked)
		return model.Booking{}, &CommitError{Err: ErrPolicyRejected, Result: picked}
	default:
		_ = s.sign(&res)
		return model.Booking{}, &CommitError{Err: ErrSnapshotChanged, Result: res}
	}

	b := model.Booking{
		ID:         uuid.NewString(),
		MemberID:   pick.MemberID,
		MemberName: pick.MemberName,
		Start:      pick.Start,
		End:        pick.End,
	}
	if picked.Notice != nil {
		b.Note = picked.Notice.Message
	}
	next := append(model.CloneBookings(snap.Bookings), b)
	if err := s.store.SaveBookings(ctx, next); err != nil {
		return model.Booking{}, storeErr("save bookings", err)
	}
	return b, nil
}

func containsRange(offers []calendar.Range, r calendar.Range) bool {
	for _, o := range offers {
		if o.Start.Equal(r.Start) && o.End.Equal(r.End) {
			return true
		}
	}
	return false
}

// ComposeMail re-checks the request bound to token and renders the result
// as a prefilled message for the administrator.
func (s *BookingService) ComposeMail(ctx context.Context, token string) (mail.Message, error) {
	req, _, err := utils.ParseCheckToken(s.secret, token, s.clock())
	if err != nil {
		return mail.Message{}, fmt.Errorf("%w: %v", ErrStaleRequest, err)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return mail.Message{}, err
	}
	return s.mail.Compose(s.evaluate(req, snap).outcome()), nil
}
