// Package service orchestrates the booking rules against the record store.
// Every decision loads a fresh snapshot, runs the pure rules package over
// it and, for writes, saves the whole updated collection.  Writers share one
// mutex so a commit and an admin edit never interleave between load and save.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/mail"
	"github.com/iliyamo/guest-suite-booking/internal/queue"
	"github.com/iliyamo/guest-suite-booking/internal/repository"
	"github.com/iliyamo/guest-suite-booking/internal/rules"
)

var (
	// ErrStaleRequest means the inputs presented at commit differ from the
	// evaluated request, or the check token is no longer valid.
	ErrStaleRequest = errors.New("stale request")
	// ErrSnapshotChanged means the bookings changed between check and commit
	// so the selected range is no longer on offer.
	ErrSnapshotChanged = errors.New("snapshot changed")
	// ErrPolicyRejected is returned by commit when the selected range fails
	// the policy on re-evaluation.
	ErrPolicyRejected = errors.New("policy rejected")
	// ErrOverrideRequired is returned by admin assign when a segment exceeds
	// the consecutive-night cap and no override was confirmed.
	ErrOverrideRequired = errors.New("override required")
	// ErrNightsOccupied is returned by admin assign when a selected night is
	// already booked.
	ErrNightsOccupied = errors.New("nights occupied")
	// ErrAlreadyApproved is returned when an approval link is used twice.
	ErrAlreadyApproved = errors.New("already approved")
	// ErrStore wraps every persistence failure.
	ErrStore = errors.New("storage error")
)

// ValidationError reports malformed input before any rule runs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

// EventPublisher receives booking events after a successful save.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Invalidator drops cached read responses after a write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Options wires the services.  Store is required; everything else has a
// usable default.
type Options struct {
	Store         repository.Store
	Limits        rules.Limits
	Location      *time.Location
	Clock         func() time.Time
	Logger        *slog.Logger
	Events        EventPublisher
	Cache         Invalidator
	Mail          *mail.Composer
	TokenSecret   string
	CheckTokenTTL time.Duration
}

// Services groups the public, admin, member and special-period services.
type Services struct {
	Booking  *BookingService
	Admin    *AdminService
	Members  *MemberService
	Specials *SpecialService
}

type core struct {
	store    repository.Store
	policy   *rules.Policy
	loc      *time.Location
	clock    func() time.Time
	logger   *slog.Logger
	events   EventPublisher
	cache    Invalidator
	mail     *mail.Composer
	secret   string
	tokenTTL time.Duration

	mu sync.Mutex // serializes load-validate-save
}

// New builds the services around one shared core.
func New(opts Options) *Services {
	c := &core{
		store:    opts.Store,
		policy:   rules.NewPolicy(opts.Limits),
		loc:      opts.Location,
		clock:    opts.Clock,
		logger:   opts.Logger,
		events:   opts.Events,
		cache:    opts.Cache,
		mail:     opts.Mail,
		secret:   opts.TokenSecret,
		tokenTTL: opts.CheckTokenTTL,
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.mail == nil {
		c.mail = mail.NewComposer("", "")
	}
	if c.tokenTTL <= 0 {
		c.tokenTTL = 30 * time.Minute
	}
	return &Services{
		Booking:  &BookingService{c},
		Admin:    &AdminService{c},
		Members:  &MemberService{c},
		Specials: &SpecialService{c},
	}
}

func (c *core) today() calendar.Date { return calendar.Today(c.clock(), c.loc) }

// snapshot loads bookings and specials and derives the usage table.
func (c *core) snapshot(ctx context.Context) (rules.Snapshot, error) {
	bookings, err := c.store.LoadBookings(ctx)
	if err != nil {
		return rules.Snapshot{}, storeErr("load bookings", err)
	}
	specials, err := c.store.LoadSpecials(ctx)
	if err != nil {
		return rules.Snapshot{}, storeErr("load specials", err)
	}
	return rules.NewSnapshot(c.today(), bookings, specials), nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStore, err)
}

// afterWrite purges the read cache and publishes ev.  Neither failure is
// returned; the write itself already succeeded.
func (c *core) afterWrite(ctx context.Context, ev queue.BookingEvent) {
	if c.cache != nil {
		if err := c.cache.Invalidate(ctx); err != nil {
			c.logger.Warn("cache invalidate failed", "err", err)
		}
	}
	if c.events == nil {
		return
	}
	ev.OccurredAt = c.clock().UTC().Format(time.RFC3339)
	if err := c.events.Publish(ctx, ev); err != nil {
		c.logger.Warn("publish booking event failed", "type", ev.Type, "err", err)
	}
}
