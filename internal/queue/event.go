// Package queue defines the booking events exchanged over RabbitMQ, the
// publisher used by the services and the consumer that records them.
package queue

// Event types carried in BookingEvent.Type.
const (
	EventBookingCreated  = "booking.created"
	EventBookingApproved = "booking.approved"
	EventBookingDeleted  = "booking.deleted"
	EventNightsReleased  = "nights.released"
	EventNightReassigned = "night.reassigned"
	EventNightsAssigned  = "nights.assigned"
	EventMembersReplaced = "members.replaced"
)

// BookingEvent is published after a booking change has been saved.  It
// carries enough for downstream consumers to log or notify without reading
// the store.
type BookingEvent struct {
	Type       string   `json:"type"`
	BookingIDs []string `json:"booking_ids,omitempty"`
	MemberID   string   `json:"member_id,omitempty"`
	MemberName string   `json:"member_name,omitempty"`
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
	Nights     int      `json:"nights,omitempty"`
	Note       string   `json:"note,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Actor      string   `json:"actor"`
	OccurredAt string   `json:"occurred_at"`
}
