package queue

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandleMessage_AppendsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	c := NewConsumer("", "booking.events", path, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ev := BookingEvent{
		Type:       EventBookingCreated,
		BookingIDs: []string{"b1"},
		MemberID:   "123",
		MemberName: "Noa",
		Start:      "2025-09-10",
		End:        "2025-09-13",
		Nights:     3,
		Actor:      "member",
		OccurredAt: "2025-09-01T10:00:00Z",
	}
	body, _ := json.Marshal(ev)
	for i := 0; i < 2; i++ {
		if err := c.handleMessage(body); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	want := `[2025-09-01T10:00:00Z] booking.created | actor=member | bookings=[b1] | member=123 "Noa" | range=2025-09-10..2025-09-13 | nights=3`
	if lines[0] != want {
		t.Fatalf("expected %q, got %q", want, lines[0])
	}
}

func TestHandleMessage_RejectsGarbage(t *testing.T) {
	c := NewConsumer("", "q", filepath.Join(t.TempDir(), "x.log"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := c.handleMessage([]byte("{")); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestNilPublisherDropsEvents(t *testing.T) {
	p := NewPublisher("", "q", nil)
	if p != nil {
		t.Fatal("expected nil publisher without a broker url")
	}
	if err := p.Publish(context.Background(), BookingEvent{Type: EventBookingDeleted}); err != nil {
		t.Fatalf("nil publisher must accept events, got %v", err)
	}
}
