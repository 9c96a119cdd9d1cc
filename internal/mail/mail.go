// Package mail renders availability outcomes as prefilled messages for the
// administrator and encodes the approve/reject links embedded in them.
package mail

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// ErrBadPayload is returned for approve/reject links that do not decode to
// a complete request.
var ErrBadPayload = errors.New("invalid approval payload")

// Payload is the request carried by an approve/reject link.
type Payload struct {
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

// EncodePayload returns the unpadded base64url form of p.
func EncodePayload(p Payload) string {
	b, _ := json.Marshal(p)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodePayload accepts padded or unpadded base64url and requires member id,
// start and end.
func DecodePayload(s string) (Payload, error) {
	s = strings.TrimSpace(s)
	if u, err := url.QueryUnescape(s); err == nil {
		s = u
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.MemberID == "" || p.Start == "" || p.End == "" {
		return Payload{}, ErrBadPayload
	}
	return p, nil
}

// PayloadFor converts a check request into a link payload.
func PayloadFor(r model.CheckRequest) Payload {
	return Payload{MemberID: r.MemberID, MemberName: r.MemberName, Start: r.Start.String(), End: r.End.String()}
}

// Outcome is what the composer needs to know about a check result.
type Outcome struct {
	Request      model.CheckRequest
	Status       string
	Message      string
	Notice       string
	Alternative  *calendar.Range
	FreeSegments []calendar.Range
}

// Message is a prefilled mail.
type Message struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Mailto  string `json:"mailto"`
}

// Composer builds messages addressed to the suite administrator.
type Composer struct {
	AdminEmail string
	BaseURL    string
}

// NewComposer returns a Composer; baseURL is the public root used for the
// approve/reject links and may be empty.
func NewComposer(adminEmail, baseURL string) *Composer {
	return &Composer{AdminEmail: strings.TrimSpace(adminEmail), BaseURL: strings.TrimRight(baseURL, "/")}
}

// Compose renders o as a plain-text inquiry.
func (c *Composer) Compose(o Outcome) Message {
	r := o.Request
	subject := "Guest suite availability request"
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s (id %s)\n", r.MemberName, r.MemberID)
	fmt.Fprintf(&b, "Requested: %s\n", PrettyRange(r.Range()))
	fmt.Fprintf(&b, "Nights: %d\n", r.Range().Nights())
	if o.Status != "" {
		fmt.Fprintf(&b, "Result: %s\n", o.Status)
	}
	if o.Message != "" {
		fmt.Fprintf(&b, "Reason: %s\n", o.Message)
	}
	if o.Notice != "" {
		fmt.Fprintf(&b, "Note: %s\n", o.Notice)
	}
	if o.Alternative != nil {
		fmt.Fprintf(&b, "Nearest alternative: %s\n", PrettyRange(*o.Alternative))
	}
	if len(o.FreeSegments) > 0 {
		b.WriteString("Free parts of the request:\n")
		for _, seg := range o.FreeSegments {
			fmt.Fprintf(&b, "  - %s (%d nights)\n", PrettyRange(seg), seg.Nights())
		}
	}
	b.WriteString("\nPlease confirm if available. Thank you!\n")
	if c.BaseURL != "" {
		payload := EncodePayload(PayloadFor(r))
		fmt.Fprintf(&b, "\nApprove: %s\nReject: %s\n", c.link("approve", payload), c.link("reject", payload))
	}
	body := b.String()
	return Message{Subject: subject, Body: body, Mailto: MailtoURL(c.AdminEmail, subject, body)}
}

func (c *Composer) link(action, payload string) string {
	return c.BaseURL + "/admin?" + action + "=" + url.QueryEscape(payload)
}

// PrettyRange shows the first and the last night, not the checkout day.
func PrettyRange(r calendar.Range) string {
	if !r.Valid() {
		return r.Start.Display()
	}
	return r.Start.Time().Format("2 Jan 2006") + " → " + r.End.AddDays(-1).Time().Format("2 Jan 2006")
}

// MailtoURL builds a mailto: link with an encoded subject and body.
func MailtoURL(to, subject, body string) string {
	return "mailto:" + escape(to) + "?subject=" + escape(subject) + "&body=" + escape(body)
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
