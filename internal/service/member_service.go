package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
	"github.com/iliyamo/guest-suite-booking/internal/queue"
	"github.com/iliyamo/guest-suite-booking/internal/repository"
	"github.com/iliyamo/guest-suite-booking/internal/rules"
)

// MaxSuggestions caps the member autocomplete.
const MaxSuggestions = 4

// MemberService manages the member list.
type MemberService struct{ *core }

// MemberView is a member with the latest block of nights they booked.
type MemberView struct {
	model.Member
	LastVacation *calendar.Range `json:"last_vacation,omitempty"`
}

// List returns every member ordered by id, each with their last vacation.
func (s *MemberService) List(ctx context.Context) ([]MemberView, error) {
	members, err := s.store.LoadMembers(ctx)
	if err != nil {
		return nil, storeErr("load members", err)
	}
	bookings, err := s.store.LoadBookings(ctx)
	if err != nil {
		return nil, storeErr("load bookings", err)
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	out := make([]MemberView, 0, len(members))
	for _, m := range members {
		v := MemberView{Member: m}
		if r, ok := rules.LastVacation(bookings, m.ID); ok {
			v.LastVacation = &r
		}
		out = append(out, v)
	}
	return out, nil
}

// Add inserts a new member.  The id is normalized to three digits and must
// not already exist.
func (s *MemberService) Add(ctx context.Context, rawID, name string) (model.Member, error) {
	id, ok := model.NormalizeMemberID(rawID)
	if !ok {
		return model.Member{}, invalid("id", "member id must be 1 to 3 digits")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Member{}, invalid("name", "name is required")
	}
	m := model.Member{ID: id, Name: name}

	s.mu.Lock()
	err := s.updateMembers(ctx, func(list []model.Member) ([]model.Member, error) {
		for _, x := range list {
			if x.ID == id {
				return nil, fmt.Errorf("member %s: %w", id, repository.ErrDuplicate)
			}
		}
		return append(list, m), nil
	})
	s.mu.Unlock()
	if err != nil {
		return model.Member{}, err
	}
	s.logger.Info("member added", "member_id", id)
	return m, nil
}

// Delete removes a member.  Their bookings stay; MemberName on each booking
// keeps them readable.
func (s *MemberService) Delete(ctx context.Context, rawID string) error {
	id, ok := model.NormalizeMemberID(rawID)
	if !ok {
		return invalid("id", "member id must be 1 to 3 digits")
	}
	s.mu.Lock()
	err := s.updateMembers(ctx, func(list []model.Member) ([]model.Member, error) {
		out := make([]model.Member, 0, len(list))
		for _, m := range list {
			if m.ID != id {
				out = append(out, m)
			}
		}
		if len(out) == len(list) {
			return nil, fmt.Errorf("member %s: %w", id, repository.ErrNotFound)
		}
		return out, nil
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Info("member deleted", "member_id", id)
	return nil
}

// Replace swaps the whole member list, as an import does.
func (s *MemberService) Replace(ctx context.Context, members []model.Member) (int, error) {
	s.mu.Lock()
	err := s.store.SaveMembers(ctx, members)
	s.mu.Unlock()
	if err != nil {
		return 0, storeErr("save members", err)
	}
	s.logger.Info("members replaced", "count", len(members))
	s.afterWrite(ctx, queue.BookingEvent{Type: queue.EventMembersReplaced, Actor: "admin", Note: fmt.Sprintf("%d members", len(members))})
	return len(members), nil
}

// Import parses a CSV or JSON member file and replaces the list with it.
func (s *MemberService) Import(ctx context.Context, data []byte) (int, error) {
	members, err := ParseMembers(data)
	if err != nil {
		return 0, err
	}
	return s.Replace(ctx, members)
}

// ExportCSV writes the member list ordered by id.
func (s *MemberService) ExportCSV(ctx context.Context, w io.Writer) error {
	members, err := s.store.LoadMembers(ctx)
	if err != nil {
		return storeErr("load members", err)
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return WriteMembersCSV(w, members)
}

// Suggest ranks members for an autocomplete query: name prefix first, then
// id prefix, then name substring, then id substring.  Ties sort by name.
func (s *MemberService) Suggest(ctx context.Context, query string) ([]model.Member, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Member{}, nil
	}
	members, err := s.store.LoadMembers(ctx)
	if err != nil {
		return nil, storeErr("load members", err)
	}
	return RankMembers(members, query, MaxSuggestions), nil
}

// RankMembers filters and orders members for query, returning at most max.
func RankMembers(members []model.Member, query string, max int) []model.Member {
	q := strings.ToLower(query)
	type scored struct {
		m     model.Member
		score int
	}
	var hits []scored
	for _, m := range members {
		name := strings.ToLower(m.Name)
		if !strings.Contains(m.ID, query) && !strings.Contains(name, q) {
			continue
		}
		score := 3
		switch {
		case strings.HasPrefix(name, q):
			score = 0
		case strings.HasPrefix(m.ID, query):
			score = 1
		case strings.Contains(name, q):
			score = 2
		}
		hits = append(hits, scored{m, score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score < hits[j].score
		}
		return hits[i].m.Name < hits[j].m.Name
	})
	if len(hits) > max {
		hits = hits[:max]
	}
	out := make([]model.Member, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.m)
	}
	return out
}

func (s *MemberService) updateMembers(ctx context.Context, fn func([]model.Member) ([]model.Member, error)) error {
	list, err := s.store.LoadMembers(ctx)
	if err != nil {
		return storeErr("load members", err)
	}
	next, err := fn(list)
	if err != nil {
		return err
	}
	if err := s.store.SaveMembers(ctx, next); err != nil {
		return storeErr("save members", err)
	}
	return nil
}
