package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// ParseMembers reads a member list from a JSON array or from CSV with an
// optional "id,name" header.  Rows with a bad id or an empty name are
// dropped; the first occurrence of an id wins.
func ParseMembers(data []byte) ([]model.Member, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 {
		return nil, invalid("file", "empty member file")
	}

	var raw []rawMember
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, invalid("file", "invalid JSON: "+err.Error())
		}
	} else {
		rows, err := readCSV(trimmed)
		if err != nil {
			return nil, invalid("file", "invalid CSV: "+err.Error())
		}
		raw = rows
	}

	out := make([]model.Member, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		id, ok := model.NormalizeMemberID(string(r.ID))
		name := strings.TrimSpace(r.Name)
		if !ok || name == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, model.Member{ID: id, Name: name})
	}
	if len(out) == 0 {
		return nil, invalid("file", "no valid members found")
	}
	return out, nil
}

// rawMember accepts ids written as JSON strings or numbers.
type rawMember struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
}

type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func readCSV(data []byte) ([]rawMember, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var out []rawMember
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		if len(rec) == 0 {
			continue
		}
		// Unquoted commas in a name split it across fields; join them back.
		out = append(out, rawMember{ID: flexString(rec[0]), Name: strings.Join(rec[1:], ",")})
	}
	return out, nil
}

func isHeader(rec []string) bool {
	line := strings.ToLower(strings.Join(rec, ","))
	return strings.Contains(line, "id") && strings.Contains(line, "name")
}

// WriteMembersCSV writes an "id,name" header and one row per member with
// RFC 4180 quoting.
func WriteMembersCSV(w io.Writer, members []model.Member) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name"}); err != nil {
		return err
	}
	for _, m := range members {
		if err := cw.Write([]string{m.ID, m.Name}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
