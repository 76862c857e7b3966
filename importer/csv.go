// ABOUTME: CSV reader for contact imports
// ABOUTME: Maps header columns to contact records; name is the only required column
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harperreed/rapport/models"
)

// Record is one contact row with the line it came from.
type Record struct {
	Line  int
	Input models.ContactInput
}

var columnAliases = map[string]string{
	"name":              "name",
	"full name":         "name",
	"email":             "email",
	"e-mail":            "email",
	"phone":             "phone",
	"relationship":      "relationship",
	"relationship_type": "relationship",
	"birthday":          "birthday",
}

// ReadCSV parses a header row followed by contact rows. Unknown columns
// are ignored. Blank rows are skipped. A birthday that is not YYYY-MM-DD
// fails the whole read with the offending line.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		if name, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[name] = i
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("missing name column in header %q", strings.Join(header, ","))
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)

		field := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		in := models.ContactInput{
			Name:             field("name"),
			Email:            field("email"),
			Phone:            field("phone"),
			RelationshipType: field("relationship"),
		}
		if b := field("birthday"); b != "" {
			t, err := time.Parse("2006-01-02", b)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid birthday %q (use YYYY-MM-DD)", line, b)
			}
			in.Birthday = &t
		}
		if in == (models.ContactInput{}) {
			continue
		}
		records = append(records, Record{Line: line, Input: in})
	}
	return records, nil
}
