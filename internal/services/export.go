package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ecoba/alumni-backend/internal/types"
)

// exportHeader is the column layout the dashboard has always exported;
// order is part of the contract with downstream spreadsheets.
var exportHeader = []string{
	"Full Name",
	"Status",
	"Graduation Year",
	"Occupation",
	"Company",
	"Public Email",
	"Public Phone",
	"Platform",
	"Profile URL",
	"Location",
	"Confidence Score",
	"Date Found",
	"Approved",
	"Source Attribution",
	"Matched Keywords",
	"Bio",
}

// utf8BOM makes Excel detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportCSV renders records as UTF-8 CSV with a byte-order mark.
// Quoting follows standard CSV rules via encoding/csv.
func ExportCSV(records []*types.AlumniRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range records {
		if r == nil {
			continue
		}
		row := []string{
			r.FullName,
			string(r.Status),
			derefOr(r.GraduationYear, ""),
			derefOr(r.Occupation, ""),
			derefOr(r.Company, ""),
			derefOr(r.PublicEmail, ""),
			derefOr(r.PublicPhone, ""),
			string(r.Platform),
			r.ProfileURL,
			derefOr(r.Location, ""),
			strconv.Itoa(r.ConfidenceScore),
			r.DateFound.UTC().Format("2006-01-02"),
			yesNo(r.IsApproved),
			r.SourceAttribution,
			strings.Join(r.MatchedKeywords, "; "),
			derefOr(r.Bio, ""),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename is the attachment name for a CSV exported "now".
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("ecoba-alumni-data-%s.csv", now.UTC().Format("2006-01-02"))
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
