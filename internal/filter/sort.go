package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ecoba/alumni-backend/internal/types"
)

// SortState tracks the single active sort column. Selecting a new
// column resets the direction to descending; re-selecting the active
// column toggles it.
type SortState struct {
	Field     types.SortField
	Direction types.SortDirection
}

func DefaultSortState() SortState {
	return SortState{Field: types.SortByConfidence, Direction: types.SortDesc}
}

func (s SortState) Toggle(field types.SortField) SortState {
	if s.Field == field {
		if s.Direction == types.SortAsc {
			return SortState{Field: field, Direction: types.SortDesc}
		}
		return SortState{Field: field, Direction: types.SortAsc}
	}
	return SortState{Field: field, Direction: types.SortDesc}
}

// Sort returns a sorted copy. Records with no value in the active
// field always sort after all records that have one, in both
// directions. The sort is stable so equal keys keep their incoming
// order.
func Sort(records []*types.AlumniRecord, field types.SortField, direction types.SortDirection) []*types.AlumniRecord {
	out := make([]*types.AlumniRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j], field, direction)
	})
	return out
}

func less(a, b *types.AlumniRecord, field types.SortField, direction types.SortDirection) bool {
	aVal, aOK := sortKey(a, field)
	bVal, bOK := sortKey(b, field)

	// Nulls last regardless of direction.
	if !aOK && !bOK {
		return false
	}
	if !aOK {
		return false
	}
	if !bOK {
		return true
	}

	if aVal == bVal {
		return false
	}
	if direction == types.SortAsc {
		return aVal < bVal
	}
	return aVal > bVal
}

// sortKey renders the active field as a comparable string. Confidence
// and dates are zero-padded so lexicographic order matches natural
// order.
func sortKey(r *types.AlumniRecord, field types.SortField) (string, bool) {
	if r == nil {
		return "", false
	}
	switch field {
	case types.SortByName:
		return strings.ToLower(r.FullName), r.FullName != ""
	case types.SortByConfidence:
		return padNumber(r.ConfidenceScore), true
	case types.SortByDateFound:
		if r.DateFound.IsZero() {
			return "", false
		}
		return r.DateFound.UTC().Format("20060102150405.000000000"), true
	case types.SortByYear:
		if r.GraduationYear == nil || strings.TrimSpace(*r.GraduationYear) == "" {
			return "", false
		}
		return strings.TrimSpace(*r.GraduationYear), true
	default:
		return "", false
	}
}

// padNumber zero-pads a confidence score so lexicographic comparison
// matches numeric comparison on the [0,100] range.
func padNumber(n int) string {
	return fmt.Sprintf("%03d", n)
}

func sortStrings(s []string) {
	sort.Strings(s)
}
