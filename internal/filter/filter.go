// Package filter derives the visible record subset and dashboard
// statistics from the full in-memory record set. Every function is
// pure: same inputs, same outputs, no hidden state.
package filter

import (
	"strconv"
	"strings"

	"github.com/ecoba/alumni-backend/internal/types"
)

// Apply returns the records passing every active filter clause. The
// input slice is never mutated.
func Apply(records []*types.AlumniRecord, state types.FilterState) []*types.AlumniRecord {
	out := make([]*types.AlumniRecord, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if Matches(r, state) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether one record passes the filter. All clauses
// are ANDed; a record with no graduation year passes the year clause.
func Matches(r *types.AlumniRecord, state types.FilterState) bool {
	if q := strings.TrimSpace(state.SearchQuery); q != "" {
		query := strings.ToLower(q)
		fields := make([]string, 0, 4)
		fields = append(fields, r.FullName)
		if r.Company != nil {
			fields = append(fields, *r.Company)
		}
		if r.Location != nil {
			fields = append(fields, *r.Location)
		}
		if r.Occupation != nil {
			fields = append(fields, *r.Occupation)
		}
		if !strings.Contains(strings.ToLower(strings.Join(fields, " ")), query) {
			return false
		}
	}

	if r.GraduationYear != nil {
		if year, err := strconv.Atoi(strings.TrimSpace(*r.GraduationYear)); err == nil {
			if year < state.YearRange[0] || year > state.YearRange[1] {
				return false
			}
		}
	}

	if len(state.Platforms) > 0 && !containsPlatform(state.Platforms, r.Platform) {
		return false
	}

	if len(state.Status) > 0 && !containsStatus(state.Status, r.Status) {
		return false
	}

	if r.ConfidenceScore < state.MinConfidence {
		return false
	}

	switch state.ApprovalStatus {
	case types.ApprovalApproved:
		if !r.IsApproved {
			return false
		}
	case types.ApprovalPending:
		if r.IsApproved {
			return false
		}
	}

	return true
}

// ActiveFilterCount is the number of dimensions differing from their
// defaults. Display-only; never consulted by Matches.
func ActiveFilterCount(state types.FilterState) int {
	count := 0
	if len(state.Platforms) > 0 {
		count++
	}
	if len(state.Status) > 0 {
		count++
	}
	if state.MinConfidence > 0 {
		count++
	}
	if state.ApprovalStatus != "" && state.ApprovalStatus != types.ApprovalAll {
		count++
	}
	if state.YearRange[0] > types.DefaultYearFrom || state.YearRange[1] < types.DefaultYearTo {
		count++
	}
	return count
}

// AvailableLocations returns the sorted distinct non-null locations,
// for populating the location filter control.
func AvailableLocations(records []*types.AlumniRecord) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range records {
		if r == nil || r.Location == nil {
			continue
		}
		loc := *r.Location
		if loc == "" || seen[loc] {
			continue
		}
		seen[loc] = true
		out = append(out, loc)
	}
	sortStrings(out)
	return out
}

func containsPlatform(set []types.Platform, p types.Platform) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

func containsStatus(set []types.AlumniStatus, s types.AlumniStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
