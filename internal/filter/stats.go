package filter

import (
	"sort"
	"time"

	"github.com/ecoba/alumni-backend/internal/types"
)

// TopLocationLimit caps the top-locations list.
const TopLocationLimit = 10

const recentWindow = 7 * 24 * time.Hour

// Stats derives the dashboard summary from the full unfiltered record
// set. "now" is a parameter so the trailing recency window is
// deterministic under test.
func Stats(records []*types.AlumniRecord, now time.Time) types.DashboardStats {
	stats := types.DashboardStats{
		TotalRecords:      len(records),
		PlatformBreakdown: make(map[types.Platform]int),
		TopLocations:      []types.LocationCount{},
	}

	locationCounts := make(map[string]int)
	locationOrder := make([]string, 0)
	weekAgo := now.Add(-recentWindow)

	for _, r := range records {
		if r == nil {
			stats.TotalRecords--
			continue
		}
		switch r.Status {
		case types.StatusConfirmed:
			stats.ConfirmedCount++
		case types.StatusProbable:
			stats.ProbableCount++
		}
		if !r.IsApproved {
			stats.PendingReview++
		}
		stats.PlatformBreakdown[r.Platform]++

		if r.Location != nil && *r.Location != "" {
			if _, seen := locationCounts[*r.Location]; !seen {
				locationOrder = append(locationOrder, *r.Location)
			}
			locationCounts[*r.Location]++
		}

		if !r.DateFound.Before(weekAgo) {
			stats.RecentFindings++
		}
	}

	// Descending by count; ties keep first-encountered order.
	top := make([]types.LocationCount, 0, len(locationOrder))
	for _, loc := range locationOrder {
		top = append(top, types.LocationCount{Location: loc, Count: locationCounts[loc]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if len(top) > TopLocationLimit {
		top = top[:TopLocationLimit]
	}
	stats.TopLocations = top

	return stats
}
