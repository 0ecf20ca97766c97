package types

// Default year range shown by the dashboard slider. Part of the
// active-filter-count contract: a narrower range counts as an active
// filter.
const (
	DefaultYearFrom = 1970
	DefaultYearTo   = 2024
)

type ApprovalFilter string

const (
	ApprovalAll      ApprovalFilter = "all"
	ApprovalApproved ApprovalFilter = "approved"
	ApprovalPending  ApprovalFilter = "pending"
)

// FilterState is the ephemeral dashboard filter selection. Zero values
// other than DefaultFilterState are not meaningful; build from
// DefaultFilterState and mutate.
type FilterState struct {
	YearRange      [2]int         `json:"year_range"`
	Locations      []string       `json:"locations"`
	Platforms      []Platform     `json:"platforms"`
	MinConfidence  int            `json:"min_confidence"`
	Status         []AlumniStatus `json:"status"`
	ApprovalStatus ApprovalFilter `json:"approval_status"`
	SearchQuery    string         `json:"search_query"`
}

func DefaultFilterState() FilterState {
	return FilterState{
		YearRange:      [2]int{DefaultYearFrom, DefaultYearTo},
		ApprovalStatus: ApprovalAll,
	}
}

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// DashboardStats is derived from the full unfiltered record set.
type DashboardStats struct {
	TotalRecords      int              `json:"total_records"`
	ConfirmedCount    int              `json:"confirmed_count"`
	ProbableCount     int              `json:"probable_count"`
	PendingReview     int              `json:"pending_review"`
	PlatformBreakdown map[Platform]int `json:"platform_breakdown"`
	TopLocations      []LocationCount  `json:"top_locations"`
	RecentFindings    int              `json:"recent_findings"`
}

type SortField string

const (
	SortByName       SortField = "fullName"
	SortByConfidence SortField = "confidenceScore"
	SortByDateFound  SortField = "dateFound"
	SortByYear       SortField = "graduationYear"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)
