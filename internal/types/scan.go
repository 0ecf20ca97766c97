package types

// ClassifiedProfile is one candidate the pipeline accepted, in the wire
// shape of the scan response. Field names stay snake_case; the store
// adapter maps them onto AlumniRecord.
type ClassifiedProfile struct {
	FullName          string       `json:"full_name"`
	Status            AlumniStatus `json:"status"`
	GraduationYear    *string      `json:"graduation_year"`
	Occupation        *string      `json:"occupation"`
	Company           *string      `json:"company"`
	PublicEmail       *string      `json:"public_email"`
	PublicPhone       *string      `json:"public_phone"`
	Platform          Platform     `json:"platform"`
	ProfileURL        string       `json:"profile_url"`
	Location          *string      `json:"location"`
	ConfidenceScore   int          `json:"confidence_score"`
	SourceAttribution string       `json:"source_attribution"`
	MatchedKeywords   []string     `json:"matched_keywords"`
	Bio               *string      `json:"bio"`
}

// Record converts an accepted candidate into its persisted form.
func (p ClassifiedProfile) Record() *AlumniRecord {
	keywords := p.MatchedKeywords
	if keywords == nil {
		keywords = []string{}
	}
	return &AlumniRecord{
		FullName:          p.FullName,
		Status:            p.Status,
		GraduationYear:    p.GraduationYear,
		Occupation:        p.Occupation,
		Company:           p.Company,
		PublicEmail:       p.PublicEmail,
		PublicPhone:       p.PublicPhone,
		Platform:          p.Platform,
		ProfileURL:        p.ProfileURL,
		Location:          p.Location,
		ConfidenceScore:   ClampConfidence(p.ConfidenceScore),
		SourceAttribution: p.SourceAttribution,
		MatchedKeywords:   keywords,
		Bio:               p.Bio,
	}
}

// ScanResult is what a completed scan reports back to the operator.
type ScanResult struct {
	Profiles   []ClassifiedProfile `json:"profiles"`
	Message    string              `json:"message"`
	NewRecords int                 `json:"new_records"`
}
