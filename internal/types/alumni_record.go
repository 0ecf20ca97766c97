package types

import (
	"time"

	"github.com/google/uuid"
)

type AlumniStatus string

const (
	StatusConfirmed AlumniStatus = "Confirmed"
	StatusProbable  AlumniStatus = "Probable"
	StatusUncertain AlumniStatus = "Uncertain"
)

func (s AlumniStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusProbable, StatusUncertain:
		return true
	}
	return false
}

type Platform string

const (
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformFacebook  Platform = "Facebook"
	PlatformTwitter   Platform = "Twitter"
	PlatformInstagram Platform = "Instagram"
	PlatformWeb       Platform = "Web"
	PlatformNews      Platform = "News"
)

// AllPlatforms is the scan fan-out order. Dedup keeps the first
// occurrence of a URL, so this order is part of pipeline behavior.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformLinkedIn,
		PlatformFacebook,
		PlatformTwitter,
		PlatformInstagram,
		PlatformWeb,
		PlatformNews,
	}
}

func ParsePlatform(s string) (Platform, bool) {
	switch Platform(s) {
	case PlatformLinkedIn, PlatformFacebook, PlatformTwitter, PlatformInstagram, PlatformWeb, PlatformNews:
		return Platform(s), true
	}
	return "", false
}

// AlumniRecord is the canonical persisted candidate record. Created only
// by the discovery pipeline; the approval flag is the only field an
// operator mutates afterwards.
type AlumniRecord struct {
	ID                uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FullName          string       `gorm:"column:full_name;not null" json:"full_name"`
	Status            AlumniStatus `gorm:"column:status;not null;default:'Uncertain'" json:"status"`
	GraduationYear    *string      `gorm:"column:graduation_year" json:"graduation_year"`
	Occupation        *string      `gorm:"column:occupation" json:"occupation"`
	Company           *string      `gorm:"column:company" json:"company"`
	PublicEmail       *string      `gorm:"column:public_email" json:"public_email"`
	PublicPhone       *string      `gorm:"column:public_phone" json:"public_phone"`
	Platform          Platform     `gorm:"column:platform;not null" json:"platform"`
	ProfileURL        string       `gorm:"column:profile_url;not null;uniqueIndex" json:"profile_url"`
	Location          *string      `gorm:"column:location" json:"location"`
	ConfidenceScore   int          `gorm:"column:confidence_score;not null" json:"confidence_score"`
	DateFound         time.Time    `gorm:"column:date_found;not null;default:now()" json:"date_found"`
	IsApproved        bool         `gorm:"column:is_approved;not null;default:false" json:"is_approved"`
	SourceAttribution string       `gorm:"column:source_attribution" json:"source_attribution"`
	MatchedKeywords   []string     `gorm:"column:matched_keywords;serializer:json" json:"matched_keywords"`
	Bio               *string      `gorm:"column:bio" json:"bio"`
	CreatedAt         time.Time    `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:now()" json:"updated_at"`
}

func (AlumniRecord) TableName() string { return "alumni_record" }

// ClampConfidence forces a classifier score into the documented [0,100]
// range before the record is persisted.
func ClampConfidence(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
