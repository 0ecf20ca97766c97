package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/ecoba/alumni-backend/internal/logger"
	"github.com/ecoba/alumni-backend/internal/types"
)

// Classification is the structured verdict extracted from one search
// result. Confidence is clamped by the caller before persistence.
type Classification struct {
	IsAlumni        bool
	FullName        string
	GraduationYear  *string
	Occupation      *string
	Company         *string
	Location        *string
	Bio             *string
	ConfidenceScore int
	MatchedKeywords []string
	Status          types.AlumniStatus
}

// Classifier turns an unstructured content blob into a Classification.
// Implemented over the AI client; faked in pipeline tests.
type Classifier interface {
	Classify(ctx context.Context, sourceURL string, content string) (*Classification, error)
}

type llmClassifier struct {
	log    *logger.Logger
	ai     AIClient
	policy ScanPolicy
}

func NewLLMClassifier(log *logger.Logger, ai AIClient, policy ScanPolicy) Classifier {
	return &llmClassifier{
		log:    log.With("service", "LLMClassifier"),
		ai:     ai,
		policy: policy,
	}
}

// looseString tolerates the model returning a number where a string is
// asked for (graduation years in particular).
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = looseString(num.String())
		return nil
	}
	return fmt.Errorf("expected string or number, got %s", raw)
}

func (s looseString) ptr() *string {
	v := strings.TrimSpace(string(s))
	if v == "" {
		return nil
	}
	return &v
}

// classifierOutput mirrors the JSON object the system prompt demands.
type classifierOutput struct {
	IsAlumni        bool        `json:"is_alumni"`
	FullName        looseString `json:"full_name"`
	GraduationYear  looseString `json:"graduation_year"`
	Occupation      looseString `json:"occupation"`
	Company         looseString `json:"company"`
	Location        looseString `json:"location"`
	Bio             looseString `json:"bio"`
	ConfidenceScore float64     `json:"confidence_score"`
	MatchedKeywords []string    `json:"matched_keywords"`
	Status          looseString `json:"status"`
}

func (c *llmClassifier) systemPrompt() string {
	p := c.policy
	aliases := strings.Join(p.Aliases, ", ")
	keywords := strings.Join(append([]string{p.InstitutionName}, append(p.Aliases, p.ExtraKeywords...)...), ", ")

	return fmt.Sprintf(`You are an AI that extracts alumni information from web content.
You are looking for alumni of %s (also known as: %s).

Analyze the content and determine if this person attended %s.

Keywords to match: %s.

Return a JSON object with these fields:
- is_alumni: boolean (true if likely an alumnus of %s)
- full_name: string
- graduation_year: string or null (e.g., "1995")
- occupation: string or null
- company: string or null
- location: string or null
- bio: string or null (brief description)
- confidence_score: number (0-100, how confident the match is)
- matched_keywords: array of strings (which keywords matched)
- status: "Confirmed" (confidence %d+) | "Probable" (confidence %d+) | "Uncertain"

Only return the JSON object, no other text.`,
		p.InstitutionName, aliases, p.InstitutionName, keywords, p.InstitutionName,
		p.ConfirmedThreshold, p.ProbableThreshold)
}

func (c *llmClassifier) Classify(ctx context.Context, sourceURL string, content string) (*Classification, error) {
	const maxContentChars = 4000
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	user := fmt.Sprintf("Analyze this content from %s:\n\n%s", sourceURL, content)

	raw, err := c.ai.ChatComplete(ctx, c.systemPrompt(), user)
	if err != nil {
		return nil, err
	}

	var out classifierOutput
	if err := ExtractJSONObject(raw, &out); err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(string(out.FullName))
	if fullName == "" {
		fullName = "Unknown"
	}

	status, ok := types.AlumniStatus(strings.TrimSpace(string(out.Status))), true
	if !status.Valid() {
		status, ok = types.StatusUncertain, false
	}
	if !ok {
		c.log.Debug("Classifier returned unknown status, defaulting to Uncertain", "url", sourceURL, "status", string(out.Status))
	}

	return &Classification{
		IsAlumni:        out.IsAlumni,
		FullName:        fullName,
		GraduationYear:  out.GraduationYear.ptr(),
		Occupation:      out.Occupation.ptr(),
		Company:         out.Company.ptr(),
		Location:        out.Location.ptr(),
		Bio:             out.Bio.ptr(),
		ConfidenceScore: int(math.Round(out.ConfidenceScore)),
		MatchedKeywords: out.MatchedKeywords,
		Status:          status,
	}, nil
}
