package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ecoba/alumni-backend/internal/logger"
	"github.com/ecoba/alumni-backend/internal/types"
)

// ScanPolicy holds the policy constants of the discovery pipeline:
// which institution is targeted, the acceptance threshold, and the
// per-platform search restrictions. Defaults reproduce the documented
// behavior (accept at 30, Probable at 60, Confirmed at 85); an optional
// YAML file overrides them per deployment.
type ScanPolicy struct {
	InstitutionName    string            `yaml:"institution_name"`
	Aliases            []string          `yaml:"aliases"`
	ExtraKeywords      []string          `yaml:"extra_keywords"`
	MinConfidence      int               `yaml:"min_confidence"`
	ProbableThreshold  int               `yaml:"probable_threshold"`
	ConfirmedThreshold int               `yaml:"confirmed_threshold"`
	ResultLimit        int               `yaml:"result_limit"`
	MinContentLength   int               `yaml:"min_content_length"`
	NewsDomains        []string          `yaml:"news_domains"`
	PlatformSites      map[string]string `yaml:"platform_sites"`
}

func DefaultScanPolicy() ScanPolicy {
	return ScanPolicy{
		InstitutionName:    "Edo College",
		Aliases:            []string{"ECOBA", "Edo College Old Boys"},
		ExtraKeywords:      []string{"Benin City", "Class of", "Old Boys", "alumni"},
		MinConfidence:      30,
		ProbableThreshold:  60,
		ConfirmedThreshold: 85,
		ResultLimit:        10,
		MinContentLength:   50,
		NewsDomains:        []string{"guardian.ng", "punchng.com", "vanguardngr.com"},
		PlatformSites: map[string]string{
			string(types.PlatformLinkedIn):  "linkedin.com",
			string(types.PlatformFacebook):  "facebook.com",
			string(types.PlatformTwitter):   "twitter.com",
			string(types.PlatformInstagram): "instagram.com",
		},
	}
}

// LoadScanPolicy reads SCAN_POLICY_PATH if set and overlays it on the
// defaults. A missing env var is the common case and not an error.
func LoadScanPolicy(log *logger.Logger) (ScanPolicy, error) {
	policy := DefaultScanPolicy()

	path := strings.TrimSpace(os.Getenv("SCAN_POLICY_PATH"))
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read scan policy %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return policy, fmt.Errorf("parse scan policy %q: %w", path, err)
	}
	if err := policy.Validate(); err != nil {
		return policy, fmt.Errorf("invalid scan policy %q: %w", path, err)
	}
	if log != nil {
		log.Info("Loaded scan policy", "path", path, "min_confidence", policy.MinConfidence)
	}
	return policy, nil
}

func (p ScanPolicy) Validate() error {
	if strings.TrimSpace(p.InstitutionName) == "" {
		return fmt.Errorf("institution_name is required")
	}
	if p.MinConfidence < 0 || p.MinConfidence > 100 {
		return fmt.Errorf("min_confidence must be in [0,100], got %d", p.MinConfidence)
	}
	if p.ProbableThreshold < p.MinConfidence || p.ConfirmedThreshold < p.ProbableThreshold {
		return fmt.Errorf("thresholds must be ordered: min=%d probable=%d confirmed=%d",
			p.MinConfidence, p.ProbableThreshold, p.ConfirmedThreshold)
	}
	if p.ResultLimit <= 0 {
		return fmt.Errorf("result_limit must be positive")
	}
	return nil
}

// KeywordClause renders the institutional OR-clause prepended to every
// sub-query, e.g. `"Edo College" OR "ECOBA" OR "Edo College Old Boys"`.
func (p ScanPolicy) KeywordClause() string {
	terms := append([]string{p.InstitutionName}, p.Aliases...)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " OR ")
}

// SiteFor returns the site restriction for a platform, if one is
// configured. Web and News have none; News fans out over NewsDomains
// instead.
func (p ScanPolicy) SiteFor(platform types.Platform) (string, bool) {
	site, ok := p.PlatformSites[string(platform)]
	if !ok || strings.TrimSpace(site) == "" {
		return "", false
	}
	return site, true
}
