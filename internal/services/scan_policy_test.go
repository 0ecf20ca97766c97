package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadScanPolicyDefaultsWithoutPath(t *testing.T) {
	t.Setenv("SCAN_POLICY_PATH", "")

	policy, err := LoadScanPolicy(testLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy.InstitutionName != "Edo College" {
		t.Fatalf("institution: want=%q got=%q", "Edo College", policy.InstitutionName)
	}
	if policy.MinConfidence != 30 || policy.ProbableThreshold != 60 || policy.ConfirmedThreshold != 85 {
		t.Fatalf("thresholds: want 30/60/85 got %d/%d/%d",
			policy.MinConfidence, policy.ProbableThreshold, policy.ConfirmedThreshold)
	}
}

func TestLoadScanPolicyOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	yaml := `
institution_name: "Kings College"
aliases: ["KC Old Boys"]
min_confidence: 40
probable_threshold: 65
confirmed_threshold: 90
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	t.Setenv("SCAN_POLICY_PATH", path)

	policy, err := LoadScanPolicy(testLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy.InstitutionName != "Kings College" {
		t.Fatalf("institution: want=%q got=%q", "Kings College", policy.InstitutionName)
	}
	if policy.MinConfidence != 40 {
		t.Fatalf("min confidence: want=40 got=%d", policy.MinConfidence)
	}
	// Fields the file does not mention keep their defaults.
	if policy.ResultLimit != 10 {
		t.Fatalf("result limit default: want=10 got=%d", policy.ResultLimit)
	}
}

func TestLoadScanPolicyRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("min_confidence: 400\n"), 0o600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	t.Setenv("SCAN_POLICY_PATH", path)

	if _, err := LoadScanPolicy(testLogger(t)); err == nil {
		t.Fatalf("want error for confidence outside [0,100]")
	}
}
