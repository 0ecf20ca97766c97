package services

import "testing"

type extractTarget struct {
	IsAlumni        bool `json:"is_alumni"`
	ConfidenceScore int  `json:"confidence_score"`
}

func TestExtractJSONObjectBare(t *testing.T) {
	var got extractTarget
	err := ExtractJSONObject(`{"is_alumni": true, "confidence_score": 85}`, &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsAlumni || got.ConfidenceScore != 85 {
		t.Fatalf("decoded: want {true 85} got %+v", got)
	}
}

func TestExtractJSONObjectFenced(t *testing.T) {
	input := "```json\n{\"is_alumni\": true, \"confidence_score\": 70}\n```"

	var got extractTarget
	if err := ExtractJSONObject(input, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ConfidenceScore != 70 {
		t.Fatalf("confidence: want=70 got=%d", got.ConfidenceScore)
	}
}

func TestExtractJSONObjectFencedNoLanguageTag(t *testing.T) {
	input := "```\n{\"is_alumni\": false, \"confidence_score\": 10}\n```"

	var got extractTarget
	if err := ExtractJSONObject(input, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsAlumni {
		t.Fatalf("is_alumni: want=false got=true")
	}
}

func TestExtractJSONObjectSurroundedByProse(t *testing.T) {
	input := `Here is my analysis of the page:
{"is_alumni": true, "confidence_score": 92}
Let me know if you need anything else.`

	var got extractTarget
	if err := ExtractJSONObject(input, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ConfidenceScore != 92 {
		t.Fatalf("confidence: want=92 got=%d", got.ConfidenceScore)
	}
}

func TestExtractJSONObjectNoObject(t *testing.T) {
	var got extractTarget
	if err := ExtractJSONObject("I could not determine anything useful.", &got); err == nil {
		t.Fatalf("want error for output with no JSON object")
	}
}

func TestExtractJSONObjectEmpty(t *testing.T) {
	var got extractTarget
	if err := ExtractJSONObject("   ", &got); err == nil {
		t.Fatalf("want error for empty output")
	}
}

func TestExtractJSONObjectMalformed(t *testing.T) {
	var got extractTarget
	if err := ExtractJSONObject(`{"is_alumni": tru`, &got); err == nil {
		t.Fatalf("want error for malformed JSON")
	}
}
