package services

import (
	"encoding/json"
	"testing"
)

func TestBuildQuestionRecordsReviewThreshold(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		wantReview bool
	}{
		{"well below threshold", 0.5, true},
		{"just below threshold", 0.89, true},
		{"exactly at threshold", 0.9, false},
		{"above threshold", 0.95, false},
		{"full confidence", 1.0, false},
		{"zero confidence", 0.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := BuildQuestionRecords(1, map[string]any{
				"questions": []any{
					map[string]any{
						"question_number": float64(1),
						"text":            "Q",
						"answer_type":     "single",
						"confidence":      tt.confidence,
					},
				},
			})
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}
			if records[0].RequiresReview != tt.wantReview {
				t.Fatalf("confidence %v: RequiresReview = %v, want %v",
					tt.confidence, records[0].RequiresReview, tt.wantReview)
			}
		})
	}
}

func TestBuildQuestionRecordsMissingQuestionsKey(t *testing.T) {
	for _, payload := range []map[string]any{
		{},
		{"questions": "not a list"},
		{"questions": nil},
		{"questions": map[string]any{"oops": true}},
	} {
		records := BuildQuestionRecords(1, payload)
		if len(records) != 0 {
			t.Fatalf("payload %#v: expected 0 records, got %d", payload, len(records))
		}
	}
}

func TestBuildQuestionRecordsOptionalFields(t *testing.T) {
	records := BuildQuestionRecords(7, map[string]any{
		"questions": []any{
			map[string]any{
				"question_number": json.Number("3"),
				"text":            "Essay question",
				"answer_type":     "essay",
				"confidence":      json.Number("0.92"),
			},
		},
	})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	q := records[0]
	if q.SectionID != 7 {
		t.Errorf("SectionID = %d, want 7", q.SectionID)
	}
	if q.QuestionNumber != 3 {
		t.Errorf("QuestionNumber = %d, want 3", q.QuestionNumber)
	}
	if q.SectionLabel != nil {
		t.Errorf("SectionLabel = %v, want nil", *q.SectionLabel)
	}
	if q.AnswerHint != nil {
		t.Errorf("AnswerHint = %v, want nil", *q.AnswerHint)
	}
	if q.Options != nil {
		t.Errorf("Options = %s, want nil", q.Options)
	}
	if q.RequiresReview {
		t.Error("confidence 0.92 should not require review")
	}
}

func TestBuildQuestionRecordsOptionsPreserveOrder(t *testing.T) {
	records := BuildQuestionRecords(1, map[string]any{
		"questions": []any{
			map[string]any{
				"question_number": float64(1),
				"text":            "Pick one",
				"answer_type":     "single",
				"answer_hint":     "B) Paris",
				"section_label":   "Section II",
				"confidence":      0.99,
				"options":         []any{"A) London", "B) Paris", "C) Rome", "D) Madrid"},
			},
		},
	})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	var options []string
	if err := json.Unmarshal(records[0].Options, &options); err != nil {
		t.Fatalf("options did not round-trip: %v", err)
	}
	want := []string{"A) London", "B) Paris", "C) Rome", "D) Madrid"}
	if len(options) != len(want) {
		t.Fatalf("got %d options, want %d", len(options), len(want))
	}
	for i := range want {
		if options[i] != want[i] {
			t.Fatalf("option %d = %q, want %q", i, options[i], want[i])
		}
	}
	if records[0].SectionLabel == nil || *records[0].SectionLabel != "Section II" {
		t.Errorf("SectionLabel not carried through")
	}
	if records[0].AnswerHint == nil || *records[0].AnswerHint != "B) Paris" {
		t.Errorf("AnswerHint not carried through")
	}
}

func TestBuildQuestionRecordsUnknownAnswerTypePersists(t *testing.T) {
	records := BuildQuestionRecords(1, map[string]any{
		"questions": []any{
			map[string]any{
				"question_number": float64(1),
				"text":            "Q",
				"answer_type":     "matching",
				"confidence":      0.95,
			},
		},
	})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].AnswerType != "matching" {
		t.Fatalf("unknown answer_type should persist verbatim, got %q", records[0].AnswerType)
	}
}

func TestBuildQuestionRecordsSkipsNonObjectEntries(t *testing.T) {
	records := BuildQuestionRecords(1, map[string]any{
		"questions": []any{
			"just a string",
			map[string]any{
				"question_number": float64(1),
				"text":            "Q",
				"answer_type":     "single",
				"confidence":      0.95,
			},
			float64(42),
		},
	})
	if len(records) != 1 {
		t.Fatalf("expected 1 record from mixed entries, got %d", len(records))
	}
}
