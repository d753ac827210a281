package services

import (
	"encoding/json"
	"log"
	"strconv"

	"gorm.io/datatypes"

	"github.com/prepstack/mockexam-api/model"
)

// BuildQuestionRecords maps a normalized extraction payload into persistable
// question rows for the given section. A missing or malformed "questions"
// key degrades to zero records rather than failing the job, since a document
// may legitimately contain none.
//
// requires_review is always derived from confidence against the threshold;
// it never comes from the payload.
func BuildQuestionRecords(sectionID uint, normalized map[string]any) []model.ExtractedQuestion {
	items, ok := normalized["questions"].([]any)
	if !ok {
		log.Printf("[EXTRACT] Section %d: payload has no questions array, building zero records", sectionID)
		return []model.ExtractedQuestion{}
	}

	records := make([]model.ExtractedQuestion, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			log.Printf("[EXTRACT] Section %d: skipping question entry %d, not an object", sectionID, i)
			continue
		}

		answerType := asString(obj["answer_type"])
		if answerType != "" && !model.KnownAnswerType(answerType) {
			// Persist verbatim anyway; the review UI surfaces these.
			log.Printf("[EXTRACT] Section %d: question %d has unrecognized answer_type %q", sectionID, i, answerType)
		}

		confidence := asFloat(obj["confidence"])
		records = append(records, model.ExtractedQuestion{
			SectionID:      sectionID,
			QuestionNumber: asInt(obj["question_number"]),
			SectionLabel:   asStringPtr(obj["section_label"]),
			Text:           asString(obj["text"]),
			Options:        asOptionsJSON(obj["options"]),
			AnswerType:     answerType,
			AnswerHint:     asStringPtr(obj["answer_hint"]),
			Confidence:     confidence,
			RequiresReview: confidence < model.ReviewConfidenceThreshold,
		})
	}
	return records
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringPtr(v any) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// asInt tolerates the number representations different parse paths produce:
// json.Number from the strict decoder, float64 from the lenient one.
func asInt(v any) int {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, _ := n.Float64()
			return int(f)
		}
		return int(i)
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case json.Number:
		f, _ := n.Float64()
		return f
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func asOptionsJSON(v any) datatypes.JSON {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	options := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			options = append(options, s)
		}
	}
	if len(options) == 0 {
		return nil
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return nil
	}
	return datatypes.JSON(encoded)
}
