package genai

// ExtractionFunctionName is the tool the model is forced to call when
// extracting questions from an exam PDF.
const ExtractionFunctionName = "record_exam_questions"

// ExtractionInstruction is the instruction text sent alongside the PDF
const ExtractionInstruction = `You are an expert at extracting structured information from examination question papers.

Analyze the attached exam paper PDF and record EVERY question it contains by calling record_exam_questions exactly once.

IMPORTANT - UNDERSTAND THE EXAM PAPER STRUCTURE:
- Questions are numbered 1, 2, 3, etc.
- Sub-parts labeled (a), (b), (c) are SEPARATE questions; number them sequentially in document order
- Section headings like "Section A" or "Part II" apply to every question beneath them until the next heading

EXTRACTION RULES:
1. question_number must be a positive integer reflecting document order, starting at 1
2. For multiple-choice questions, list every option verbatim in the options array and set answer_type to "single" (or "multi" when more than one option must be selected)
3. For true/false questions set answer_type to "true_false"
4. For questions answered in a few words set answer_type to "short_answer"; for long-form answers set answer_type to "essay"
5. If the paper states or implies the correct answer, record it in answer_hint; otherwise omit it
6. Set confidence between 0.0 and 1.0 for each question reflecting how certain you are the extraction is faithful. Use lower values for blurry scans, truncated text, or ambiguous layout
7. Do not invent questions. Do not skip questions. Do not merge separate questions.`

// ExtractionDeclaration returns the function declaration for structured
// question extraction
func ExtractionDeclaration() FunctionDeclaration {
	return FunctionDeclaration{
		Name:        ExtractionFunctionName,
		Description: "Records the full set of questions extracted from an examination paper",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type":        "array",
					"description": "Every question found in the document, in document order",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question_number": map[string]any{
								"type":        "integer",
								"description": "Position of the question in the document, starting at 1",
							},
							"section_label": map[string]any{
								"type":        "string",
								"description": "Section or part heading the question falls under, if any",
							},
							"text": map[string]any{
								"type":        "string",
								"description": "Full question text, verbatim",
							},
							"options": map[string]any{
								"type":        "array",
								"description": "Answer options for choice questions, verbatim and in order",
								"items":       map[string]any{"type": "string"},
							},
							"answer_type": map[string]any{
								"type": "string",
								"enum": []string{"single", "multi", "true_false", "short_answer", "essay"},
							},
							"answer_hint": map[string]any{
								"type":        "string",
								"description": "Correct answer if the paper states or implies one",
							},
							"confidence": map[string]any{
								"type":        "number",
								"description": "Extraction confidence between 0.0 and 1.0",
							},
						},
						"required": []string{"question_number", "text", "answer_type", "confidence"},
					},
				},
			},
			"required": []string{"questions"},
		},
	}
}
