package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"applyai/models"
)

const (
	maxResumeChars     = 12000
	maxJobContextChars = 6000
)

// AnswerService produces candidate answers for the answerable fields of a
// form schema from the applicant's resume text and the job context.
type AnswerService struct {
	client ChatClient
	model  string
}

func NewAnswerService(client ChatClient, model string) *AnswerService {
	return &AnswerService{client: client, model: model}
}

// fieldBrief is the compact per-field view sent to the model.
type fieldBrief struct {
	FieldID     string   `json:"field_id"`
	Label       string   `json:"label,omitempty"`
	Name        string   `json:"name,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"`
}

type answerResponse struct {
	Answers      map[string]interface{} `json:"answers"`
	Unanswerable []string               `json:"unanswerable"`
}

const answerSystemPrompt = `You are filling out a job application on behalf of a candidate. ` +
	`Use only facts supported by the resume and job context. Never invent employment history, ` +
	`credentials, or contact details. If a field cannot be answered from the available ` +
	`information, list its field_id under "unanswerable" instead of guessing.

Rules:
- Answer with the exact value to type into the field, no commentary.
- For select fields, answer with one of the listed options verbatim.
- For checkbox or radio fields, answer "true" or "false".
- For date fields, use YYYY-MM-DD.
- Keep free-text answers concise and professional.`

const ignoreOptionalRule = `- Ignore optional fields unless trivial (name, email, phone); list the ignored field_ids under "unanswerable".`

const answerResponseFormat = `Respond with a single JSON object: {"answers": {"field_id": "value", ...}, "unanswerable": ["field_id", ...]}`

func buildAnswerSystemPrompt(ignoreOptional bool) string {
	prompt := answerSystemPrompt
	if ignoreOptional {
		prompt += "\n" + ignoreOptionalRule
	}
	return prompt + "\n\n" + answerResponseFormat
}

// GenerateAnswers asks the model for answers to every answerable field in the
// schema and writes them onto the fields. It returns the answered field map
// and the list of field ids the model declined. With ignoreOptional set, the
// model is told to skip non-required fields unless they are trivial contact
// details.
//
// A malformed model response is not an error: it yields zero answers, and the
// caller's fill step simply has nothing to do.
func (s *AnswerService) GenerateAnswers(ctx context.Context, schema *models.FormSchema, resumeText, jobContext string, ignoreOptional bool) (map[string]string, []string, error) {
	if s.client == nil {
		return nil, nil, ErrAINotConfigured
	}

	briefs := answerableFields(schema)
	if len(briefs) == 0 {
		return map[string]string{}, nil, nil
	}

	briefJSON, err := json.MarshalIndent(briefs, "", "  ")
	if err != nil {
		return nil, nil, err
	}

	userPrompt := fmt.Sprintf(
		"RESUME:\n%s\n\nJOB CONTEXT:\n%s\n\nFORM FIELDS:\n%s",
		truncate(resumeText, maxResumeChars),
		truncate(jobContext, maxJobContextChars),
		string(briefJSON),
	)

	raw, err := s.client.CreateChatCompletion(ctx, s.model, []ChatMessage{
		{Role: "system", Content: buildAnswerSystemPrompt(ignoreOptional)},
		{Role: "user", Content: userPrompt},
	}, true)
	if err != nil {
		return nil, nil, fmt.Errorf("answer generation failed: %w", err)
	}

	parsed := parseAnswerResponse(raw)

	answers := make(map[string]string, len(parsed.Answers))
	for fieldID, value := range parsed.Answers {
		field := schema.FieldByID(fieldID)
		if field == nil {
			log.Printf("Model answered unknown field %s, dropping", fieldID)
			continue
		}
		normalized := normalizeAnswer(field, value)
		field.SetAnswer(normalized)
		answers[fieldID] = normalized
	}

	log.Printf("Generated %d answers, %d unanswerable", len(answers), len(parsed.Unanswerable))
	return answers, parsed.Unanswerable, nil
}

// answerableFields selects the fields worth asking the model about: visible
// and not file uploads, which are handled by the resume upload step.
func answerableFields(schema *models.FormSchema) []fieldBrief {
	var briefs []fieldBrief
	for _, f := range schema.AllFields() {
		if !f.Visible() || f.Type == "file" {
			continue
		}
		briefs = append(briefs, fieldBrief{
			FieldID:     f.FieldID,
			Label:       f.Label,
			Name:        f.Name,
			Placeholder: f.Placeholder,
			Type:        f.Type,
			Required:    f.Required,
			Options:     f.Options,
		})
	}
	return briefs
}

// parseAnswerResponse decodes the model output defensively: fences stripped,
// and any parse failure degrades to an empty answer set.
func parseAnswerResponse(raw string) answerResponse {
	cleaned := CleanJSONResponse(raw)
	var parsed answerResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		log.Printf("Could not parse answer response as JSON: %v", err)
		return answerResponse{Answers: map[string]interface{}{}}
	}
	if parsed.Answers == nil {
		parsed.Answers = map[string]interface{}{}
	}
	return parsed
}

// normalizeAnswer coerces a model answer into the string the fill step will
// use. Checkbox and radio answers collapse to "true"/"false"; truthy spellings
// are matched case-insensitively. Select answers pass through verbatim and are
// matched against options at fill time.
func normalizeAnswer(field *models.FormField, value interface{}) string {
	text := stringifyAnswer(value)
	switch field.Type {
	case "checkbox", "radio":
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "1", "true", "yes", "on":
			return "true"
		default:
			return "false"
		}
	default:
		return text
	}
}

// stringifyAnswer renders a JSON answer value as the text to type. Models
// occasionally return bare numbers or booleans despite instructions.
func stringifyAnswer(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
