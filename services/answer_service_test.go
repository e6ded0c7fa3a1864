package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applyai/models"
)

// fakeChatClient returns canned responses in order and records every call.
type fakeChatClient struct {
	responses []string
	err       error
	calls     int
	prompts   []string
	systems   []string
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, _ string, messages []ChatMessage, _ bool) (string, error) {
	f.calls++
	if len(messages) > 0 {
		f.prompts = append(f.prompts, messages[len(messages)-1].Content)
	}
	if len(messages) > 0 && messages[0].Role == "system" {
		f.systems = append(f.systems, messages[0].Content)
	}
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

func answerTestSchema() *models.FormSchema {
	return &models.FormSchema{
		URL: "https://acme.com/apply",
		Sections: []*models.FormSection{{
			Fields: []*models.FormField{
				visibleField("field_0", "first_name", "First Name", "text"),
				visibleField("field_1", "authorized", "Are you authorized to work?", "checkbox"),
				visibleField("field_2", "relocate", "Willing to relocate?", "radio"),
				{
					FieldID: "field_3",
					Name:    "remote",
					Label:   "Open to remote?",
					Type:    "select",
					Options: []string{"YES", "NO"},
					Meta:    map[string]interface{}{"visible": true},
				},
				visibleField("upload_0", "resume", "Resume Upload", "file"),
			},
		}},
	}
}

func TestGenerateAnswersNormalizesBooleanFields(t *testing.T) {
	truthy := []string{"1", "true", "yes", "on", "TRUE", "Yes", " ON "}
	for _, spelling := range truthy {
		schema := answerTestSchema()
		client := &fakeChatClient{responses: []string{
			`{"answers": {"field_1": "` + spelling + `"}, "unanswerable": []}`,
		}}

		answers, _, err := NewAnswerService(client, "test-model").
			GenerateAnswers(context.Background(), schema, "resume", "job", false)
		require.NoError(t, err)
		assert.Equal(t, "true", answers["field_1"], "spelling %q", spelling)
	}

	schema := answerTestSchema()
	client := &fakeChatClient{responses: []string{
		`{"answers": {"field_2": "no"}, "unanswerable": []}`,
	}}
	answers, _, err := NewAnswerService(client, "test-model").
		GenerateAnswers(context.Background(), schema, "resume", "job", false)
	require.NoError(t, err)
	assert.Equal(t, "false", answers["field_2"])
}

func TestGenerateAnswersKeepsSelectAnswersVerbatim(t *testing.T) {
	schema := answerTestSchema()
	client := &fakeChatClient{responses: []string{
		`{"answers": {"field_3": "YES"}, "unanswerable": []}`,
	}}

	answers, _, err := NewAnswerService(client, "test-model").
		GenerateAnswers(context.Background(), schema, "resume", "job", false)
	require.NoError(t, err)

	// Select answers are not boolean-normalized; matching against options
	// happens at fill time.
	assert.Equal(t, "YES", answers["field_3"])
	got, ok := schema.FieldByID("field_3").Answer()
	assert.True(t, ok)
	assert.Equal(t, "YES", got)
}

func TestGenerateAnswersMalformedResponse(t *testing.T) {
	schema := answerTestSchema()
	client := &fakeChatClient{responses: []string{`this is not json`}}

	answers, unanswerable, err := NewAnswerService(client, "test-model").
		GenerateAnswers(context.Background(), schema, "resume", "job", false)

	require.NoError(t, err)
	assert.Empty(t, answers)
	assert.Empty(t, unanswerable)
}

func TestGenerateAnswersStripsCodeFences(t *testing.T) {
	schema := answerTestSchema()
	client := &fakeChatClient{responses: []string{
		"```json\n{\"answers\": {\"field_0\": \"Dana\"}, \"unanswerable\": [\"field_2\"]}\n```",
	}}

	answers, unanswerable, err := NewAnswerService(client, "test-model").
		GenerateAnswers(context.Background(), schema, "resume", "job", false)
	require.NoError(t, err)

	assert.Equal(t, "Dana", answers["field_0"])
	assert.Equal(t, []string{"field_2"}, unanswerable)
}

func TestGenerateAnswersDropsUnknownFieldIDs(t *testing.T) {
	schema := answerTestSchema()
	client := &fakeChatClient{responses: []string{
		`{"answers": {"field_0": "Dana", "field_99": "ghost"}, "unanswerable": []}`,
	}}

	answers, _, err := NewAnswerService(client, "test-model").
		GenerateAnswers(context.Background(), schema, "resume", "job", false)
	require.NoError(t, err)

	assert.Equal(t, "Dana", answers["field_0"])
	assert.NotContains(t, answers, "field_99")
}

func TestGenerateAnswersExcludesFileAndInvisibleFields(t *testing.T) {
	schema := answerTestSchema()
	schema.Sections[0].Fields = append(schema.Sections[0].Fields, &models.FormField{
		FieldID: "field_9",
		Name:    "tracker",
		Type:    "text",
		Meta:    map[string]interface{}{"visible": false},
	})
	client := &fakeChatClient{responses: []string{`{"answers": {}, "unanswerable": []}`}}

	_, _, err := NewAnswerService(client, "test-model").
		GenerateAnswers(context.Background(), schema, "resume", "job", false)
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	assert.NotContains(t, client.prompts[0], "upload_0")
	assert.NotContains(t, client.prompts[0], "field_9")
	assert.Contains(t, client.prompts[0], "field_0")
}

func TestGenerateAnswersIgnoreOptionalTogglesPromptRule(t *testing.T) {
	schema := answerTestSchema()
	client := &fakeChatClient{responses: []string{`{"answers": {}, "unanswerable": []}`}}
	svc := NewAnswerService(client, "test-model")

	_, _, err := svc.GenerateAnswers(context.Background(), schema, "resume", "job", true)
	require.NoError(t, err)

	_, _, err = svc.GenerateAnswers(context.Background(), schema, "resume", "job", false)
	require.NoError(t, err)

	require.Len(t, client.systems, 2)
	assert.Contains(t, client.systems[0], "Ignore optional fields")
	assert.NotContains(t, client.systems[1], "Ignore optional fields")
}

func TestGenerateAnswersTruncatesResumeAndJobContext(t *testing.T) {
	schema := answerTestSchema()
	client := &fakeChatClient{responses: []string{`{"answers": {}, "unanswerable": []}`}}

	longResume := make([]byte, maxResumeChars+500)
	for i := range longResume {
		longResume[i] = 'r'
	}

	_, _, err := NewAnswerService(client, "test-model").
		GenerateAnswers(context.Background(), schema, string(longResume), "job", false)
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	assert.Less(t, len(client.prompts[0]), maxResumeChars+5000)
}

func TestStringifyAnswer(t *testing.T) {
	assert.Equal(t, "plain", stringifyAnswer("plain"))
	assert.Equal(t, "true", stringifyAnswer(true))
	assert.Equal(t, "false", stringifyAnswer(false))
	assert.Equal(t, "5", stringifyAnswer(float64(5)))
	assert.Equal(t, "2.5", stringifyAnswer(2.5))
	assert.Equal(t, "", stringifyAnswer(nil))
}

func TestGenerateAnswersNilClient(t *testing.T) {
	var svc AnswerService
	_, _, err := svc.GenerateAnswers(context.Background(), answerTestSchema(), "r", "j", false)
	assert.ErrorIs(t, err, ErrAINotConfigured)
}
