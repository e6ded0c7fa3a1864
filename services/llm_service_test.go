package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONResponse(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, CleanJSONResponse("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, CleanJSONResponse("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, CleanJSONResponse(`{"a": 1}`))
	assert.Equal(t, `{"a": 1}`, CleanJSONResponse("  {\"a\": 1}  \n"))
	assert.Equal(t, "", CleanJSONResponse("```json\n```"))
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient("")
	assert.ErrorIs(t, err, ErrAINotConfigured)

	_, err = NewGeminiClient("   ")
	assert.ErrorIs(t, err, ErrAINotConfigured)

	client, err := NewGeminiClient("test-key")
	assert.NoError(t, err)
	assert.NotNil(t, client)
}
