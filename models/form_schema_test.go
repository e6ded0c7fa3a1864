package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormFieldAnswerRoundTrip(t *testing.T) {
	f := &FormField{FieldID: "field_0", Type: "text"}

	_, ok := f.Answer()
	assert.False(t, ok)

	f.SetAnswer("Dana")
	got, ok := f.Answer()
	assert.True(t, ok)
	assert.Equal(t, "Dana", got)

	// Empty string is still a deliberate answer.
	f.SetAnswer("")
	got, ok = f.Answer()
	assert.True(t, ok)
	assert.Equal(t, "", got)
}

func TestFormFieldVisibleDefaultsFalse(t *testing.T) {
	assert.False(t, (&FormField{}).Visible())
	assert.False(t, (&FormField{Meta: map[string]interface{}{}}).Visible())
	assert.True(t, (&FormField{Meta: map[string]interface{}{"visible": true}}).Visible())
}

func TestFormSchemaAllFieldsPreservesOrder(t *testing.T) {
	schema := &FormSchema{
		Sections: []*FormSection{
			{Fields: []*FormField{{FieldID: "field_0"}, {FieldID: "field_1"}}},
			{Title: "Extras", Fields: []*FormField{{FieldID: "field_2"}}},
		},
	}

	var ids []string
	for _, f := range schema.AllFields() {
		ids = append(ids, f.FieldID)
	}
	assert.Equal(t, []string{"field_0", "field_1", "field_2"}, ids)
}

func TestFormSchemaFieldByID(t *testing.T) {
	schema := &FormSchema{
		Sections: []*FormSection{
			{Fields: []*FormField{{FieldID: "field_0"}, {FieldID: "upload_0"}}},
		},
	}

	assert.NotNil(t, schema.FieldByID("upload_0"))
	assert.Nil(t, schema.FieldByID("field_9"))
}
