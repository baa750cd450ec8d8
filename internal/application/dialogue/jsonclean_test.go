package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already clean",
			input:    `{"intent": "recipe_list"}`,
			expected: `{"intent": "recipe_list"}`,
		},
		{
			name:     "json code fence",
			input:    "```json\n{\"intent\": \"recipe_list\"}\n```",
			expected: `{"intent": "recipe_list"}`,
		},
		{
			name:     "bare code fence",
			input:    "```\n{\"intent\": \"recipe_list\"}\n```",
			expected: `{"intent": "recipe_list"}`,
		},
		{
			name:     "surrounding prose",
			input:    "Here is the classification:\n{\"intent\": \"general_chat\"}\nHope this helps!",
			expected: `{"intent": "general_chat"}`,
		},
		{
			name:     "nested object",
			input:    `prefix {"a": {"b": 1}} suffix`,
			expected: `{"a": {"b": 1}}`,
		},
		{
			name:     "braces inside string values",
			input:    `{"reasoning": "uses { and } freely", "intent": "chat"}`,
			expected: `{"reasoning": "uses { and } freely", "intent": "chat"}`,
		},
		{
			name:     "escaped quote inside string",
			input:    `{"reasoning": "she said \"hi\" {", "ok": true}`,
			expected: `{"reasoning": "she said \"hi\" {", "ok": true}`,
		},
		{
			name:     "whitespace only",
			input:    "   \n\t ",
			expected: "",
		},
		{
			name:     "no json at all",
			input:    "I cannot answer that.",
			expected: "I cannot answer that.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONResponse(tt.input))
		})
	}
}

func TestCleanJSONResponseIdempotent(t *testing.T) {
	inputs := []string{
		"```json\n{\"intent\": \"recipe_detail\", \"confidence\": 0.8}\n```",
		`text before {"key": "value"} text after`,
		`{"plain": true}`,
	}

	for _, input := range inputs {
		once := CleanJSONResponse(input)
		twice := CleanJSONResponse(once)
		assert.Equal(t, once, twice, "cleaning must be idempotent for %q", input)
	}
}
