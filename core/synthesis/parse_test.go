package synthesis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare object",
			text: `{"title": "Key Rotation"}`,
			want: `{"title": "Key Rotation"}`,
		},
		{
			name: "fenced with prose",
			text: "Here is the document:\n```json\n{\"title\": \"Key Rotation\"}\n```\nDone.",
			want: `{"title": "Key Rotation"}`,
		},
		{
			name: "braces inside strings",
			text: `{"content": "use {placeholder} and \"quotes\" here"}`,
			want: `{"content": "use {placeholder} and \"quotes\" here"}`,
		},
		{
			name: "nested objects",
			text: `prefix {"scope_definition": {"covers": "x"}} suffix`,
			want: `{"scope_definition": {"covers": "x"}}`,
		},
		{
			name: "no object",
			text: "I could not produce a document.",
			want: "",
		},
		{
			name: "unbalanced",
			text: `{"title": "cut off`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONBlock(tt.text))
		})
	}
}

func TestDecodePayload(t *testing.T) {
	payload, err := decodePayload[documentPayload]("create", `{"title": "Key Rotation", "content": "Rotate [1]."}`)
	require.NoError(t, err)
	assert.Equal(t, "Key Rotation", payload.Title)
	assert.Equal(t, "Rotate [1].", payload.Content)
}

func TestDecodePayloadNoObject(t *testing.T) {
	_, err := decodePayload[documentPayload]("create", "no json here")
	require.Error(t, err)

	var genErr *GenerationOutputError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "create", genErr.Op)
	assert.Contains(t, genErr.Reason, "no JSON object")
}

func TestDecodePayloadInvalidJSON(t *testing.T) {
	_, err := decodePayload[documentPayload]("update", `{"title": 42, "content": {}}`)
	require.Error(t, err)

	var genErr *GenerationOutputError
	require.True(t, errors.As(err, &genErr))
	assert.NotNil(t, genErr.Err)
}
