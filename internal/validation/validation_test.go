package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commentBody struct {
	Content   string `json:"content" validate:"notblank,max=10"`
	MediaType string `json:"media_type" validate:"required,oneof=movie tv"`
}

func TestValidateStructReportsJSONNames(t *testing.T) {
	err := ValidateStruct(&commentBody{Content: "   ", MediaType: "book"})
	require.Error(t, err)

	var fields Errors
	require.True(t, errors.As(err, &fields))
	require.Len(t, fields, 2)
	assert.Equal(t, "content", fields[0].Field)
	assert.Equal(t, "notblank", fields[0].Tag)
	assert.Equal(t, "media_type", fields[1].Field)
	assert.Contains(t, err.Error(), "media_type must be one of [movie tv]")
}

func TestValidateStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, ValidateStruct(commentBody{Content: "great", MediaType: "tv"}))
}

func TestValidateStructRejectsNonStruct(t *testing.T) {
	assert.Error(t, ValidateStruct("nope"))
	assert.NoError(t, ValidateStruct(nil))
}
