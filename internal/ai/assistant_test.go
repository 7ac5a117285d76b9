package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotation(t *testing.T) {
	var empty *FitAssessment
	assert.Nil(t, empty.Annotation())

	annotation := (&FitAssessment{Fit: true, Score: 0.7, Reason: "stack", Message: "Olá", Raw: "{}"}).Annotation()
	require.NotNil(t, annotation)
	assert.True(t, annotation.Fit)
	assert.Equal(t, 0.7, annotation.Score)
	assert.Equal(t, "Olá", annotation.Message)
	assert.Equal(t, "{}", annotation.Raw)
	assert.Empty(t, annotation.Error)
}

func TestFailure(t *testing.T) {
	assert.Nil(t, Failure(nil))
	assert.Equal(t, "boom", Failure(errors.New("boom")).Error)
}
