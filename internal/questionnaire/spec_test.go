package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpecRejectsSparseIndexes(t *testing.T) {
	_, err := NewSpec([]StepDefinition{
		{Index: 0, Field: "a", Kind: FreeText, Validate: ValidateNonEmpty},
		{Index: 2, Field: "b", Kind: FreeText, Validate: ValidateNonEmpty},
	})
	require.Error(t, err)
}

func TestNewSpecRejectsChoiceStepWithoutOptions(t *testing.T) {
	_, err := NewSpec([]StepDefinition{
		{Index: 0, Field: "a", Kind: ChoiceButtons},
	})
	require.Error(t, err)
}

func TestBorgPadSpecShape(t *testing.T) {
	spec := NewBorgPadSpec()
	require.Equal(t, 14, spec.Len())

	for i := 0; i < spec.Len(); i++ {
		step := spec.Step(i)
		assert.Equal(t, i, step.Index)
		assert.NotEmpty(t, step.Prompt)
		if step.Kind == FreeText {
			assert.NotNil(t, step.Validate, "free text step %s needs a validator", step.Field)
		}
	}

	assert.Equal(t, ImageReference, spec.Step(2).Kind)
	assert.Equal(t, ImageReference, spec.Step(12).Kind)
	assert.Equal(t, ChoiceButtons, spec.Step(9).Kind)
	assert.Equal(t, ChoiceButtons, spec.Step(10).Kind)
}

func TestFDVMaxOptionsExcludeChosenMinimum(t *testing.T) {
	spec := NewBorgPadSpec()
	maxStep := spec.Step(10)
	require.Equal(t, FieldFDVMax, maxStep.Field)

	answers := map[string]string{FieldFDVMin: "$10M"}
	options := spec.OptionsFor(maxStep, answers)

	values := make([]string, 0, len(options))
	for _, opt := range options {
		values = append(values, opt.Value)
	}

	assert.NotContains(t, values, "$5M")
	assert.NotContains(t, values, "$10M")
	assert.Contains(t, values, "$15M")
	assert.Contains(t, values, "$100M")
}

func TestFDVMaxOptionsUnfilteredWithoutMinimum(t *testing.T) {
	spec := NewBorgPadSpec()
	options := spec.OptionsFor(spec.Step(10), map[string]string{})
	assert.Len(t, options, len(fdvChoices))
}
