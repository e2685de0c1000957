package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contactrelay/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("no rules", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validator.Apply())
	})

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.MinLenString("name", "Jo", 2),
			validator.ValidEmail("email", "jo@example.de"),
		)
		assert.NoError(t, err)
	})

	t.Run("collects failures across fields", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.MinLenString("name", "J", 2),
			validator.ValidEmail("email", "nope"),
		)
		require.Error(t, err)

		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 2)
		assert.Equal(t, []string{"name", "email"}, errs.Fields())
	})

	t.Run("first failure per field wins", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("name", ""),
			validator.MinLenString("name", "", 2),
		)
		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, "validation.required", errs[0].TranslationKey)
	})
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	var errs validator.ValidationErrors
	assert.True(t, errs.IsEmpty())
	assert.Equal(t, "validation failed", errs.Error())

	errs.Add(validator.ValidationError{Field: "name", Message: "too short"})
	errs.Add(validator.ValidationError{Field: "email", Message: "invalid"})

	assert.True(t, errs.Has("name"))
	assert.False(t, errs.Has("message"))
	assert.Equal(t, []string{"too short"}, errs.Get("name"))
	assert.Equal(t, "validation failed: name: too short; email: invalid", errs.Error())

	first, ok := errs.First("email")
	assert.True(t, ok)
	assert.Equal(t, "invalid", first.Message)

	_, ok = errs.First("message")
	assert.False(t, ok)
}

func TestValidationErrors_Is(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("normalize: %w", validator.Apply(validator.RequiredString("name", "")))
	assert.True(t, errors.Is(err, validator.ErrValidationFailed))
	assert.True(t, validator.IsValidationError(err))
	assert.NotNil(t, validator.ExtractValidationErrors(err))

	assert.False(t, validator.IsValidationError(errors.New("other")))
	assert.Nil(t, validator.ExtractValidationErrors(nil))
}

func TestValidationError_Args(t *testing.T) {
	t.Parallel()

	e := validator.ValidationError{
		TranslationValues: map[string]any{"min": 10, "field": "message"},
	}
	assert.Equal(t, []string{"field", "message", "min", "10"}, e.Args())
	assert.Empty(t, validator.ValidationError{}.Args())
}

func TestRule_WithKeyAndMessage(t *testing.T) {
	t.Parallel()

	base := validator.MinLenString("name", "J", 2)
	custom := base.WithKey("contact.name.min").WithMessage("Name zu kurz")

	assert.Equal(t, "validation.min_length", base.Error.TranslationKey)
	assert.Equal(t, "contact.name.min", custom.Error.TranslationKey)
	assert.Equal(t, "Name zu kurz", custom.Error.Message)
	assert.Equal(t, 2, custom.Error.TranslationValues["min"])
}
