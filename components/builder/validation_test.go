package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func definition(t *testing.T, kind WidgetKind) WidgetDefinition {
	t.Helper()
	def, ok := NewRegistry().Definition(kind)
	require.True(t, ok)
	return def
}

func TestDefaultDataPassesValidation(t *testing.T) {
	validator := NewDefaultValidator()
	for _, def := range NewRegistry().Definitions() {
		if def.Virtual() {
			continue
		}
		if err := validator.Validate(def, DefaultData(def.Code, seqIDs("d"))); err != nil {
			t.Fatalf("default data for %s failed validation: %v", def.Code, err)
		}
	}
}

func TestSchemaValidatorAcceptsPendingFiles(t *testing.T) {
	data := map[string]any{
		"style": LinkStyleFeatured,
		"links": []any{map[string]any{"id": "l1", "image": &LocalFile{Name: "a.png"}}},
	}
	require.NoError(t, NewJSONSchemaValidator().Validate(definition(t, KindLink), data))
}

func TestSchemaValidatorRejectsWrongTypes(t *testing.T) {
	err := NewJSONSchemaValidator().Validate(definition(t, KindBackground), map[string]any{"blur": "soft"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	err = NewJSONSchemaValidator().Validate(definition(t, KindLink), map[string]any{"style": "mosaic"})
	assert.Error(t, err)
}

func TestFieldValidatorRules(t *testing.T) {
	v := FieldValidator{}
	assert.NoError(t, v.Validate(definition(t, KindLink), map[string]any{
		"links": []any{map[string]any{"id": "a", "title": "Shop", "linkUrl": "https://shop.example.com"}},
	}))
	assert.Error(t, v.Validate(definition(t, KindLink), map[string]any{
		"links": []any{map[string]any{"id": "a", "title": "Shop"}},
	}))
	assert.Error(t, v.Validate(definition(t, KindLink), map[string]any{
		"links": []any{map[string]any{"id": "a", "linkUrl": "not a url"}},
	}))

	slides := make([]any, MaxCarouselSlides+1)
	for i := range slides {
		slides[i] = map[string]any{"id": "s"}
	}
	assert.Error(t, v.Validate(definition(t, KindCarousel), map[string]any{"slides": slides}))
	assert.NoError(t, v.Validate(definition(t, KindCarousel), map[string]any{"slides": slides[:MaxCarouselSlides]}))

	rows := make([]any, MaxPriceRows+1)
	assert.Error(t, v.Validate(definition(t, KindTablePrice), map[string]any{"rows": rows}))

	assert.Error(t, v.Validate(definition(t, KindEmbed), map[string]any{"url": "not a url"}))
	assert.NoError(t, v.Validate(definition(t, KindEmbed), map[string]any{"url": ""}))

	err := v.Validate(definition(t, KindBackground), map[string]any{"blur": 25})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.NoError(t, v.Validate(definition(t, KindBackground), map[string]any{"blur": 12.5}))
}
