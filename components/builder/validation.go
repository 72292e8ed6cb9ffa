package builder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	MaxCarouselSlides = 10
	MaxPriceRows      = 20
	MaxBackgroundBlur = 20
)

// DataValidator checks widget data before it is committed.
type DataValidator interface {
	Validate(def WidgetDefinition, data map[string]any) error
}

// NewDefaultValidator chains schema validation with field-level rules.
func NewDefaultValidator() DataValidator {
	return chainValidator{NewJSONSchemaValidator(), FieldValidator{}}
}

type chainValidator []DataValidator

func (c chainValidator) Validate(def WidgetDefinition, data map[string]any) error {
	for _, v := range c {
		if err := v.Validate(def, data); err != nil {
			return err
		}
	}
	return nil
}

// JSONSchemaValidator compiles widget schemas and validates data maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[WidgetKind]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[WidgetKind]*jsonschema.Schema),
	}
}

// Validate ensures data satisfies the widget schema. Local files encode as
// null, so media fields accept string or null.
func (v *JSONSchemaValidator) Validate(def WidgetDefinition, data map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	var payload map[string]any
	if data == nil {
		payload = map[string]any{}
	} else {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("pagebuilder: marshal data for %s: %w", def.Code, err)
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("pagebuilder: normalize data for %s: %w", def.Code, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return validationError(err, fmt.Sprintf("data for %s failed schema validation", def.Code))
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(def WidgetDefinition) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[def.Code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	raw, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("pagebuilder: marshal schema %s: %w", def.Code, err)
	}
	compiler := jsonschema.NewCompiler()
	name := string(def.Code) + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("pagebuilder: load schema %s: %w", def.Code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("pagebuilder: compile schema %s: %w", def.Code, err)
	}
	v.mu.Lock()
	v.compiled[def.Code] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// FieldValidator applies the user-facing field rules per kind.
type FieldValidator struct{}

// Validate returns validation.Errors keyed by field path.
func (FieldValidator) Validate(def WidgetDefinition, data map[string]any) error {
	errs := validation.Errors{}
	switch def.Code {
	case KindLink:
		for i, raw := range listValue(data, "links") {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			title, _ := entry["title"].(string)
			url, _ := entry["linkUrl"].(string)
			key := Index("links", i, "linkUrl").String()
			if title != "" {
				if err := validation.Validate(url, validation.Required.Error("link url is required"), is.URL); err != nil {
					errs[key] = err
				}
			} else if err := validation.Validate(url, is.URL); err != nil {
				errs[key] = err
			}
		}
	case KindCarousel:
		if n := slideCount(data); n > MaxCarouselSlides {
			errs["slides"] = validation.NewError("pagebuilder.carousel.too_many_slides", "a carousel holds at most "+strconv.Itoa(MaxCarouselSlides)+" slides")
		}
	case KindTablePrice:
		if n := len(listValue(data, "rows")); n > MaxPriceRows {
			errs["rows"] = validation.NewError("pagebuilder.table_price.too_many_rows", "a price table holds at most "+strconv.Itoa(MaxPriceRows)+" rows")
		}
	case KindEmbed:
		url, _ := data["url"].(string)
		if err := validation.Validate(url, is.URL); err != nil {
			errs["url"] = err
		}
	case KindBackground:
		if blur, ok := toFloat(data["blur"]); ok {
			if err := validation.Validate(blur, validation.Min(0.0), validation.Max(float64(MaxBackgroundBlur))); err != nil {
				errs["blur"] = err
			}
		}
	}
	if len(errs) > 0 {
		return validationError(errs, fmt.Sprintf("invalid %s data", def.Code))
	}
	return nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
