package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

type scaffoldCmd struct {
	Name         string   `required:"" help:"Display name for the widget."`
	Code         string   `help:"Widget kind code (defaults to the camelCased name)."`
	Description  string   `help:"One-line description used in manifests."`
	Category     string   `default:"block" enum:"block,left_column,selector" help:"Widget category."`
	SettingsKey  string   `name:"settings-key" help:"Settings section key for left_column widgets."`
	Media        []string `help:"Media fields, either field or list.field (use multiple --media flags)."`
	ManifestPath string   `required:"" type:"path" help:"Path to the widget manifest YAML file to update."`
	SchemaPath   string   `type:"path" help:"Optional path to a JSON schema file for the widget data."`
	Tag          []string `help:"Optional tags to include in the manifest."`
	Maintainer   []string `help:"Maintainers to record in the manifest."`
	Overwrite    bool     `help:"Replace an existing manifest entry with the same code."`
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	code := cmd.code()
	if code == "" {
		return errors.New("pagectl: widget code is empty")
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("pagectl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}
	media, err := parseMediaFields(cmd.Media)
	if err != nil {
		return err
	}

	entry := builder.ManifestWidget{
		Definition: builder.WidgetDefinition{
			Code:        builder.WidgetKind(code),
			Name:        cmd.Name,
			Description: cmd.Description,
			Category:    builder.WidgetCategory(cmd.Category),
			SettingsKey: cmd.SettingsKey,
			Schema:      schema,
			MediaFields: media,
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}
	if err := upsertWidget(doc, entry, cmd.Overwrite); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	// Registering into a scratch registry catches category/settings mismatches.
	if err := builder.NewRegistry().LoadManifestDocument(doc); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to %s\n", code, manifestPath)
	return nil
}

func (cmd *scaffoldCmd) code() string {
	if code := strings.TrimSpace(cmd.Code); code != "" {
		return code
	}
	return strcase.ToCamel(cmd.Name)
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("pagectl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("pagectl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func parseMediaFields(values []string) ([]builder.MediaField, error) {
	var out []builder.MediaField
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		list, field, nested := strings.Cut(raw, ".")
		switch {
		case raw == "":
			continue
		case !nested:
			out = append(out, builder.MediaField{Field: strcase.ToCamel(raw)})
		case list == "" || field == "" || strings.Contains(field, "."):
			return nil, fmt.Errorf("pagectl: media field %q must be field or list.field", raw)
		default:
			out = append(out, builder.MediaField{List: strcase.ToCamel(list), Field: strcase.ToCamel(field)})
		}
	}
	return out, nil
}

func upsertWidget(doc *builder.WidgetManifestDocument, entry builder.ManifestWidget, overwrite bool) error {
	for idx := range doc.Widgets {
		if doc.Widgets[idx].Definition.Code != entry.Definition.Code {
			continue
		}
		if !overwrite {
			return fmt.Errorf("pagectl: manifest already defines widget %s (use --overwrite to replace)", entry.Definition.Code)
		}
		doc.Widgets[idx] = entry
		return nil
	}
	doc.Widgets = append(doc.Widgets, entry)
	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Definition.Code < doc.Widgets[j].Definition.Code
	})
	return nil
}

func loadOrInitManifest(path string) (*builder.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &builder.WidgetManifestDocument{
				Version: builder.ManifestVersion,
				Widgets: []builder.ManifestWidget{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("pagectl: stat manifest: %w", err)
	}
	return builder.ReadManifest(path)
}

func writeManifest(path string, doc *builder.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pagectl: mkdir %s: %w", filepath.Dir(path), err)
	}
	out := *doc
	out.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("pagectl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("pagectl: write manifest: %w", err)
	}
	return nil
}
