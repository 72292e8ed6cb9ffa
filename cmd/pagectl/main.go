package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
	"github.com/goliatone/go-pagebuilder/components/builder/commands"
	"github.com/goliatone/go-pagebuilder/internal/bootstrap"
	"github.com/goliatone/go-pagebuilder/internal/config"
)

type globals struct {
	Config   string `type:"path" env:"PAGECTL_CONFIG" help:"Path to a YAML config file."`
	Project  string `env:"PAGEBUILDER_PROJECT" help:"Project id (overrides project.id)."`
	BaseURL  string `name:"base-url" env:"PAGEBUILDER_API_URL" help:"REST API base URL (overrides api.base_url)."`
	Token    string `env:"PAGEBUILDER_TOKEN" help:"Bearer token (overrides api.token)."`
	LogLevel string `name:"log-level" help:"Log level (trace, debug, info, warn, error)."`
	Offline  bool   `help:"Use an in-memory backend instead of the REST API."`
}

type cli struct {
	globals

	Hydrate  hydrateCmd  `cmd:"" help:"Fetch the project schema and print the normalised document."`
	Save     saveCmd     `cmd:"" help:"Save a document JSON file, uploading {\"$file\": path} media values."`
	Preview  previewCmd  `cmd:"" help:"Render the preview page for the project."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a widget definition to a widget manifest."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Description("Page builder utility for hydrating, saving and previewing project pages."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background(), &c.globals)
	ctx.FatalIfErrorf(err)
}

func (g *globals) load() (config.Config, error) {
	cfg := config.DefaultConfig()
	if g.Config != "" {
		loaded, err := config.Load(g.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if g.Project != "" {
		cfg.Project.ID = g.Project
	}
	if g.BaseURL != "" {
		cfg.API.BaseURL = g.BaseURL
	}
	if g.Token != "" {
		cfg.API.Token = g.Token
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	return cfg, nil
}

func (g *globals) stack(ctx context.Context) (*bootstrap.Stack, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	return bootstrap.Build(ctx, cfg, bootstrap.Options{Offline: g.Offline})
}

type hydrateCmd struct {
	Out string `type:"path" help:"Write the document to this file instead of stdout."`
}

func (cmd *hydrateCmd) Run(ctx context.Context, g *globals) error {
	stack, err := g.stack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()
	if err := stack.Service.Hydrate(ctx); err != nil {
		return err
	}
	return writeOutput(cmd.Out, func(w io.Writer) error {
		return encodeJSON(w, stack.Service.Document())
	})
}

type saveCmd struct {
	Document string `arg:"" type:"existingfile" help:"Document JSON file ({\"projectBlocks\": [...], \"projectSettings\": {...}})."`
}

func (cmd *saveCmd) Run(ctx context.Context, g *globals) error {
	doc, err := readDocument(cmd.Document)
	if err != nil {
		return err
	}
	stack, err := g.stack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	stack.Service.Load(ctx, doc)
	save := commands.NewSaveProjectCommand(stack.Service, stack.Telemetry)
	if err := save.Execute(ctx, commands.SaveProjectInput{WaitUploads: true}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Saved %d blocks for project %s\n", len(stack.Service.Blocks()), stack.Service.ProjectID())
	return nil
}

type previewCmd struct {
	Out     string `type:"path" help:"Write the HTML to this file instead of stdout."`
	Publish bool   `help:"Publish the hydrated document as the preview snapshot first."`
}

func (cmd *previewCmd) Run(ctx context.Context, g *globals) error {
	stack, err := g.stack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()
	if err := stack.Service.Hydrate(ctx); err != nil {
		return err
	}
	if cmd.Publish {
		if _, err := stack.Service.PublishPreview(ctx); err != nil {
			return err
		}
	}
	return writeOutput(cmd.Out, func(w io.Writer) error {
		return stack.Controller.RenderPreview(ctx, w)
	})
}

func readDocument(path string) (builder.Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return builder.Document{}, fmt.Errorf("pagectl: read document: %w", err)
	}
	return decodeDocument(data, path)
}

func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("pagectl: create %s: %w", path, err)
	}
	defer file.Close()
	return write(file)
}

func encodeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
