package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/AlecAivazis/survey/v2"

	"github.com/goliatone/go-pathscript/pkg/layout/gotemplate"
	"github.com/goliatone/go-pathscript/pkg/orchestrator"
)

func main() {
	source := flag.String("source", "", "XML document path")
	sheet := flag.String("stylesheet", "", "YAML stylesheet path (optional)")
	backend := flag.String("backend", "", "tree backend: xmlquery or etree")
	output := flag.String("output", "", "output file (stdout if empty)")
	sanitize := flag.Bool("sanitize", false, "run output through the HTML sanitizer")
	layoutName := flag.String("layout", "", "layout template the output is wrapped into")
	layoutDir := flag.String("layout-dir", ".", "directory layout templates are loaded from")
	interactive := flag.Bool("interactive", false, "prompt for missing inputs")
	verbose := flag.Bool("verbose", false, "log engine diagnostics to stderr")
	flag.Parse()

	if *interactive {
		if err := promptMissing(source, sheet, backend); err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}
	}
	if *source == "" {
		log.Fatalf("missing -source (or use -interactive)")
	}

	options := []orchestrator.Option{}
	if *verbose {
		options = append(options, orchestrator.WithLogger(
			slog.New(slog.NewTextHandler(os.Stderr, nil))))
	}
	if *layoutName != "" {
		renderer, err := gotemplate.New(gotemplate.WithBaseDir(*layoutDir))
		if err != nil {
			log.Fatalf("Failed to configure layout renderer: %v", err)
		}
		options = append(options, orchestrator.WithLayoutRenderer(renderer))
	}

	gen := orchestrator.New(options...)

	req := orchestrator.Request{
		SourcePath:     *source,
		StylesheetPath: *sheet,
		Backend:        *backend,
		Sanitize:       *sanitize,
		Layout:         *layoutName,
	}

	out, err := gen.Generate(context.Background(), req)
	if err != nil {
		log.Fatalf("Failed to render document: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", *output)
	} else {
		fmt.Println(string(out))
	}
}

func promptMissing(source, sheet, backend *string) error {
	if *source == "" {
		prompt := &survey.Input{Message: "XML document path:"}
		if err := survey.AskOne(prompt, source, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}
	if *sheet == "" {
		prompt := &survey.Input{Message: "Stylesheet path (empty for pass-through):"}
		if err := survey.AskOne(prompt, sheet); err != nil {
			return err
		}
	}
	if *backend == "" {
		prompt := &survey.Select{
			Message: "Tree backend:",
			Options: []string{"xmlquery", "etree"},
			Default: "xmlquery",
		}
		if err := survey.AskOne(prompt, backend); err != nil {
			return err
		}
	}
	return nil
}
