package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/protomodel-lang/protomodel/internal/cli/config"
	"github.com/protomodel-lang/protomodel/internal/cli/ui"
	"github.com/protomodel-lang/protomodel/internal/compiler/builder"
	"github.com/protomodel-lang/protomodel/internal/compiler/errors"
	"github.com/protomodel-lang/protomodel/internal/compiler/model"
	"github.com/protomodel-lang/protomodel/internal/materialize/jschema"
	"github.com/protomodel-lang/protomodel/internal/metadata"
	"github.com/protomodel-lang/protomodel/internal/protoload"
)

var (
	compileDescriptorSet string
	compileMessages      []string
	compileMetadata      []string
	compileOut           string
	compileJSON          bool
	compileVerbose       bool
	compileNoColor       bool
)

func init() {
	compileCmd.Flags().StringVar(&compileDescriptorSet, "descriptor-set", "", "Path to the compiled descriptor set (overrides config)")
	compileCmd.Flags().StringSliceVar(&compileMessages, "message", nil, "Root message to compile (repeatable, overrides config)")
	compileCmd.Flags().StringSliceVar(&compileMetadata, "metadata", nil, "Constraint metadata file (repeatable, overrides config)")
	compileCmd.Flags().StringVar(&compileOut, "out", "", "Output directory (overrides config)")
	compileCmd.Flags().BoolVar(&compileJSON, "json", false, "Output errors in JSON format")
	compileCmd.Flags().BoolVar(&compileVerbose, "verbose", false, "Show detailed compilation output")
	compileCmd.Flags().BoolVar(&compileNoColor, "no-color", false, "Disable colored output")
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile descriptor set messages into validated models",
	Long:  "Resolve message types, merge constraint metadata, and write one JSON Schema document per root message",
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		descriptorSet := cfg.Input.DescriptorSet
		if compileDescriptorSet != "" {
			descriptorSet = compileDescriptorSet
		}
		roots := cfg.Input.Messages
		if len(compileMessages) > 0 {
			roots = compileMessages
		}
		metadataFiles := cfg.Metadata.Files
		if len(compileMetadata) > 0 {
			metadataFiles = compileMetadata
		}
		outDir := cfg.Output.Dir
		if compileOut != "" {
			outDir = compileOut
		}

		set, err := protoload.LoadFile(descriptorSet)
		if err != nil {
			return err
		}

		var providers []metadata.Provider
		for _, file := range metadataFiles {
			provider, err := metadata.LoadFile(file)
			if err != nil {
				return fmt.Errorf("loading metadata %s: %w", file, err)
			}
			providers = append(providers, provider)
		}

		logger := zap.NewNop()
		if compileVerbose {
			logger, err = zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()
		}

		comp := builder.New(
			builder.WithProviders(providers...),
			builder.WithLogger(logger),
		)

		var defs []*model.Definition
		if len(roots) == 0 {
			for _, msg := range set.Messages() {
				def, err := comp.Compile(msg)
				if err != nil {
					return reportError(err)
				}
				defs = append(defs, def)
			}
		} else {
			for _, root := range roots {
				msg, err := set.Message(root)
				if err != nil {
					return err
				}
				def, err := comp.Compile(msg)
				if err != nil {
					return reportError(err)
				}
				defs = append(defs, def)
			}
		}

		if diags := comp.Diagnostics(); len(diags) > 0 {
			if compileJSON {
				out, err := diags.ToJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stderr, out)
			} else {
				ui.WriteDiagnostics(os.Stderr, diags, compileNoColor)
			}
		}

		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		materializer := jschema.New(defs...)
		for _, def := range defs {
			doc, err := materializer.Materialize(def)
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			dest := filepath.Join(outDir, def.Name+".schema.json")
			if err := os.WriteFile(dest, append(raw, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", dest, err)
			}
			if compileVerbose {
				fmt.Printf("Wrote %s\n", dest)
			}
		}

		ui.WriteSuccess(os.Stdout,
			fmt.Sprintf("compiled %d model(s) in %s", len(defs), time.Since(startTime).Round(time.Millisecond)),
			compileNoColor)
		return nil
	},
}

// reportError renders a terminal compiler error in the selected format
// before propagating it to cobra.
func reportError(err error) error {
	var compErr *errors.CompilerError
	if !stderrors.As(err, &compErr) {
		return err
	}
	if compileJSON {
		if out, jsonErr := compErr.ToJSON(); jsonErr == nil {
			fmt.Fprintln(os.Stderr, out)
			return fmt.Errorf("compilation failed")
		}
	}
	fmt.Fprint(os.Stderr, ui.FormatDiagnostic(compErr, compileNoColor))
	return fmt.Errorf("compilation failed")
}
