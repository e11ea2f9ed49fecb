package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/protomodel-lang/protomodel/internal/cli/config"
	"github.com/protomodel-lang/protomodel/internal/cli/ui"
	"github.com/protomodel-lang/protomodel/internal/compiler/builder"
	"github.com/protomodel-lang/protomodel/internal/compiler/model"
	"github.com/protomodel-lang/protomodel/internal/metadata"
	"github.com/protomodel-lang/protomodel/internal/protoload"
)

var (
	inspectDescriptorSet string
	inspectMetadata      []string
	inspectNoColor       bool
)

func init() {
	inspectCmd.Flags().StringVar(&inspectDescriptorSet, "descriptor-set", "", "Path to the compiled descriptor set (overrides config)")
	inspectCmd.Flags().StringSliceVar(&inspectMetadata, "metadata", nil, "Constraint metadata file (repeatable, overrides config)")
	inspectCmd.Flags().BoolVar(&inspectNoColor, "no-color", false, "Disable colored output")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [message]",
	Short: "Inspect the descriptor set or a compiled model",
	Long:  "Without arguments, list every top-level message. With a message name, compile it and show resolved fields, types, and constraints.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		descriptorSet := cfg.Input.DescriptorSet
		if inspectDescriptorSet != "" {
			descriptorSet = inspectDescriptorSet
		}
		metadataFiles := cfg.Metadata.Files
		if len(inspectMetadata) > 0 {
			metadataFiles = inspectMetadata
		}

		set, err := protoload.LoadFile(descriptorSet)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			return listMessages(set)
		}
		return inspectMessage(set, metadataFiles, args[0])
	},
}

func listMessages(set *protoload.Set) error {
	msgs := set.Messages()
	ui.Header(os.Stdout, "Messages", inspectNoColor)
	table := ui.NewTable(os.Stdout, []string{"NAME", "FILE", "FIELDS"}, inspectNoColor)
	for _, msg := range msgs {
		table.AddRow(msg.FullName, msg.File, fmt.Sprintf("%d", len(msg.Fields)))
	}
	table.Render()
	return nil
}

func inspectMessage(set *protoload.Set, metadataFiles []string, name string) error {
	msg, err := set.Message(name)
	if err != nil {
		var candidates []string
		for _, m := range set.Messages() {
			candidates = append(candidates, m.FullName)
		}
		suggestions := ui.FindSimilar(name, candidates, nil)
		fmt.Fprint(os.Stderr, ui.MessageNotFoundError(name, suggestions, inspectNoColor))
		return fmt.Errorf("message %s not found", name)
	}

	var providers []metadata.Provider
	for _, file := range metadataFiles {
		provider, err := metadata.LoadFile(file)
		if err != nil {
			return fmt.Errorf("loading metadata %s: %w", file, err)
		}
		providers = append(providers, provider)
	}

	def, err := builder.New(builder.WithProviders(providers...)).Compile(msg)
	if err != nil {
		return err
	}

	ui.Header(os.Stdout, def.Name, inspectNoColor)

	summary := ui.NewKeyValueTable(os.Stdout, inspectNoColor)
	summary.AddRow("Message", def.FullName)
	summary.AddRow("File", msg.File)
	summary.AddRow("Fields", fmt.Sprintf("%d", len(def.Fields)))
	if len(def.OneOfs) > 0 {
		var names []string
		for _, group := range def.OneOfs {
			names = append(names, group.Name)
		}
		summary.AddRow("OneOf groups", strings.Join(names, ", "))
	}
	summary.Render()
	fmt.Println()

	table := ui.NewTable(os.Stdout, []string{"FIELD", "TYPE", "CONSTRAINTS"}, inspectNoColor)
	for _, field := range def.Fields {
		table.AddRow(field.Name, field.Type.String(), constraintSummary(field.Constraints))
	}
	table.Render()
	return nil
}

// constraintSummary renders a field's rules in a stable order for display.
func constraintSummary(rec *model.ConstraintRecord) string {
	if rec == nil || !rec.HasRules() {
		return "-"
	}
	var parts []string
	for kind, operand := range rec.Rules {
		parts = append(parts, fmt.Sprintf("%s=%v", kind, operand))
	}
	for _, validator := range rec.Validators {
		parts = append(parts, validator.Name)
	}
	if rec.Required {
		parts = append(parts, "required")
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
