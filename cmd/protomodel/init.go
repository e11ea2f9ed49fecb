package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/protomodel-lang/protomodel/internal/cli/ui"
)

var initYes bool

func init() {
	initCmd.Flags().BoolVar(&initYes, "yes", false, "Accept defaults without prompting")
}

var initCmd = &cobra.Command{
	Use:   "init [project-name]",
	Short: "Create a protomodel.yml in the current directory",
	Long:  "Interactively create the project configuration: descriptor set location, root messages, and output settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat("protomodel.yml"); err == nil {
			return fmt.Errorf("protomodel.yml already exists")
		}
		if _, err := os.Stat("protomodel.yaml"); err == nil {
			return fmt.Errorf("protomodel.yaml already exists")
		}

		projectName := ""
		if len(args) == 1 {
			projectName = args[0]
		}
		descriptorSet := "schema.pb"
		outputDir := "build/models"
		format := "jsonschema"

		if !initYes {
			if projectName == "" {
				prompt := &survey.Input{
					Message: "Project name:",
				}
				if err := survey.AskOne(prompt, &projectName, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}

			dsPrompt := &survey.Input{
				Message: "Descriptor set path:",
				Default: descriptorSet,
				Help:    "Produced by protoc --descriptor_set_out",
			}
			if err := survey.AskOne(dsPrompt, &descriptorSet); err != nil {
				return err
			}

			outPrompt := &survey.Input{
				Message: "Output directory:",
				Default: outputDir,
			}
			if err := survey.AskOne(outPrompt, &outputDir); err != nil {
				return err
			}

			formatPrompt := &survey.Select{
				Message: "Output format:",
				Options: []string{"jsonschema", "json"},
				Default: "jsonschema",
			}
			if err := survey.AskOne(formatPrompt, &format); err != nil {
				return err
			}
		}

		if err := validateProjectName(projectName); err != nil {
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "project_name: %s\n", projectName)
		fmt.Fprintf(&b, "input:\n")
		fmt.Fprintf(&b, "  descriptor_set: %s\n", descriptorSet)
		fmt.Fprintf(&b, "  messages: []\n")
		fmt.Fprintf(&b, "metadata:\n")
		fmt.Fprintf(&b, "  files: []\n")
		fmt.Fprintf(&b, "output:\n")
		fmt.Fprintf(&b, "  dir: %s\n", outputDir)
		fmt.Fprintf(&b, "  format: %s\n", format)

		if err := os.WriteFile("protomodel.yml", []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("failed to write protomodel.yml: %w", err)
		}

		ui.WriteSuccess(os.Stdout, "created protomodel.yml", false)
		return nil
	},
}

func validateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("project name cannot contain '..'")
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("project name cannot contain path separators")
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("project name cannot start with '.'")
	}
	return nil
}
