package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/protomodel-lang/protomodel/internal/compiler/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ MESSAGE NOT FOUND: demo.Usr
//	   Did you mean: demo.User?
//
//	   → See all messages: protomodel inspect
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelError:
		headerColor = color.New(color.FgRed, color.Bold)
		symbol = "❌"
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		symbol = "ℹ️"
	}

	if opts.NoColor {
		headerColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// FormatDiagnostic renders a single compiler diagnostic with severity
// coloring and the suggestion line when present.
func FormatDiagnostic(diag *errors.CompilerError, noColor bool) string {
	level := ErrorLevelError
	if diag.Severity == errors.SeverityWarning {
		level = ErrorLevelWarning
	}

	// The symbol rides in the problem text: Context is upper-cased for
	// headers and would mangle case-sensitive schema names.
	problem := diag.Message
	if diag.Field != "" {
		problem = fmt.Sprintf("%s (field %s)", diag.Message, diag.Field)
	}
	if diag.Symbol != "" {
		problem = fmt.Sprintf("%s: %s", diag.Symbol, problem)
	}

	var suggestions []string
	if diag.Suggestion != "" {
		suggestions = []string{diag.Suggestion}
	}

	return FormatError(ErrorOptions{
		Level:       level,
		Context:     string(diag.Code),
		Problem:     problem,
		Suggestions: suggestions,
		NoColor:     noColor,
	})
}

// WriteDiagnostics renders a diagnostic list, errors before warnings.
func WriteDiagnostics(w io.Writer, diags []*errors.CompilerError, noColor bool) {
	for _, diag := range diags {
		if diag.Severity != errors.SeverityWarning {
			fmt.Fprint(w, FormatDiagnostic(diag, noColor))
		}
	}
	for _, diag := range diags {
		if diag.Severity == errors.SeverityWarning {
			fmt.Fprint(w, FormatDiagnostic(diag, noColor))
		}
	}
}

// MessageNotFoundError creates a standardized message-not-found error
func MessageNotFoundError(messageName string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "MESSAGE NOT FOUND",
		Problem:     fmt.Sprintf("Cannot find message '%s' in the descriptor set.", messageName),
		Suggestions: suggestions,
		HelpCommands: []string{
			"See all messages: protomodel inspect",
			"Get help: protomodel inspect --help",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}
