package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *CompilerError) string {
	var b strings.Builder

	symbol := e.Symbol
	if symbol == "" {
		symbol = "<schema>"
	}
	if e.Field != "" {
		symbol = symbol + "." + e.Field
	}

	fmt.Fprintf(&b, "%s %s [%s]: %s", severityIcon(e.Severity), symbol, e.Code, e.Message)

	if e.Expected != "" || e.Actual != "" {
		b.WriteString("\n")
		if e.Expected != "" {
			fmt.Fprintf(&b, "  expected: %s\n", e.Expected)
		}
		if e.Actual != "" {
			fmt.Fprintf(&b, "  actual:   %s\n", e.Actual)
		}
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  hint: %s", e.Suggestion)
	}

	return b.String()
}

// FormatErrorList formats a list of errors with a trailing count summary
func FormatErrorList(el ErrorList) string {
	var b strings.Builder

	errorCount := 0
	warningCount := 0
	for i, err := range el {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatError(err))
		switch err.Severity {
		case SeverityError:
			errorCount++
		case SeverityWarning:
			warningCount++
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "\n%d error(s), %d warning(s)", errorCount, warningCount)
	return b.String()
}

func severityIcon(severity ErrorSeverity) string {
	switch severity {
	case SeverityWarning:
		return "⚠"
	default:
		return "✗"
	}
}
