package validate

import (
	"strings"

	"github.com/sghaida/graft/model"
)

// Severity classifies a diagnostic. Any Error present at the end of a round
// aborts source generation for the affected component.
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

// String returns the conventional upper-case severity label.
func (s Severity) String() string {
	switch s {
	case Error:
		return "ERROR"
	case Warning:
		return "WARNING"
	case Note:
		return "NOTE"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic is one validator finding, attached to the graph element it
// concerns and to every declaration site involved.
type Diagnostic struct {
	Severity Severity
	Message  string

	// Element is the primary declaration site, when one exists.
	Element model.Element

	// Sites are all involved declaration sites, for conflicts spanning
	// several declarations.
	Sites []model.Element
}

// String renders "SEVERITY: message (at site)".
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	if d.Element.Name != "" {
		sb.WriteString(" (at ")
		sb.WriteString(d.Element.String())
		sb.WriteByte(')')
	}
	return sb.String()
}

// Reporter receives diagnostics from validators.
type Reporter interface {
	Report(d Diagnostic)
}

// Collector is the standard Reporter: it accumulates diagnostics and tracks
// whether any error was reported.
type Collector struct {
	diags []Diagnostic
}

// Report implements Reporter.
func (c *Collector) Report(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// Diagnostics returns everything reported so far, in report order.
func (c *Collector) Diagnostics() []Diagnostic { return c.diags }

// HasErrors reports whether any Error-severity diagnostic was collected.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the Error-severity diagnostics.
func (c *Collector) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range c.diags {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}
