// =============================================================================
// Fiscal Normalizer - Validation Module
// =============================================================================
//
// Sanity checks over a normalized table. These are not schema validation;
// they flag cells that will confuse reports or aggregation.
//
// RULES (selected by folded column name):
//   - cfop     : exactly 4 digits                          (error)
//   - cnpj     : 14 digits, or 11 when the column also
//                accepts CPF (e.g. CpfCnpj)                 (warning)
//   - cpf      : 11 digits                                 (warning)
//   - amount   : monetary candidate cells must parse       (warning)
//   - date     : emission date columns must parse          (warning)
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ginjaninja78/fiscal-normalizer/internal/aggregator"
	"github.com/ginjaninja78/fiscal-normalizer/internal/textutil"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

var cfopPattern = regexp.MustCompile(`^\d{4}$`)

// dateTokens identify emission/competence date columns.
var dateTokens = []string{"dhemi", "demi", "dataemissao", "data_emissao", "competencia"}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
	"2006/01/02",
	"20060102",
}

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError describes one failed check.
type ValidationError struct {
	// Severity is "error" or "warning".
	Severity string

	// Column is the table column checked.
	Column string

	// Value is the offending cell.
	Value string

	// Rule is the rule that failed (cfop, cnpj, cpf, amount, date).
	Rule string

	// Message is a human-readable description.
	Message string

	// Row is the 1-based row number in the normalized table.
	Row int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] Row %d, Column '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Row,
		e.Column,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult summarises a validation pass.
type ValidationResult struct {
	// IsValid is false when any error (or, with TreatWarningsAsErrors, any
	// warning) was found.
	IsValid bool

	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// CellsValidated counts non-null cells that a rule applied to.
	CellsValidated int

	RowsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions configures a Validator.
type ValidationOptions struct {
	// StopOnFirstError stops at the first error-severity finding.
	StopOnFirstError bool

	// TreatWarningsAsErrors makes warnings invalidate the result.
	TreatWarningsAsErrors bool
}

// Validator checks tables. It is safe for concurrent use.
type Validator struct {
	agg     *aggregator.Aggregator
	options ValidationOptions
}

// NewValidator creates a Validator using policy to find monetary columns.
func NewValidator(policy aggregator.Policy, options ValidationOptions) *Validator {
	return &Validator{
		agg:     aggregator.New(policy, nil, 1),
		options: options,
	}
}

type columnRule struct {
	column string
	rule   string
}

// rulesFor maps each column to the rules that apply to it.
func (v *Validator) rulesFor(t *types.Table) []columnRule {
	amounts := make(map[string]bool)
	for _, c := range v.agg.CandidateColumns(t) {
		amounts[c.Name] = true
	}

	var rules []columnRule
	for _, col := range t.Columns() {
		name := textutil.Fold(col)
		switch {
		case strings.Contains(name, "cfop"):
			rules = append(rules, columnRule{col, "cfop"})
		case strings.Contains(name, "cnpj"):
			rules = append(rules, columnRule{col, "cnpj"})
		case strings.Contains(name, "cpf"):
			rules = append(rules, columnRule{col, "cpf"})
		case amounts[col]:
			rules = append(rules, columnRule{col, "amount"})
		case textutil.ContainsAny(name, dateTokens):
			rules = append(rules, columnRule{col, "date"})
		}
	}
	return rules
}

// Validate checks every row of t.
func (v *Validator) Validate(t *types.Table) *ValidationResult {
	result := &ValidationResult{
		IsValid:       true,
		Errors:        make([]*ValidationError, 0),
		RowsValidated: t.Len(),
	}

	rules := v.rulesFor(t)
	if len(rules) == 0 {
		return result
	}

	for i := 0; i < t.Len(); i++ {
		for _, r := range rules {
			value, ok := t.Value(i, r.column)
			if !ok {
				continue
			}
			result.CellsValidated++

			ve := checkCell(r, value)
			if ve == nil {
				continue
			}
			ve.Row = i + 1
			result.Errors = append(result.Errors, ve)

			if ve.Severity == SeverityError {
				result.ErrorCount++
				result.IsValid = false
				if v.options.StopOnFirstError {
					return result
				}
			} else {
				result.WarningCount++
				if v.options.TreatWarningsAsErrors {
					result.IsValid = false
				}
			}
		}
	}

	return result
}

func checkCell(r columnRule, value string) *ValidationError {
	value = strings.TrimSpace(value)
	fail := func(severity, msg string) *ValidationError {
		return &ValidationError{Severity: severity, Column: r.column, Value: value, Rule: r.rule, Message: msg}
	}

	switch r.rule {
	case "cfop":
		if !cfopPattern.MatchString(value) {
			return fail(SeverityError, "CFOP must have exactly 4 digits")
		}
	case "cnpj":
		d := textutil.Digits(value)
		acceptsCPF := strings.Contains(textutil.Fold(r.column), "cpf")
		if len(d) != 14 && !(acceptsCPF && len(d) == 11) {
			return fail(SeverityWarning, fmt.Sprintf("CNPJ must have 14 digits (found %d)", len(d)))
		}
	case "cpf":
		if d := textutil.Digits(value); len(d) != 11 {
			return fail(SeverityWarning, fmt.Sprintf("CPF must have 11 digits (found %d)", len(d)))
		}
	case "amount":
		if _, err := aggregator.ParseAmount(value); err != nil {
			return fail(SeverityWarning, "Value is not a valid amount and will be ignored in totals")
		}
	case "date":
		if !isDate(value) {
			return fail(SeverityWarning, "Value is not a recognised date")
		}
	}
	return nil
}

func isDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors renders findings as a multi-line string.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return "No validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n", len(errs)))
	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// WriteErrorLog writes findings for one source file to path.
func WriteErrorLog(path, sourceFile string, errs []*ValidationError) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "Validation Error Log\n")
	fmt.Fprintf(w, "====================\n")
	fmt.Fprintf(w, "Source File: %s\n", sourceFile)
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Total Findings: %d\n\n", len(errs))

	for _, e := range errs {
		fmt.Fprintln(w, e.Error())
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
