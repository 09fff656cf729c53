// Package config provides configuration models and helpers for the listing ETL.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "reconcile.columns[2]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// identRe matches identifiers that are safe to splice into SQL text
// unquoted. Table names may be schema-qualified.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidatePipeline performs static validation / linting of the parts of a
// Pipeline that every run mode relies on.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	p, err := config.Load("configs/cars.json")
//	if err != nil { ... }
//	issues := config.ValidatePipeline(p)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	// Top-level pipeline checks.
	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	switch p.Dataset {
	case DatasetCar, DatasetHouse:
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset",
			Message:  "dataset must not be empty (car or house)",
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset",
			Message:  fmt.Sprintf("unknown dataset %q (want car or house)", p.Dataset),
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateNormalize(p.Normalize)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

// ValidateFor runs ValidatePipeline and then the checks specific to mode.
func ValidateFor(p Pipeline, mode string) []Issue {
	issues := ValidatePipeline(p)

	switch mode {
	case ModeGenerate:
		issues = append(issues, validateOutput(p.Output)...)
		if p.Output.Apply {
			issues = append(issues, validateStorage(p.Storage)...)
		}
	case ModeRewrite:
		issues = append(issues, validateReconcile(p.Reconcile)...)
		if strings.TrimSpace(p.Reconcile.SQLPath) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "reconcile.sql_path",
				Message:  "rewrite mode requires the SQL document to rewrite",
			})
		}
	case ModeUpdate:
		issues = append(issues, validateReconcile(p.Reconcile)...)
		issues = append(issues, validateStorage(p.Storage)...)
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "mode",
			Message:  fmt.Sprintf("unknown mode %q (want generate, rewrite or update)", mode),
		})
	}
	return issues
}

// validateSource validates Source configuration.
func validateSource(s Source) []Issue {
	var issues []Issue

	// Kind is required.
	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
		return issues
	}

	if s.Kind != "file" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; ensure a matching implementation exists", s.Kind),
		})
	}

	// Kind-specific checks.
	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	}

	if len(s.Encodings) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.encodings",
			Message:  "at least one candidate encoding is required",
		})
	}
	for i, e := range s.Encodings {
		if strings.TrimSpace(e) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("source.encodings[%d]", i),
				Message:  "encoding name must not be empty",
			})
		}
	}

	return issues
}

// validateParser validates parser configuration.
func validateParser(p Parser) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
		return issues
	}

	if p.Kind != "csv" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q (only csv)", p.Kind),
		})
		return issues
	}

	if c := p.Options.String("comma", ","); len([]rune(c)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", c),
		})
	}
	if !p.Options.Bool("has_header", true) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.has_header",
			Message:  "has_header=false: the first data row is kept; columns are still renamed positionally",
		})
	}

	return issues
}

// validateNormalize checks the normalizer tunables.
func validateNormalize(n NormalizeConfig) []Issue {
	var issues []Issue

	m, err := decimal.NewFromString(strings.TrimSpace(n.PriceMultiplier))
	switch {
	case err != nil:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "normalize.price_multiplier",
			Message:  fmt.Sprintf("price_multiplier %q is not a decimal: %v", n.PriceMultiplier, err),
		})
	case m.IsNegative():
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "normalize.price_multiplier",
			Message:  "price_multiplier must not be negative",
		})
	case m.IsZero():
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "normalize.price_multiplier",
			Message:  "price_multiplier is 0; every price will be written as 0",
		})
	}

	if n.DefaultYear < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "normalize.default_year",
			Message:  "default_year must not be negative",
		})
	}
	if _, err := time.Parse("2006-01-02", n.FallbackDate); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "normalize.fallback_date",
			Message:  fmt.Sprintf("fallback_date %q is not YYYY-MM-DD", n.FallbackDate),
		})
	}

	return issues
}

// validateOutput checks the generated statement's destination and header.
func validateOutput(o Output) []Issue {
	var issues []Issue

	if strings.TrimSpace(o.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.path",
			Message:  "output.path must not be empty",
		})
	}
	issues = append(issues, validateIdents("output", o.Table, o.Columns)...)

	return issues
}

// validateReconcile checks the reconciliation target description.
func validateReconcile(r ReconcileConfig) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.SourcePath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "reconcile.source_path",
			Message:  "reconciliation requires the authoritative CSV path",
		})
	}
	issues = append(issues, validateIdents("reconcile", r.Table, r.Columns)...)

	for _, c := range []struct{ path, val string }{
		{"reconcile.id_column", r.IDColumn},
		{"reconcile.set_column", r.SetColumn},
	} {
		if !identRe.MatchString(c.val) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     c.path,
				Message:  fmt.Sprintf("%q is not a plain SQL identifier", c.val),
			})
		}
	}
	if len(r.Columns) > 0 {
		if r.Columns[0] != r.IDColumn {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "reconcile.columns",
				Message:  fmt.Sprintf("first column %q is not id_column %q; rows are matched on the leading value", r.Columns[0], r.IDColumn),
			})
		}
		if r.Columns[len(r.Columns)-1] != r.SetColumn {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "reconcile.columns",
				Message:  fmt.Sprintf("last column %q is not set_column %q; the trailing value is the one rewritten", r.Columns[len(r.Columns)-1], r.SetColumn),
			})
		}
	}
	if strings.TrimSpace(r.ValueField) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "reconcile.value_field",
			Message:  "value_field must not be empty",
		})
	}
	if r.Strategy != DefaultStrategy {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "reconcile.strategy",
			Message:  fmt.Sprintf("unknown correspondence strategy %q (only positional)", r.Strategy),
		})
	}

	return issues
}

// validateStorage validates storage configuration and DB settings.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	db := s.DB
	if strings.TrimSpace(db.DSN) == "" && strings.TrimSpace(db.Database) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db",
			Message:  "either storage.db.dsn or storage.db.database must be set",
		})
	}
	if db.Port < 0 || db.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.port",
			Message:  fmt.Sprintf("port %d out of range", db.Port),
		})
	}
	if db.DSN == "" && db.Password == "" && s.Kind != "sqlite" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.db.password",
			Message:  "no password configured; set it via ${ENV} expansion rather than in the file",
		})
	}

	return issues
}

// validateRuntime validates RuntimeConfig for obvious misconfigurations.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.MaxRows < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.max_rows",
			Message:  "max_rows must not be negative",
		})
	}

	return issues
}

func validateIdents(prefix, table string, cols []string) []Issue {
	var issues []Issue

	if !identRe.MatchString(table) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     prefix + ".table",
			Message:  fmt.Sprintf("%q is not a plain SQL identifier", table),
		})
	}
	if len(cols) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     prefix + ".columns",
			Message:  "at least one column is required",
		})
	}
	for i, c := range cols {
		if !identRe.MatchString(c) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("%s.columns[%d]", prefix, i),
				Message:  fmt.Sprintf("%q is not a plain SQL identifier", c),
			})
		}
	}
	return issues
}
