package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

// validCar returns a defaulted pipeline that passes every mode.
func validCar() Pipeline {
	p := Pipeline{
		Job:     "cars",
		Dataset: DatasetCar,
		Source:  Source{Kind: "file", File: SourceFile{Path: "allcar.csv"}},
		Normalize: NormalizeConfig{
			PriceMultiplier: "5.5",
		},
		Output: Output{Path: "allcar_2025.sql"},
		Storage: Storage{
			Kind: "sqlite",
			DB:   DBConfig{DSN: "file::memory:"},
		},
		Reconcile: ReconcileConfig{SQLPath: "allcar_2025.sql"},
	}
	p.ApplyDefaults()
	return p
}

/*
TestValidatePipeline_MissingJob verifies that a missing or empty Job field
produces a SeverityError with path "job".
*/
func TestValidatePipeline_MissingJob(t *testing.T) {
	p := validCar()
	p.Job = "  "

	issues := ValidatePipeline(p)

	if !hasIssue(t, issues, SeverityError, "job", "job must not be empty") {
		t.Fatalf("expected SeverityError for job; got issues: %+v", issues)
	}
}

/*
TestValidateFor_ValidAllModes verifies that a well-formed pipeline produces
no errors in any mode.
*/
func TestValidateFor_ValidAllModes(t *testing.T) {
	for _, mode := range []string{ModeGenerate, ModeRewrite, ModeUpdate} {
		issues := ValidateFor(validCar(), mode)
		if HasErrors(issues) {
			t.Fatalf("mode=%s: unexpected errors: %+v", mode, issues)
		}
	}
}

func TestValidatePipeline_Table(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Pipeline)
		mode   string
		sev    IssueSeverity
		path   string
		substr string
	}{
		{
			name:   "unknown dataset",
			mutate: func(p *Pipeline) { p.Dataset = "boat" },
			mode:   ModeGenerate, sev: SeverityError, path: "dataset", substr: "unknown dataset",
		},
		{
			name:   "missing source path",
			mutate: func(p *Pipeline) { p.Source.File.Path = "" },
			mode:   ModeGenerate, sev: SeverityError, path: "source.file.path", substr: "non-empty path",
		},
		{
			name:   "blank encoding",
			mutate: func(p *Pipeline) { p.Source.Encodings = []string{"utf-8", " "} },
			mode:   ModeGenerate, sev: SeverityError, path: "source.encodings[1]", substr: "must not be empty",
		},
		{
			name:   "non-csv parser",
			mutate: func(p *Pipeline) { p.Parser.Kind = "xml" },
			mode:   ModeGenerate, sev: SeverityError, path: "parser.kind", substr: "only csv",
		},
		{
			name:   "multi-char comma",
			mutate: func(p *Pipeline) { p.Parser.Options["comma"] = ";;" },
			mode:   ModeGenerate, sev: SeverityError, path: "parser.options.comma", substr: "single character",
		},
		{
			name:   "bad multiplier",
			mutate: func(p *Pipeline) { p.Normalize.PriceMultiplier = "five" },
			mode:   ModeGenerate, sev: SeverityError, path: "normalize.price_multiplier", substr: "not a decimal",
		},
		{
			name:   "zero multiplier",
			mutate: func(p *Pipeline) { p.Normalize.PriceMultiplier = "0" },
			mode:   ModeGenerate, sev: SeverityWarning, path: "normalize.price_multiplier", substr: "written as 0",
		},
		{
			name:   "bad fallback date",
			mutate: func(p *Pipeline) { p.Normalize.FallbackDate = "01/01/2025" },
			mode:   ModeGenerate, sev: SeverityError, path: "normalize.fallback_date", substr: "YYYY-MM-DD",
		},
		{
			name:   "injected column name",
			mutate: func(p *Pipeline) { p.Output.Columns = []string{"price); DROP TABLE car; --"} },
			mode:   ModeGenerate, sev: SeverityError, path: "output.columns[0]", substr: "plain SQL identifier",
		},
		{
			name:   "apply without storage",
			mutate: func(p *Pipeline) { p.Output.Apply = true; p.Storage.Kind = "" },
			mode:   ModeGenerate, sev: SeverityError, path: "storage.kind", substr: "must not be empty",
		},
		{
			name:   "rewrite without sql path",
			mutate: func(p *Pipeline) { p.Reconcile.SQLPath = "" },
			mode:   ModeRewrite, sev: SeverityError, path: "reconcile.sql_path", substr: "SQL document",
		},
		{
			name:   "unknown strategy",
			mutate: func(p *Pipeline) { p.Reconcile.Strategy = "fuzzy" },
			mode:   ModeUpdate, sev: SeverityError, path: "reconcile.strategy", substr: "only positional",
		},
		{
			name:   "set column not trailing",
			mutate: func(p *Pipeline) { p.Reconcile.SetColumn = "model_year" },
			mode:   ModeRewrite, sev: SeverityWarning, path: "reconcile.columns", substr: "not set_column",
		},
		{
			name:   "update without database",
			mutate: func(p *Pipeline) { p.Storage.DB = DBConfig{} },
			mode:   ModeUpdate, sev: SeverityError, path: "storage.db", substr: "dsn or storage.db.database",
		},
		{
			name:   "negative max rows",
			mutate: func(p *Pipeline) { p.Runtime.MaxRows = -1 },
			mode:   ModeUpdate, sev: SeverityError, path: "runtime.max_rows", substr: "negative",
		},
		{
			name:   "unknown mode",
			mutate: func(p *Pipeline) {},
			mode:   "delete", sev: SeverityError, path: "mode", substr: "unknown mode",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p := validCar()
			tt.mutate(&p)
			issues := ValidateFor(p, tt.mode)
			if !hasIssue(t, issues, tt.sev, tt.path, tt.substr) {
				t.Fatalf("missing %s at %s (%q); got %+v", tt.sev, tt.path, tt.substr, issues)
			}
		})
	}
}

func TestValidateStorage_PasswordWarning(t *testing.T) {
	p := validCar()
	p.Storage = Storage{Kind: "mysql", DB: DBConfig{Host: "db", User: "root", Database: "MiniSahibinden"}}

	issues := ValidateFor(p, ModeUpdate)
	if !hasIssue(t, issues, SeverityWarning, "storage.db.password", "${ENV}") {
		t.Fatalf("expected password warning; got %+v", issues)
	}
	if HasErrors(issues) {
		t.Fatalf("password warning must not be an error: %+v", issues)
	}
}

func TestIssue_Error(t *testing.T) {
	iss := Issue{Severity: SeverityError, Path: "job", Message: "empty"}
	if got, want := iss.Error(), "error at job: empty"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
