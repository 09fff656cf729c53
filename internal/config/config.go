// Package config defines the canonical, JSON/YAML-serializable configuration
// model for the listing ETL. It is intentionally small and explicit so that a
// pipeline can be loaded from disk and passed through the program without any
// ambient global state: normalizers, renderers, and the reconciliation updater
// all receive their settings from a Pipeline value.
//
// Example (trimmed):
//
//	{
//	  "job":     "cars_2025",
//	  "dataset": "car",
//	  "source":  { "kind": "file", "file": { "path": "allcar.csv" },
//	               "encodings": ["utf-8", "latin-1", "iso-8859-9", "cp1254", "utf-16"] },
//	  "parser":  { "kind": "csv", "options": { "has_header": true } },
//	  "normalize": { "price_multiplier": "5.5" },
//	  "output":  { "path": "allcar_2025.sql", "table": "car",
//	               "columns": ["model_year", "model", "price", "kilometers"] },
//	  "runtime": { "max_rows": 1000 }
//	}
package config

import "encoding/json"

// Run modes selectable from the CLI.
const (
	ModeGenerate = "generate"
	ModeRewrite  = "rewrite"
	ModeUpdate   = "update"
)

// Dataset kinds. Each kind has a fixed canonical column layout.
const (
	DatasetCar   = "car"
	DatasetHouse = "house"
)

// Default values applied by ApplyDefaults when a field is left empty.
const (
	DefaultMaxRows         = 1000
	DefaultYear            = 2000
	DefaultFallbackDate    = "2025-01-01"
	DefaultPriceMultiplier = "1"
	DefaultStrategy        = "positional"
)

// DefaultEncodings is the candidate order used when source.encodings is empty.
// Turkish exports are commonly Latin-5 or Windows-1254 when they are not UTF-8.
var DefaultEncodings = []string{"utf-8", "latin-1", "iso-8859-9", "cp1254", "utf-16"}

// Pipeline describes one batch run. It is the top-level object decoded from
// a pipeline file (configs/*.json or configs/*.yaml).
type Pipeline struct {
	// Job names the run for logs and metrics labels.
	Job string `json:"job" yaml:"job"`

	// Dataset selects the canonical column layout: "car" or "house".
	Dataset string `json:"dataset" yaml:"dataset"`

	Source    Source          `json:"source" yaml:"source"`
	Parser    Parser          `json:"parser" yaml:"parser"`
	Normalize NormalizeConfig `json:"normalize" yaml:"normalize"`
	Output    Output          `json:"output" yaml:"output"`
	Storage   Storage         `json:"storage" yaml:"storage"`
	Reconcile ReconcileConfig `json:"reconcile" yaml:"reconcile"`
	Runtime   RuntimeConfig   `json:"runtime" yaml:"runtime"`
}

// Source identifies the tabular input.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind" yaml:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file" yaml:"file"`

	// Encodings is the prioritized list of text encodings to try.
	Encodings []string `json:"encodings" yaml:"encodings"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path" yaml:"path"`
}

// Parser selects how to parse decoded text into rows.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind" yaml:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV, recognized keys are:
	//   has_header (bool), comma (string), trim_space (bool),
	//   lazy_quotes (bool), skip_bad_lines (bool)
	Options Options `json:"options" yaml:"options"`
}

// NormalizeConfig carries the tunables of the field normalizers.
type NormalizeConfig struct {
	// PriceMultiplier is a decimal scale factor applied to extracted prices,
	// e.g. "5.5" to project 2021 prices to 2025 levels. Quoted so that the
	// value stays exact.
	PriceMultiplier string `json:"price_multiplier" yaml:"price_multiplier"`

	// DefaultYear replaces a model year that is not all digits.
	DefaultYear int `json:"default_year" yaml:"default_year"`

	// FallbackDate replaces a listing date that cannot be parsed.
	FallbackDate string `json:"fallback_date" yaml:"fallback_date"`
}

// Output describes the generated INSERT statement.
type Output struct {
	// Path is where the statement is written.
	Path string `json:"path" yaml:"path"`

	// Table and Columns form the statement header.
	Table   string   `json:"table" yaml:"table"`
	Columns []string `json:"columns" yaml:"columns"`

	// Preamble lines are written verbatim before the statement
	// (e.g. "USE MiniSahibinden;").
	Preamble []string `json:"preamble" yaml:"preamble"`

	// Apply executes the generated statement against the live store before
	// the file is written. A failed apply leaves no file.
	Apply bool `json:"apply" yaml:"apply"`
}

// Storage selects the live relational store.
type Storage struct {
	// Kind selects the backend: "mysql", "postgres", "sqlite", "mssql".
	Kind string `json:"kind" yaml:"kind"`

	DB DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the live store connection. Either DSN or the discrete
// Host/User/Password/Database parts may be given; DSN wins when both are set.
// Values may reference environment variables as ${NAME}.
type DBConfig struct {
	DSN      string            `json:"dsn" yaml:"dsn"`
	Host     string            `json:"host" yaml:"host"`
	Port     int               `json:"port" yaml:"port"`
	User     string            `json:"user" yaml:"user"`
	Password string            `json:"password" yaml:"password"`
	Database string            `json:"database" yaml:"database"`
	Params   map[string]string `json:"params" yaml:"params"`
}

// ReconcileConfig configures both reconciliation targets: the previously
// generated SQL document (rewrite mode) and the live table (update mode).
type ReconcileConfig struct {
	// SourcePath is the authoritative CSV. Defaults to source.file.path.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// SQLPath is the existing SQL document to rewrite.
	SQLPath string `json:"sql_path" yaml:"sql_path"`

	// OutputPath receives the rewritten document. Defaults to SQLPath.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Table and Columns identify the INSERT block inside the document and
	// the live table for update mode.
	Table   string   `json:"table" yaml:"table"`
	Columns []string `json:"columns" yaml:"columns"`

	// IDColumn is the stable identifier; SetColumn is the column being
	// brought in line with the authoritative CSV.
	IDColumn  string `json:"id_column" yaml:"id_column"`
	SetColumn string `json:"set_column" yaml:"set_column"`

	// ValueField is the canonical CSV field holding the authoritative value.
	ValueField string `json:"value_field" yaml:"value_field"`

	// RequireFields lists canonical CSV fields that must be non-empty for a
	// row to contribute a value.
	RequireFields []string `json:"require_fields" yaml:"require_fields"`

	// Strategy selects the correspondence strategy. Current value: "positional".
	Strategy string `json:"strategy" yaml:"strategy"`
}

// RuntimeConfig controls batch limits.
type RuntimeConfig struct {
	// MaxRows caps the number of records taken from the input.
	MaxRows int `json:"max_rows" yaml:"max_rows"`
}

// ApplyDefaults fills empty fields with their documented defaults. It is
// idempotent.
func (p *Pipeline) ApplyDefaults() {
	if p.Source.Kind == "" {
		p.Source.Kind = "file"
	}
	if len(p.Source.Encodings) == 0 {
		p.Source.Encodings = append([]string(nil), DefaultEncodings...)
	}
	if p.Parser.Kind == "" {
		p.Parser.Kind = "csv"
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	if p.Normalize.PriceMultiplier == "" {
		p.Normalize.PriceMultiplier = DefaultPriceMultiplier
	}
	if p.Normalize.DefaultYear == 0 {
		p.Normalize.DefaultYear = DefaultYear
	}
	if p.Normalize.FallbackDate == "" {
		p.Normalize.FallbackDate = DefaultFallbackDate
	}
	if p.Runtime.MaxRows == 0 {
		p.Runtime.MaxRows = DefaultMaxRows
	}

	switch p.Dataset {
	case DatasetCar:
		if p.Output.Table == "" {
			p.Output.Table = "car"
		}
		if len(p.Output.Columns) == 0 {
			p.Output.Columns = []string{"model_year", "model", "price", "kilometers"}
		}
	case DatasetHouse:
		if p.Output.Table == "" {
			p.Output.Table = "house"
		}
		if len(p.Output.Columns) == 0 {
			p.Output.Columns = []string{
				"seller_type", "square_meters", "room_count", "city",
				"district", "neighborhood", "date_posted", "price",
			}
		}
	}

	r := &p.Reconcile
	if r.SourcePath == "" {
		r.SourcePath = p.Source.File.Path
	}
	if r.OutputPath == "" {
		r.OutputPath = r.SQLPath
	}
	if r.Table == "" {
		r.Table = "Vehicles"
	}
	if len(r.Columns) == 0 {
		r.Columns = []string{"listing_id", "model_year", "model_name", "kilometers"}
	}
	if r.IDColumn == "" {
		r.IDColumn = "listing_id"
	}
	if r.SetColumn == "" {
		r.SetColumn = "kilometers"
	}
	if r.ValueField == "" {
		r.ValueField = "km_raw"
	}
	if r.RequireFields == nil {
		r.RequireFields = []string{"year", "model_full"}
	}
	if r.Strategy == "" {
		r.Strategy = DefaultStrategy
	}
}

// Options is a small helper to fetch typed values from arbitrary JSON/YAML
// maps. It performs only minimal type coercion and returns provided defaults
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json while YAML yields int, so both are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Used for the CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is an array of
// strings. Returns nil when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object decodes to a non-nil, empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
