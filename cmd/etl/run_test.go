package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"listingetl/internal/charset"
	"listingetl/internal/config"
	"listingetl/internal/reconcile"
	"listingetl/internal/storage"
	"listingetl/internal/storage/sqlite"
)

// carsCSV has a cp1254-only character (0xDE, "Ş") so utf-8 must fail first.
const carsCSV = "Model Year,Model,Price,Kilometers\n" +
	"2015,Fiat Egea,109.000 TL108.000 TL,173.000 \n" +
	"2016,D'acia \xdeahin,90.000 TL,\n" +
	"abc,Renault Clio,,12 km\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func carPipeline(t *testing.T, dir string) config.Pipeline {
	t.Helper()
	p := config.Pipeline{
		Job:       "cars",
		Dataset:   config.DatasetCar,
		Source: config.Source{
			Kind:      "file",
			File:      config.SourceFile{Path: writeFile(t, dir, "allcar.csv", carsCSV)},
			Encodings: []string{"utf-8", "cp1254"},
		},
		Normalize: config.NormalizeConfig{PriceMultiplier: "5.5"},
		Output:    config.Output{Path: filepath.Join(dir, "allcar_2025.sql")},
	}
	p.ApplyDefaults()
	return p
}

func TestRunGenerate_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	p := carPipeline(t, dir)

	if err := run(context.Background(), config.ModeGenerate, p); err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := os.ReadFile(p.Output.Path)
	if err != nil {
		t.Fatal(err)
	}

	want := "INSERT INTO car (model_year, model, price, kilometers) VALUES\n" +
		"(2015, 'Fiat Egea', 594000, 173000),\n" +
		"(2016, 'D''acia Şahin', 495000, 0),\n" +
		"(2000, 'Renault Clio', 0, 12);\n"
	if got := string(b); got != want {
		t.Fatalf("output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRunGenerate_MaxRowsAndPreamble(t *testing.T) {
	dir := t.TempDir()
	p := carPipeline(t, dir)
	p.Runtime.MaxRows = 1
	p.Output.Preamble = []string{"USE MiniSahibinden;"}

	if err := run(context.Background(), config.ModeGenerate, p); err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := os.ReadFile(p.Output.Path)
	if !strings.HasPrefix(string(b), "USE MiniSahibinden;\n\nINSERT INTO car") {
		t.Fatalf("preamble missing:\n%s", b)
	}
	if n := strings.Count(string(b), "\n("); n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
}

func TestRunGenerate_NoEncodingLeavesNoArtifact(t *testing.T) {
	dir := t.TempDir()
	p := carPipeline(t, dir)
	p.Source.Encodings = []string{"utf-8"}

	err := run(context.Background(), config.ModeGenerate, p)
	if !errors.Is(err, charset.ErrNoEncoding) {
		t.Fatalf("err = %v, want ErrNoEncoding", err)
	}
	if _, statErr := os.Stat(p.Output.Path); !os.IsNotExist(statErr) {
		t.Fatalf("output written despite failure: %v", statErr)
	}
}

type recordingRepo struct {
	storage.Repository
	execs   []string
	execErr error
	closed  bool
}

func (r *recordingRepo) Exec(ctx context.Context, sql string) error {
	r.execs = append(r.execs, sql)
	return r.execErr
}

func (r *recordingRepo) Close() { r.closed = true }

func TestRunGenerate_Apply(t *testing.T) {
	orig := newRepositoryFn
	defer func() { newRepositoryFn = orig }()

	rec := &recordingRepo{}
	var gotCfg storage.Config
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (Repository, error) {
		gotCfg = cfg
		return rec, nil
	}

	dir := t.TempDir()
	p := carPipeline(t, dir)
	p.Output.Apply = true
	p.Output.Preamble = []string{"USE MiniSahibinden;"}
	p.Storage = config.Storage{Kind: "mysql", DB: config.DBConfig{Host: "db", Database: "MiniSahibinden"}}

	if err := run(context.Background(), config.ModeGenerate, p); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gotCfg.Kind != "mysql" || gotCfg.Host != "db" || gotCfg.Database != "MiniSahibinden" {
		t.Fatalf("storage config = %+v", gotCfg)
	}
	if len(rec.execs) != 1 || !strings.HasPrefix(rec.execs[0], "INSERT INTO car") {
		t.Fatalf("execs = %q, want the bare INSERT", rec.execs)
	}
	if !rec.closed {
		t.Fatal("repository not closed")
	}
}

func TestRunGenerate_ApplyFailureLeavesNoArtifact(t *testing.T) {
	orig := newRepositoryFn
	defer func() { newRepositoryFn = orig }()

	rec := &recordingRepo{execErr: errors.New("duplicate entry")}
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (Repository, error) {
		return rec, nil
	}

	dir := t.TempDir()
	p := carPipeline(t, dir)
	p.Output.Apply = true
	p.Storage = config.Storage{Kind: "mysql", DB: config.DBConfig{Host: "db", Database: "MiniSahibinden"}}

	err := run(context.Background(), config.ModeGenerate, p)
	if err == nil || !strings.Contains(err.Error(), "apply: duplicate entry") {
		t.Fatalf("err = %v, want apply failure", err)
	}
	if _, statErr := os.Stat(p.Output.Path); !os.IsNotExist(statErr) {
		t.Fatalf("output written despite failed apply: stat err = %v", statErr)
	}
	if !rec.closed {
		t.Fatal("repository not closed")
	}
}

const vehiclesDoc = "INSERT INTO Vehicles (listing_id, model_year, model_name, kilometers) VALUES\n" +
	"(1, 2015, 'Fiat Egea', 1),\n" +
	"(2, 2016, 'Dacia', 2),\n" +
	"(3, 2017, 'Opel', 3),\n" +
	"(4, 2018, 'Clio', 4);\n"

func TestRunRewrite(t *testing.T) {
	dir := t.TempDir()
	p := carPipeline(t, dir)
	p.Reconcile.SQLPath = writeFile(t, dir, "data.sql", vehiclesDoc)
	p.Reconcile.OutputPath = p.Reconcile.SQLPath

	if err := run(context.Background(), config.ModeRewrite, p); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	b, _ := os.ReadFile(p.Reconcile.SQLPath)
	// Three source values; id 4 wraps to the first.
	want := "INSERT INTO Vehicles (listing_id, model_year, model_name, kilometers) VALUES\n" +
		"(1, 2015, 'Fiat Egea', 173000),\n" +
		"(2, 2016, 'Dacia', 0),\n" +
		"(3, 2017, 'Opel', 12),\n" +
		"(4, 2018, 'Clio', 173000);\n"
	if string(b) != want {
		t.Fatalf("rewritten document:\n%s\nwant:\n%s", b, want)
	}

	// A second run produces the same digest and leaves the file alone.
	info, _ := os.Stat(p.Reconcile.SQLPath)
	if err := run(context.Background(), config.ModeRewrite, p); err != nil {
		t.Fatalf("second rewrite: %v", err)
	}
	info2, _ := os.Stat(p.Reconcile.SQLPath)
	if !info.ModTime().Equal(info2.ModTime()) {
		t.Fatal("unchanged document was rewritten")
	}
}

func TestRunRewrite_MissingBlock(t *testing.T) {
	dir := t.TempDir()
	p := carPipeline(t, dir)
	const doc = "INSERT INTO car (model_year) VALUES\n(1);\n"
	p.Reconcile.SQLPath = writeFile(t, dir, "data.sql", doc)
	p.Reconcile.OutputPath = p.Reconcile.SQLPath

	err := run(context.Background(), config.ModeRewrite, p)
	if !errors.Is(err, reconcile.ErrStatementNotFound) {
		t.Fatalf("err = %v, want ErrStatementNotFound", err)
	}
	if b, _ := os.ReadFile(p.Reconcile.SQLPath); string(b) != doc {
		t.Fatalf("document changed on abort:\n%s", b)
	}
}

func TestRunUpdate_SQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "seed.db")

	seed, closeFn, err := sqlite.NewRepository(ctx, sqlite.Config{DSN: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	if err := seed.Exec(ctx, `CREATE TABLE Vehicles (listing_id INTEGER PRIMARY KEY, model_year INTEGER, model_name TEXT, kilometers INTEGER)`); err != nil {
		t.Fatal(err)
	}
	if err := seed.Exec(ctx, vehiclesDoc); err != nil {
		t.Fatal(err)
	}
	closeFn()

	p := carPipeline(t, dir)
	p.Storage = config.Storage{Kind: "sqlite", DB: config.DBConfig{Database: dbPath}}
	if err := run(ctx, config.ModeUpdate, p); err != nil {
		t.Fatalf("update: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, "SELECT kilometers FROM Vehicles ORDER BY listing_id")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	var got []int64
	for rows.Next() {
		var km int64
		if err := rows.Scan(&km); err != nil {
			t.Fatal(err)
		}
		got = append(got, km)
	}
	if want := []int64{173000, 0, 12, 173000}; !reflect.DeepEqual(got, want) {
		t.Fatalf("kilometers = %v, want %v", got, want)
	}
}

func TestRun_UnknownMode(t *testing.T) {
	if err := run(context.Background(), "delete", config.Pipeline{}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestShippedConfigsValidate(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "configs", "pipelines", "*"))
	if err != nil || len(paths) == 0 {
		t.Fatalf("no shipped configs: %v", err)
	}
	for _, path := range paths {
		p, err := config.Load(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if issues := config.ValidateFor(p, config.ModeGenerate); config.HasErrors(issues) {
			t.Errorf("%s: %+v", path, issues)
		}
	}
}
