// Package main wires the seeding and reconciliation runs end-to-end. This
// file keeps the CLI layer thin: it depends only on storage-agnostic
// interfaces and never imports database drivers or backend-specific packages
// directly.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/zeebo/xxh3"

	"listingetl/internal/charset"
	"listingetl/internal/config"
	"listingetl/internal/datasource"
	"listingetl/internal/datasource/file"
	"listingetl/internal/metrics"
	"listingetl/internal/parser/csv"
	"listingetl/internal/reconcile"
	"listingetl/internal/record"
	"listingetl/internal/sqlgen"
	"listingetl/internal/storage"
	"listingetl/internal/transformer"
)

type Repository = storage.Repository

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (Repository, error) {
		return storage.New(ctx, cfg)
	}

	openSourceFn = func(path string) datasource.Source { return file.NewLocal(path) }
)

// run dispatches to the mode's runner.
func run(ctx context.Context, mode string, p config.Pipeline) error {
	switch mode {
	case config.ModeGenerate:
		return runGenerate(ctx, p)
	case config.ModeRewrite:
		return runRewrite(ctx, p)
	case config.ModeUpdate:
		return runUpdate(ctx, p)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// step times fn and records it under the pipeline job.
func step(job, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(job, name, err, time.Since(start))
	return err
}

// resolveTable decodes the export at path with the first candidate encoding
// that both decodes and parses, then renames its columns to the dataset's
// canonical names.
func resolveTable(ctx context.Context, p config.Pipeline, path string) (*csv.Table, error) {
	canonical, err := transformer.Columns(p.Dataset)
	if err != nil {
		return nil, err
	}

	var res charset.Result
	err = step(p.Job, "resolve", func() error {
		r := &charset.Resolver{Candidates: p.Source.Encodings}
		var err error
		res, err = r.Resolve(ctx, openSourceFn(path), func(rd io.Reader) (*csv.Table, error) {
			tbl, err := csv.ReadTable(rd, p.Parser.Options)
			if err != nil {
				return nil, err
			}
			if err := tbl.Rename(canonical); err != nil {
				return nil, err
			}
			return tbl, nil
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	log.Printf("source: path=%s encoding=%s rows=%d skipped_lines=%d", path, res.Encoding, len(res.Table.Rows), res.Table.Skipped)
	metrics.RecordRow(p.Job, metrics.KindRead, int64(len(res.Table.Rows)))
	metrics.RecordRow(p.Job, metrics.KindSkippedLines, int64(res.Table.Skipped))
	return res.Table, nil
}

// normalize projects up to max rows of tbl onto SQL row tuples.
func normalize(p config.Pipeline, tbl *csv.Table) ([]string, transformer.Report, error) {
	var rep transformer.Report

	n, err := transformer.NewNormalizer(p.Normalize)
	if err != nil {
		return nil, rep, err
	}

	raws := tbl.Records(p.Runtime.MaxRows)
	tuples := make([]string, 0, len(raws))
	for _, raw := range raws {
		var (
			vals []any
			d    record.Defaulted
		)
		switch p.Dataset {
		case config.DatasetCar:
			c := n.Car(raw)
			vals, d = c.Values(), c.Defaulted
		case config.DatasetHouse:
			h := n.House(raw)
			vals, d = h.Values(), h.Defaulted
		default:
			return nil, rep, fmt.Errorf("unknown dataset %q", p.Dataset)
		}

		tup, err := sqlgen.Tuple(vals...)
		if err != nil {
			return nil, rep, fmt.Errorf("line %d: %w", raw.Line, err)
		}
		tuples = append(tuples, tup)
		rep.Add(d)
	}
	return tuples, rep, nil
}

// runGenerate reads the export, normalizes it, and writes one multi-row
// INSERT statement. With output.apply the statement is also executed on the
// live store.
func runGenerate(ctx context.Context, p config.Pipeline) error {
	tbl, err := resolveTable(ctx, p, p.Source.File.Path)
	if err != nil {
		return err
	}

	var (
		tuples []string
		rep    transformer.Report
	)
	if err := step(p.Job, "normalize", func() error {
		var err error
		tuples, rep, err = normalize(p, tbl)
		return err
	}); err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	logReport(p.Job, rep)

	ins := sqlgen.Insert{Table: p.Output.Table, Columns: p.Output.Columns, Preamble: p.Output.Preamble}
	var doc string
	if err := step(p.Job, "render", func() error {
		var err error
		doc, err = ins.Render(tuples)
		return err
	}); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	// Apply before writing so a failed apply leaves no artifact behind.
	if p.Output.Apply {
		if err := apply(ctx, p, ins, tuples); err != nil {
			return err
		}
	}

	if err := step(p.Job, "write", func() error { return sqlgen.WriteFile(p.Output.Path, doc) }); err != nil {
		return err
	}
	log.Printf("output: path=%s table=%s rows=%d", p.Output.Path, p.Output.Table, len(tuples))
	metrics.RecordRow(p.Job, metrics.KindEmitted, int64(len(tuples)))
	return nil
}

// apply executes the bare INSERT, without preamble, against the live store.
func apply(ctx context.Context, p config.Pipeline, ins sqlgen.Insert, tuples []string) error {
	stmt, err := ins.Statement(tuples)
	if err != nil {
		return err
	}
	repo, err := initRepository(ctx, p)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := step(p.Job, "apply", func() error { return repo.Exec(ctx, stmt) }); err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	log.Printf("apply: storage=%s table=%s rows=%d", p.Storage.Kind, p.Output.Table, len(tuples))
	return nil
}

// runRewrite patches the SetColumn literals of a previously generated SQL
// document with values from the authoritative export.
func runRewrite(ctx context.Context, p config.Pipeline) error {
	rc := p.Reconcile
	values, strategy, err := sourceValues(ctx, p)
	if err != nil {
		return err
	}

	b, err := os.ReadFile(rc.SQLPath)
	if err != nil {
		return fmt.Errorf("read sql document: %w", err)
	}
	doc := string(b)

	var (
		out string
		st  reconcile.Stats
	)
	if err := step(p.Job, "rewrite", func() error {
		var err error
		out, st, err = reconcile.RewriteSQL(doc, target(rc), values, strategy)
		return err
	}); err != nil {
		return err
	}
	recordStats(p.Job, st)

	prev, err := digestFile(rc.OutputPath)
	if err != nil {
		return err
	}
	if prev == xxh3.HashString(out) {
		log.Printf("rewrite: path=%s unchanged, write skipped", rc.OutputPath)
		return nil
	}
	if err := step(p.Job, "write", func() error { return sqlgen.WriteFile(rc.OutputPath, out) }); err != nil {
		return err
	}
	log.Printf("rewrite: path=%s rows=%d changed=%d", rc.OutputPath, st.Rows, st.Changed)
	return nil
}

// runUpdate sets SetColumn on every live row from the authoritative export,
// committing the whole batch in one transaction.
func runUpdate(ctx context.Context, p config.Pipeline) error {
	values, strategy, err := sourceValues(ctx, p)
	if err != nil {
		return err
	}

	repo, err := initRepository(ctx, p)
	if err != nil {
		return err
	}
	defer repo.Close()

	var st reconcile.Stats
	if err := step(p.Job, "update", func() error {
		var err error
		st, err = reconcile.UpdateStore(ctx, repo, target(p.Reconcile), values, strategy)
		return err
	}); err != nil {
		return err
	}
	recordStats(p.Job, st)
	return nil
}

// sourceValues resolves the authoritative export and extracts the value
// column used by both reconciliation modes.
func sourceValues(ctx context.Context, p config.Pipeline) ([]int64, reconcile.CorrespondenceStrategy, error) {
	rc := p.Reconcile
	strategy, err := reconcile.StrategyByName(rc.Strategy)
	if err != nil {
		return nil, nil, err
	}
	tbl, err := resolveTable(ctx, p, rc.SourcePath)
	if err != nil {
		return nil, nil, err
	}
	values, err := reconcile.Values(tbl, rc.ValueField, rc.RequireFields)
	if err != nil {
		return nil, nil, err
	}
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", rc.SourcePath, reconcile.ErrNoSourceValues)
	}
	log.Printf("reconcile: source=%s field=%s values=%d strategy=%s", rc.SourcePath, rc.ValueField, len(values), strategy.Name())
	return values, strategy, nil
}

// initRepository constructs the storage repository from the pipeline config and
// returns a backend-agnostic Repository.
func initRepository(ctx context.Context, p config.Pipeline) (Repository, error) {
	db := p.Storage.DB
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:     p.Storage.Kind,
		DSN:      db.DSN,
		Host:     db.Host,
		Port:     db.Port,
		User:     db.User,
		Password: db.Password,
		Database: db.Database,
		Params:   db.Params,
	})
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	log.Printf("storage: kind=%s host=%s database=%s", p.Storage.Kind, db.Host, db.Database)
	return repo, nil
}

func target(rc config.ReconcileConfig) reconcile.Target {
	return reconcile.Target{
		Table:     rc.Table,
		Columns:   rc.Columns,
		IDColumn:  rc.IDColumn,
		SetColumn: rc.SetColumn,
	}
}

// digestFile returns the xxh3 hash of path, or 0 when it does not exist.
func digestFile(path string) (uint64, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return xxh3.Hash(b), nil
}

// logReport prints the normalization summary and emits one counter per
// defaulted field.
func logReport(job string, rep transformer.Report) {
	log.Printf("summary: %s", rep)
	for field, n := range rep.Defaulted {
		metrics.RecordRow(job, metrics.DefaultedKind(field), int64(n))
	}
}

func recordStats(job string, st reconcile.Stats) {
	metrics.RecordRow(job, metrics.KindReconciledChanged, int64(st.Changed))
	metrics.RecordRow(job, metrics.KindReconciledUnchanged, int64(st.Unchanged))
}
