// Package charset turns raw export bytes into a parsed table by trying an
// ordered list of candidate encodings until one both decodes and parses.
//
// Listing exports arrive as UTF-8, Latin-1, Latin-5 or Windows-1254 depending
// on who produced them, and nothing in the file says which. The resolver
// reads the file once and re-decodes the same bytes per attempt.
package charset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/saintfish/chardet"

	"listingetl/internal/datasource"
	"listingetl/internal/parser/csv"
)

// sniffLen is how much of the input the detector looks at.
const sniffLen = 4 << 10

// ErrNoEncoding is wrapped by ResolveError when every candidate failed.
var ErrNoEncoding = errors.New("charset: no candidate encoding could decode and parse the input")

// ParseFunc parses decoded UTF-8 text into a table.
type ParseFunc func(r io.Reader) (*csv.Table, error)

// Result is the outcome of a successful resolution.
type Result struct {
	Encoding string
	Table    *csv.Table
}

// Attempt records one failed candidate.
type Attempt struct {
	Encoding string
	Err      error
}

// ResolveError lists every failed attempt.
type ResolveError struct {
	Attempts []Attempt
}

func (e *ResolveError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrNoEncoding.Error() + " (no candidates configured)"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Encoding, a.Err)
	}
	return ErrNoEncoding.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ResolveError) Unwrap() error { return ErrNoEncoding }

// Resolver tries Candidates in order. A nil Logger uses the standard logger.
type Resolver struct {
	Candidates []string
	Logger     *log.Logger
}

// Resolve reads src fully, then decodes and parses it with each candidate
// encoding in order. The first candidate for which both steps succeed wins.
func (r *Resolver) Resolve(ctx context.Context, src datasource.Source, parse ParseFunc) (Result, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("charset: open source: %w", err)
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return Result{}, fmt.Errorf("charset: read source: %w", err)
	}
	return r.ResolveBytes(ctx, raw, parse)
}

// ResolveBytes is Resolve over an in-memory document.
func (r *Resolver) ResolveBytes(ctx context.Context, raw []byte, parse ParseFunc) (Result, error) {
	r.logHint(raw)

	var rerr ResolveError
	for i, name := range r.Candidates {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		tbl, err := attempt(raw, name, parse)
		if err != nil {
			r.printf("charset: attempt=%d encoding=%s status=failed err=%v", i+1, name, err)
			rerr.Attempts = append(rerr.Attempts, Attempt{Encoding: name, Err: err})
			continue
		}
		r.printf("charset: attempt=%d encoding=%s status=ok rows=%d skipped=%d", i+1, name, len(tbl.Rows), tbl.Skipped)
		return Result{Encoding: name, Table: tbl}, nil
	}
	return Result{}, &rerr
}

func attempt(raw []byte, name string, parse ParseFunc) (*csv.Table, error) {
	text, err := Decode(raw, name)
	if err != nil {
		return nil, err
	}
	tbl, err := parse(bytes.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return tbl, nil
}

// logHint logs the detector's best guess. It never changes the order.
func (r *Resolver) logHint(raw []byte) {
	peek := raw
	if len(peek) > sniffLen {
		peek = peek[:sniffLen]
	}
	if len(peek) == 0 {
		return
	}
	det, err := chardet.NewTextDetector().DetectBest(peek)
	if err != nil || det == nil {
		return
	}
	r.printf("charset: hint=%s confidence=%d candidates=%s", det.Charset, det.Confidence, strings.Join(r.Candidates, ","))
}

func (r *Resolver) printf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
