package charset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"listingetl/internal/config"
	"listingetl/internal/parser/csv"
)

type memSource []byte

func (m memSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m)), nil
}

func parseCSV(r io.Reader) (*csv.Table, error) { return csv.ReadTable(r, config.Options{}) }

func newResolver(buf *bytes.Buffer, cands ...string) *Resolver {
	return &Resolver{Candidates: cands, Logger: log.New(buf, "", 0)}
}

// cp1254 bytes for "Yıl,Şehir\n2015,İzmir\n": 0xFD=ı 0xDE=Ş 0xDD=İ.
var cp1254Doc = []byte("Y\xfdl,\xdeehir\n2015,\xddzmir\n")

func TestResolve_UTF8Wins(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := newResolver(&logs, "utf-8", "latin-1")
	res, err := r.Resolve(context.Background(), memSource("\xef\xbb\xbfYıl,Model\n2015,Egea\n"), parseCSV)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Encoding != "utf-8" {
		t.Fatalf("encoding = %q, want utf-8", res.Encoding)
	}
	if res.Table.Header[0] != "Yıl" {
		t.Fatalf("header[0] = %q, want BOM stripped", res.Table.Header[0])
	}
	if !strings.Contains(logs.String(), "charset: attempt=1 encoding=utf-8 status=ok") {
		t.Fatalf("missing ok log line:\n%s", logs.String())
	}
}

func TestResolve_FallsBackInOrder(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := newResolver(&logs, "utf-8", "cp1254", "latin-1")
	res, err := r.Resolve(context.Background(), memSource(cp1254Doc), parseCSV)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Encoding != "cp1254" {
		t.Fatalf("encoding = %q, want cp1254", res.Encoding)
	}
	if got := res.Table.Header; got[0] != "Yıl" || got[1] != "Şehir" {
		t.Fatalf("header = %q", got)
	}
	if got := res.Table.Rows[0][1]; got != "İzmir" {
		t.Fatalf("row = %q", got)
	}
	out := logs.String()
	if !strings.Contains(out, "attempt=1 encoding=utf-8 status=failed") ||
		!strings.Contains(out, "attempt=2 encoding=cp1254 status=ok") {
		t.Fatalf("unexpected attempt log:\n%s", out)
	}
	if strings.Contains(out, "encoding=latin-1") {
		t.Fatalf("later candidates must not be tried after success:\n%s", out)
	}
}

func TestResolve_ParseFailureTriesNext(t *testing.T) {
	t.Parallel()

	calls := 0
	parse := func(r io.Reader) (*csv.Table, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return parseCSV(r)
	}
	var logs bytes.Buffer
	res, err := newResolver(&logs, "utf-8", "latin-1").Resolve(context.Background(), memSource("a,b\n1,2\n"), parse)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Encoding != "latin-1" || calls != 2 {
		t.Fatalf("encoding=%q calls=%d", res.Encoding, calls)
	}
}

func TestResolve_AllFail(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := newResolver(&logs, "utf-8", "klingon")
	_, err := r.Resolve(context.Background(), memSource(cp1254Doc), parseCSV)
	if !errors.Is(err, ErrNoEncoding) {
		t.Fatalf("err = %v, want ErrNoEncoding", err)
	}
	var re *ResolveError
	if !errors.As(err, &re) || len(re.Attempts) != 2 {
		t.Fatalf("err = %#v, want 2 attempts", err)
	}
	if !strings.Contains(re.Attempts[1].Err.Error(), "unsupported encoding") {
		t.Fatalf("attempt 2 err = %v", re.Attempts[1].Err)
	}

	_, err = newResolver(&logs).Resolve(context.Background(), memSource("a\n"), parseCSV)
	if !errors.Is(err, ErrNoEncoding) {
		t.Fatalf("no candidates: err = %v", err)
	}
}

func TestResolve_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var logs bytes.Buffer
	_, err := newResolver(&logs, "utf-8").ResolveBytes(ctx, []byte("a\n"), parseCSV)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		enc     string
		in      []byte
		want    string
		wantErr bool
	}{
		{"utf8 strict rejects latin byte", "utf-8", []byte("caf\xe9"), "", true},
		{"utf8 alias and case", "UTF8", []byte("café"), "café", false},
		{"latin-1", "latin-1", []byte("caf\xe9"), "café", false},
		{"iso-8859-9 dotless i", "iso-8859-9", []byte("\xfd"), "ı", false},
		{"latin-5 alias", "Latin_5", []byte("\xfe"), "ş", false},
		{"cp1254 undefined byte", "cp1254", []byte("a\x81b"), "", true},
		{"windows-1254 euro", "windows-1254", []byte("\x80"), "€", false},
		{"cp1252", "cp1252", []byte("\x93x\x94"), "“x”", false},
		{"utf-16 le with bom", "utf-16", []byte{0xFF, 0xFE, 'a', 0, 0x31, 0x01}, "aı", false},
		{"utf-16 be with bom", "utf-16", []byte{0xFE, 0xFF, 0, 'a'}, "a", false},
		{"utf-16 no bom defaults le", "utf-16", []byte{'a', 0}, "a", false},
		{"utf-16 odd length", "utf-16", []byte{'a', 0, 'b'}, "", true},
		{"unknown", "ebcdic", []byte("x"), "", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode(tt.in, tt.enc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Fatalf("Decode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	t.Parallel()

	for _, name := range config.DefaultEncodings {
		if !Supported(name) {
			t.Errorf("default encoding %q not supported", name)
		}
	}
	if Supported("ebcdic") {
		t.Error("ebcdic should not be supported")
	}
}
