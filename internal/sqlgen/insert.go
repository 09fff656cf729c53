package sqlgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Insert describes the target of a multi-row INSERT statement.
type Insert struct {
	Table   string
	Columns []string

	// Preamble lines are written before the statement, followed by a blank
	// line.
	Preamble []string
}

// Header returns "INSERT INTO table (c1, c2) VALUES".
func (ins Insert) Header() string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES", ins.Table, strings.Join(ins.Columns, ", "))
}

// Render returns the full statement: preamble, header, tuples separated by
// ",\n" and a single terminating ";\n".
func (ins Insert) Render(tuples []string) (string, error) {
	if len(tuples) == 0 {
		return "", ErrNoRows
	}
	var b strings.Builder
	if len(ins.Preamble) > 0 {
		for _, l := range ins.Preamble {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString(ins.Header())
	b.WriteByte('\n')
	b.WriteString(strings.Join(tuples, ",\n"))
	b.WriteString(";\n")
	return b.String(), nil
}

// Statement returns the INSERT without preamble, for executing against a
// live store.
func (ins Insert) Statement(tuples []string) (string, error) {
	plain := ins
	plain.Preamble = nil
	return plain.Render(tuples)
}

// WriteFile replaces path with content in one step: the text goes to a temp
// file in the same directory which is then renamed over path.
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("sqlgen: create temp in %s: %w", dir, err)
	}
	name := tmp.Name()
	defer func() {
		if name != "" {
			_ = os.Remove(name)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("sqlgen: write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sqlgen: sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("sqlgen: close %s: %w", name, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return fmt.Errorf("sqlgen: chmod %s: %w", name, err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("sqlgen: rename to %s: %w", path, err)
	}
	name = ""
	return nil
}
