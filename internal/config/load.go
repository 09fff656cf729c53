package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads a pipeline file, decodes it as YAML when the extension is
// .yaml/.yml and as JSON otherwise, expands ${VAR} references in the storage
// section, and applies defaults.
func Load(path string) (Pipeline, error) {
	var p Pipeline

	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &p); err != nil {
			return p, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &p); err != nil {
			return p, fmt.Errorf("parse json config %s: %w", path, err)
		}
	}

	p.expandEnv()
	p.ApplyDefaults()
	return p, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error when optional
// is true, which is how the default ".env" is treated.
func LoadEnvFile(path string, optional bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// expandEnv substitutes ${VAR} and $VAR in connection settings so that
// credentials can live outside the pipeline file.
func (p *Pipeline) expandEnv() {
	db := &p.Storage.DB
	db.DSN = os.ExpandEnv(db.DSN)
	db.Host = os.ExpandEnv(db.Host)
	db.User = os.ExpandEnv(db.User)
	db.Password = os.ExpandEnv(db.Password)
	db.Database = os.ExpandEnv(db.Database)
	for k, v := range db.Params {
		db.Params[k] = os.ExpandEnv(v)
	}
}
