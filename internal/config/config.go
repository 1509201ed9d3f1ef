// Package config loads pipeline configuration from an optional YAML file
// over compiled-in defaults for the darcs-devel mailing list.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultFooter = `_______________________________________________
darcs-devel mailing list
darcs-devel@darcs.net
http://www.abridgegame.org/cgi-bin/mailman/listinfo/darcs-devel
`

// Config holds everything the ingestion pipeline needs to know about the
// mailing list and the local database.
type Config struct {
	// DatabaseDir is the directory holding the sqlite database file.
	DatabaseDir string `yaml:"database_dir"`

	// SubjectPrefix is the mailing list tag stripped from subjects.
	SubjectPrefix string `yaml:"subject_prefix"`

	// Footer is the list signature block; parts whose body equals it are
	// ignored and it is stripped from stored content.
	Footer string `yaml:"footer"`

	// Media types driving part classification.
	PatchType   string `yaml:"patch_type"`
	BundleType  string `yaml:"bundle_type"`
	CommentType string `yaml:"comment_type"`

	// Workers bounds the decode fan-out; zero means one worker per CPU.
	Workers int `yaml:"workers"`

	// Debug enables SQL query logging.
	Debug bool `yaml:"debug"`
}

func Default() *Config {
	return &Config{
		DatabaseDir:   ".",
		SubjectPrefix: "[darcs-devel] ",
		Footer:        defaultFooter,
		PatchType:     "text/x-patch",
		BundleType:    "text/x-darcs-patch",
		CommentType:   "text/plain",
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}
