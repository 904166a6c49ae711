package main

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the settings for one run. It is read from a TOML file
// and then overridden by any flags given on the command line.
type Config struct {
	Program string  `toml:"program"`
	Set     string  `toml:"set"`
	Memory  int     `toml:"memory"`
	Input   []int64 `toml:"input"`
	Steps   int     `toml:"steps"`
	Trace   bool    `toml:"trace"`
	Patch   []Patch `toml:"patch"`
	Circuit Circuit `toml:"circuit"`
}

// Patch overwrites one word of memory before the run starts.
type Patch struct {
	Addr  int64 `toml:"addr"`
	Value int64 `toml:"value"`
}

// Circuit configures an amplifier run.
type Circuit struct {
	Phases []int64 `toml:"phases"`
	Loop   bool    `toml:"loop"`
	Signal int64   `toml:"signal"`
	Search bool    `toml:"search"`
}

func defaultConfig() Config { return Config{Set: "io"} }

// loadConfig reads a run file. A relative program path is taken relative
// to the directory holding the file.
func loadConfig(file string) (Config, error) {
	cfg := defaultConfig()
	md, err := toml.DecodeFile(file, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", file, err)
	}
	if un := md.Undecoded(); len(un) > 0 {
		return cfg, fmt.Errorf("%s: unknown key %q", file, un[0].String())
	}
	if cfg.Program != "" && !filepath.IsAbs(cfg.Program) {
		cfg.Program = filepath.Join(filepath.Dir(file), cfg.Program)
	}
	return cfg, nil
}
