package main

import (
	"github.com/mewkiz/pkg/jsonutil"
	"github.com/mewkiz/pkg/osutil"
)

// config is the optional yelkovan.json override of the working
// directory's input selection. Absent the file, plain directory
// scanning is the sole source of inputs.
type config struct {
	Assembly string   `json:"assembly"`
	Traces   []string `json:"traces"`
}

// loadConfig parses jsonPath into a config. A missing file is not an
// error: it just means directory scanning decides everything.
func loadConfig(jsonPath string) (*config, error) {
	if !osutil.Exists(jsonPath) {
		dbg.Printf("no %q override found; using directory scan", jsonPath)
		return nil, nil
	}
	dbg.Printf("loadConfig(jsonPath = %q)", jsonPath)
	var cfg config
	if err := jsonutil.ParseFile(jsonPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
