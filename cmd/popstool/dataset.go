package main

import (
	"os"

	"github.com/remnrem/luna-core/corpus"
	fspec "github.com/remnrem/luna-core/feature/spec"
)

// readCorpus opens path and reads every block against sp's level-1
// column layout.
func readCorpus(path string, sp *fspec.Spec) (*corpus.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return corpus.Read(f, level1Names(sp))
}

// lgbmConfig resolves the LightGBM parameter string: a user-supplied
// config file's contents if configPath names one, else fallback
// (original_source/pops/pops.cpp's "lgbm_config == '.'" branch, where
// fallback is POPS's own per-class-count default).
func lgbmConfig(configPath string, fallback string) (string, error) {
	if configPath == "" || configPath == "." {
		return fallback, nil
	}
	b, err := os.ReadFile(configPath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
