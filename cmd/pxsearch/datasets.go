package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/pxsearch/internal/domain/dataset"
)

// datasetFile is the YAML document accepted by the index command.
type datasetFile struct {
	Datasets []dataset.Dataset `yaml:"datasets"`
}

func loadDatasets(path string) ([]dataset.Dataset, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read datasets %s: %w", path, err)
	}

	var f datasetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse datasets %s: %w", path, err)
	}
	return f.Datasets, nil
}
