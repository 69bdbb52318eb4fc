// Package parser loads topologies and traffic-engineering objectives from
// files and databases, and saves objectives back.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"sdn-te/internal/objectives"
)

// ObjectiveProvider loads and saves a complete objective set.
type ObjectiveProvider interface {
	Load(ctx context.Context) (*objectives.Set, error)
	Save(ctx context.Context, set *objectives.Set) error
}

// Provider kinds accepted by OpenObjectiveProvider.
const (
	ProviderFile    = "file"
	ProviderMariaDB = "mariadb"
)

// OpenObjectiveProvider returns the provider of the given kind. location is
// a file path for "file" and a DSN for "mariadb". The returned close function
// releases the provider's resources and is never nil.
func OpenObjectiveProvider(kind, location string) (ObjectiveProvider, func() error, error) {
	switch strings.ToLower(kind) {
	case ProviderFile, "":
		if location == "" {
			return nil, nil, fmt.Errorf("file provider requires a path")
		}
		return &ObjectiveFile{Path: location}, func() error { return nil }, nil
	case ProviderMariaDB, "mysql", "db":
		if location == "" {
			return nil, nil, fmt.Errorf("mariadb provider requires a DSN")
		}
		p, err := NewMariaDBObjectives(location)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown objective provider: %s", kind)
	}
}

// Format is a file encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatCSV     Format = "csv"
	FormatGraphML Format = "graphml"
)

// DetectFormat infers the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	case ".graphml", ".xml":
		return FormatGraphML, nil
	default:
		return "", fmt.Errorf("cannot infer format of %q", path)
	}
}
