package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"sdn-te/internal/objectives"
)

// ObjectiveFile reads and writes an objective set as JSON or YAML. The
// document has one list per mode under the keys pass_by_paths, min_latency
// and max_bandwidth.
type ObjectiveFile struct {
	Path string
	// Format overrides detection from the file extension.
	Format Format
}

func (f *ObjectiveFile) format() (Format, error) {
	if f.Format != "" {
		return f.Format, nil
	}
	format, err := DetectFormat(f.Path)
	if err != nil {
		return "", err
	}
	if format != FormatJSON && format != FormatYAML {
		return "", fmt.Errorf("objective file %s: unsupported format %s", f.Path, format)
	}
	return format, nil
}

// Load reads the file. Objectives are not validated here; invalid entries
// are skipped at provisioning time.
func (f *ObjectiveFile) Load(ctx context.Context) (*objectives.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := f.format(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read objective file: %w", err)
	}
	return ParseObjectives(data)
}

// ParseObjectives decodes a JSON or YAML objective document.
func ParseObjectives(data []byte) (*objectives.Set, error) {
	set := &objectives.Set{}
	if err := yaml.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("failed to decode objectives: %w", err)
	}
	return set, nil
}

// Save overwrites the file with set.
func (f *ObjectiveFile) Save(ctx context.Context, set *objectives.Set) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format, err := f.format()
	if err != nil {
		return err
	}
	if set == nil {
		set = &objectives.Set{}
	}

	var data []byte
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(set)
	default:
		data, err = json.MarshalIndent(set, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode objectives: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write objective file: %w", err)
	}
	return nil
}
