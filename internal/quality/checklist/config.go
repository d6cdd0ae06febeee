package checklist

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidChecklist = errors.New("invalid checklist")

// File is the on-disk checklist format.
type File struct {
	MinimumScore *int   `yaml:"minimumScore,omitempty"`
	Checks       []Spec `yaml:"checks"`
}

// Config is a validated checklist file. MinimumScore is nil when the file leaves
// the acceptance threshold to the caller.
type Config struct {
	MinimumScore *int
	Checks       []CheckDefinition
}

// Load reads and validates a checklist YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read checklist %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("checklist %s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidChecklist, err)
	}
	if file.MinimumScore != nil && (*file.MinimumScore < 0 || *file.MinimumScore > 100) {
		return Config{}, fmt.Errorf("%w: minimumScore %d out of range 0-100", ErrInvalidChecklist, *file.MinimumScore)
	}
	checks, err := CompileAll(file.Checks)
	if err != nil {
		return Config{}, err
	}
	return Config{MinimumScore: file.MinimumScore, Checks: checks}, nil
}

// DefaultFile renders the illustrative checklist as YAML, suitable as a starting config.
func DefaultFile(minimumScore int) ([]byte, error) {
	file := File{MinimumScore: &minimumScore, Checks: DefaultSpecs()}
	return yaml.Marshal(file)
}
