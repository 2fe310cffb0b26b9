package task

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Definition is a task declared in a TOML definitions file.
type Definition struct {
	Title        string   `toml:"title"`
	Objective    string   `toml:"objective"`
	Priority     string   `toml:"priority"`
	Requirements []string `toml:"requirements"`
	Constraints  []string `toml:"constraints"`
}

type definitionsFile struct {
	Tasks []Definition `toml:"task"`
}

// ParseDefinitions parses a TOML task definitions document.
//
// The expected shape is a list of [[task]] tables:
//
//	[[task]]
//	title = "Fix automation reload"
//	objective = "Reload automations without a full restart"
//	priority = "high"
//	requirements = ["Execute systemctl reload hearth-backend"]
func ParseDefinitions(data []byte) ([]Definition, error) {
	var file definitionsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse task definitions: %w", err)
	}

	for i, def := range file.Tasks {
		if def.Title == "" {
			return nil, fmt.Errorf("task definition %d: %w", i+1, ErrEmptyTitle)
		}
	}

	return file.Tasks, nil
}

// LoadDefinitions reads and parses a TOML task definitions file.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task definitions: %w", err)
	}
	return ParseDefinitions(data)
}

// ToTask materializes the definition as a pending Task.
func (d Definition) ToTask() (*Task, error) {
	return New(d.Title, d.Objective, d.Requirements,
		WithPriority(ParsePriority(d.Priority)),
		WithConstraints(d.Constraints),
	)
}
