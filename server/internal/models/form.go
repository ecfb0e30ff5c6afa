package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FormField describes one input of the calculator form.
type FormField struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Section     string   `yaml:"section"`
	Type        string   `yaml:"type"` // number or select
	Unit        string   `yaml:"unit,omitempty"`
	Min         string   `yaml:"min,omitempty"`
	Max         string   `yaml:"max,omitempty"`
	Step        string   `yaml:"step,omitempty"`
	Default     string   `yaml:"default,omitempty"`
	Placeholder string   `yaml:"placeholder,omitempty"`
	Options     []Option `yaml:"options"`
}

// Option struct for select choices
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// FormDefinition holds all fields of the calculator form, in display order.
type FormDefinition struct {
	Title  string      `yaml:"title"`
	Fields []FormField `yaml:"fields"`
}

// LoadFormDefinition reads and parses the form.yaml file
func LoadFormDefinition(path string) (*FormDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form file: %w", err)
	}

	var def FormDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form YAML: %w", err)
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

func (d *FormDefinition) validate() error {
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.ID == "" {
			return fmt.Errorf("form field without id (label %q)", f.Label)
		}
		if seen[f.ID] {
			return fmt.Errorf("duplicate form field %q", f.ID)
		}
		seen[f.ID] = true
		if f.Type != "number" && f.Type != "select" {
			return fmt.Errorf("form field %q: unknown type %q", f.ID, f.Type)
		}
	}
	for _, id := range PredictorFields {
		if !seen[id] {
			return fmt.Errorf("form is missing predictor field %q", id)
		}
	}
	return nil
}

// Defaults returns the default value of every field that declares one.
func (d *FormDefinition) Defaults() map[string]string {
	defaults := make(map[string]string)
	for _, f := range d.Fields {
		if f.Default != "" {
			defaults[f.ID] = f.Default
		}
	}
	return defaults
}

// Sections groups fields by section, keeping first-seen section order.
func (d *FormDefinition) Sections() []FormSection {
	var sections []FormSection
	index := make(map[string]int)
	for _, f := range d.Fields {
		i, ok := index[f.Section]
		if !ok {
			i = len(sections)
			index[f.Section] = i
			sections = append(sections, FormSection{Name: f.Section})
		}
		sections[i].Fields = append(sections[i].Fields, f)
	}
	return sections
}

// FormSection is a titled group of fields.
type FormSection struct {
	Name   string
	Fields []FormField
}
