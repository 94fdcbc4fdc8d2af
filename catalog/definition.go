package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/streamkit/streamkit/validation"
)

// nameRE keeps pipeline names usable as file names, log fields, and metric
// labels.
var nameRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)

// Definition is a YAML-defined pipeline: an ordered list of named parts
// composed left to right.
type Definition struct {
	// Name is the pipeline identifier.
	Name string `yaml:"name"`
	// Description is free-form documentation.
	Description string `yaml:"description,omitempty"`
	// Parts lists registry lookup keys in composition order.
	Parts []string `yaml:"parts"`
}

// Validate checks the definition shape before any registry lookups.
func (d *Definition) Validate() error {
	v := validation.New().
		Required("name", d.Name).
		MaxLength("name", d.Name, 128).
		Pattern("name", d.Name, nameRE).
		Min("parts", len(d.Parts), 1)
	for i, p := range d.Parts {
		v.Custom(strings.TrimSpace(p) != "", fmt.Sprintf("parts[%d]", i), "must name a part")
	}
	return v.Err()
}
