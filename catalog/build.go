package catalog

import (
	"fmt"

	"github.com/streamkit/streamkit/errors"
	"github.com/streamkit/streamkit/stream"
)

// Build resolves each named part against the registry and composes them
// left to right. Composition and type errors surface unchanged.
func Build(def *Definition, reg *Registry) (stream.Part, error) {
	if def == nil || len(def.Parts) == 0 {
		return nil, errors.InvalidInput("parts", "pipeline defines no parts")
	}
	resolved := make([]stream.Part, 0, len(def.Parts))
	for _, name := range def.Parts {
		p, err := reg.Get(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, p)
	}
	return stream.Chain(resolved...)
}

// BuildProcess is Build for complete pipelines: the composed result must be
// runnable. The returned process is named after the definition.
func BuildProcess(def *Definition, reg *Registry) (*stream.Process, error) {
	part, err := Build(def, reg)
	if err != nil {
		return nil, err
	}
	proc, ok := part.(*stream.Process)
	if !ok {
		return nil, errors.Configuration(fmt.Sprintf(
			"pipeline %q composes to %s, not a runnable process (it needs a producer first and a consumer last)",
			def.Name, stream.Describe(part)))
	}
	return proc.WithName(def.Name), nil
}
