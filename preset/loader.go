package preset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/vortex-fintech/go-mask/errors"
)

// File is the YAML layout of a preset file:
//
//	presets:
//	  - name: iban-br
//	    masks: ["AA## #### #### #### #### #### #"]
//	    description: Brazilian IBAN
type File struct {
	Presets []Preset `yaml:"presets"`
}

// Decode reads one YAML document. Unknown keys are rejected. An empty input
// decodes to no presets.
func Decode(r io.Reader) ([]Preset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, apperrors.InvalidArgument().
			WithReason("malformed_preset_file").
			WithDetail("cause", err.Error())
	}
	return f.Presets, nil
}

// Load decodes presets from r and registers them. It returns how many were added.
func (r *Registry) Load(src io.Reader) (int, error) {
	presets, err := Decode(src)
	if err != nil {
		return 0, err
	}
	if err := r.Register(presets...); err != nil {
		return 0, err
	}
	return len(presets), nil
}

// LoadFile is Load on the file at path.
func (r *Registry) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open preset file: %w", err)
	}
	defer f.Close()

	n, err := r.Load(f)
	if err != nil {
		return 0, fmt.Errorf("load preset file %s: %w", path, err)
	}
	return n, nil
}
