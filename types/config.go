package types

import (
	"errors"
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

// Range is a closed interval swept by the parameter grid search.
type Range struct {
	Lower float64 `yaml:"lower" json:"lower"`
	Upper float64 `yaml:"upper" json:"upper"`
}

func (r Range) validate(name string) error {
	if r.Lower > r.Upper {
		return fmt.Errorf("%s: lower bound %v is greater than upper bound %v", name, r.Lower, r.Upper)
	}
	return nil
}

type TuningSettings struct {
	Trials            int   `yaml:"trials" json:"trials"`
	DEmission         Range `yaml:"d_emission" json:"d_emission"`
	DTransition       Range `yaml:"d_transition" json:"d_transition"`
	Lambda1Emission   Range `yaml:"lambda1_emission" json:"lambda1_emission"`
	Lambda1Transition Range `yaml:"lambda1_transition" json:"lambda1_transition"`
	NEmission         Range `yaml:"n_emission" json:"n_emission"`
	NTransition       Range `yaml:"n_transition" json:"n_transition"`
}

func DefaultTuningSettings() TuningSettings {
	return TuningSettings{
		Trials:            3,
		DEmission:         Range{Lower: 0, Upper: 0.2},
		DTransition:       Range{Lower: 0, Upper: 0.4},
		Lambda1Emission:   Range{Lower: 0.85, Upper: 1},
		Lambda1Transition: Range{Lower: 0.6, Upper: 1},
		NEmission:         Range{Lower: 0, Upper: 0.6},
		NTransition:       Range{Lower: 0, Upper: 0.3},
	}
}

func (s TuningSettings) Validate() error {
	if s.Trials < 1 {
		return errors.New("trials must be at least 1")
	}
	checks := []struct {
		name string
		r    Range
	}{
		{"d_emission", s.DEmission},
		{"d_transition", s.DTransition},
		{"lambda1_emission", s.Lambda1Emission},
		{"lambda1_transition", s.Lambda1Transition},
		{"n_emission", s.NEmission},
		{"n_transition", s.NTransition},
	}
	for _, c := range checks {
		if err := c.r.validate(c.name); err != nil {
			return err
		}
	}
	if s.Lambda1Emission.Lower < 0 || s.Lambda1Emission.Upper > 1 ||
		s.Lambda1Transition.Lower < 0 || s.Lambda1Transition.Upper > 1 {
		return errors.New("lambda ranges must lie within [0, 1]")
	}
	return nil
}

// LoadTuningSettings reads a YAML settings file. Keys missing from the file
// keep their default values. An empty path returns the defaults.
func LoadTuningSettings(filePath string) (TuningSettings, error) {
	settings := DefaultTuningSettings()
	if filePath == "" {
		return settings, nil
	}

	buf, err := ioutil.ReadFile(filePath)
	if err != nil {
		return settings, fmt.Errorf("read tuning settings: %w", err)
	}
	if err := yaml.Unmarshal(buf, &settings); err != nil {
		return settings, fmt.Errorf("parse tuning settings %s: %w", filePath, err)
	}
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid tuning settings %s: %w", filePath, err)
	}
	return settings, nil
}
