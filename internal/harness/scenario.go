package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is an input script: a program, the host input to feed it and the
// assertions the resulting trace must satisfy.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Program is the path of the Lua source, relative to the scenario file.
	Program string `yaml:"program"`

	// Size is the canvas width and height. Zero means the host default.
	Size int `yaml:"size,omitempty"`

	// Offset places the canvas origin in page coordinates.
	Offset *Point `yaml:"offset,omitempty"`

	// QuietPeriod overrides the pointer-move coalescing window.
	QuietPeriod string `yaml:"quiet_period,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Source is the program text. LoadScenario fills it from Program;
	// scenarios built in code may set it directly.
	Source string `yaml:"-"`
}

// Point is a pair of pixel coordinates.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Step is one scripted host action. Exactly one field is set.
type Step struct {
	KeyDown      *int         `yaml:"key_down,omitempty"`
	KeyUp        *int         `yaml:"key_up,omitempty"`
	Pointer      *PointerStep `yaml:"pointer,omitempty"`
	Advance      string       `yaml:"advance,omitempty"`
	Hover        *Point       `yaml:"hover,omitempty"`
	Highlight    *bool        `yaml:"highlight,omitempty"`
	HighlightAll *bool        `yaml:"highlight_all,omitempty"`
	Edit         *EditStep    `yaml:"edit,omitempty"`
	Checkpoint   bool         `yaml:"checkpoint,omitempty"`
	Rerun        bool         `yaml:"rerun,omitempty"`
}

// PointerStep is a pointer event over the canvas, in page coordinates.
type PointerStep struct {
	Type string `yaml:"type"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// EditStep replaces the program and keeps the first Keep logged events.
type EditStep struct {
	Program string `yaml:"program"`
	Keep    int    `yaml:"keep"`

	Source string `yaml:"-"`
}

// Assertion checks the outcome of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Handler is the handler name counted by trace_count.
	Handler string `yaml:"handler,omitempty"`

	// Handlers is the expected first-delivery order for trace_order.
	Handlers []string `yaml:"handlers,omitempty"`

	// Count is the expected number for trace_count and log_length.
	Count int `yaml:"count,omitempty"`

	// X, Y and Site describe a pick: hovering the pixel must highlight a
	// call made at Site.
	X    int    `yaml:"x,omitempty"`
	Y    int    `yaml:"y,omitempty"`
	Site string `yaml:"site,omitempty"`
}

// Assertion types.
const (
	AssertTraceCount = "trace_count"
	AssertTraceOrder = "trace_order"
	AssertLogLength  = "log_length"
	AssertPick       = "pick"
	AssertNoErrors   = "no_errors"
)

// LoadScenario reads, validates and decodes a scenario file, then reads the
// programs it references.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario validates and decodes scenario YAML. Program paths are
// resolved against baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	if err := ValidateScenario(data); err != nil {
		return nil, err
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	var err error
	s.Source, err = readProgram(baseDir, s.Program)
	if err != nil {
		return nil, err
	}
	for i := range s.Steps {
		if e := s.Steps[i].Edit; e != nil {
			if e.Source, err = readProgram(baseDir, e.Program); err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
	}
	return &s, nil
}

func readProgram(baseDir, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read program: %w", err)
	}
	return string(src), nil
}

// check covers what the schema cannot express.
func (s *Scenario) check() error {
	if s.QuietPeriod != "" {
		if _, err := time.ParseDuration(s.QuietPeriod); err != nil {
			return fmt.Errorf("quiet_period: %w", err)
		}
	}
	for i, st := range s.Steps {
		if st.Advance != "" {
			if _, err := time.ParseDuration(st.Advance); err != nil {
				return fmt.Errorf("steps[%d].advance: %w", i, err)
			}
		}
	}
	return nil
}

// quietPeriod returns the parsed quiet period, zero for the default.
func (s *Scenario) quietPeriod() time.Duration {
	d, _ := time.ParseDuration(s.QuietPeriod)
	return d
}
