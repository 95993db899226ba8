package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// Scenario is a named sequence of list operations.
//
// Expect, when present, is the content of the list after the last step.
type Scenario struct {
	Name        string
	Description string
	Steps       []Step
	Expect      []int
}

// Step is a single operation applied to a list.
//
// Which fields are used depends on the operation. ExpectError takes the
// names returned by ErrorName.
type Step struct {
	// Op is the operation name (case-insensitive)
	Op string `json:"op" yaml:"op"`
	// Value is the payload of the node created by an insert operation
	Value int `json:"value,omitempty" yaml:"value,omitempty"`
	// Index is the position used by insertAtIndex, deleteAtIndex and getIndex
	Index int `json:"index,omitempty" yaml:"index,omitempty"`
	// Label names the inserted node; a label of a deleted node inserts that node again
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	// Anchor is the label of the node used by insertAfter and insertBefore
	Anchor string `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	// Expect is the value the operation must return (deleted or looked up payload, size)
	Expect *int `json:"expect,omitempty" yaml:"expect,omitempty"`
	// ExpectError is the name of the error the operation must fail with
	ExpectError string `json:"expectError,omitempty" yaml:"expectError,omitempty"`
}

// scenarioRaw is the serialized form of a Scenario.
type scenarioRaw struct {
	// Name of the scenario, defaults to the file name
	Name string `json:"name" yaml:"name"`
	// Description of what the scenario exercises
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Steps applied in order to a new list, the first failing step stops the scenario
	Steps []Step `json:"steps" yaml:"steps"`
	// Expect is the content of the list after the last step, not checked if missing
	Expect []int `json:"expect,omitempty" yaml:"expect,omitempty"`
}

func (s Scenario) intoRaw() scenarioRaw {
	return scenarioRaw{
		Name:        s.Name,
		Description: s.Description,
		Steps:       s.Steps,
		Expect:      s.Expect,
	}
}

func (raw scenarioRaw) into(result *Scenario) error {
	if result == nil {
		return errors.New("into called with nil result")
	}
	steps := make([]Step, 0, len(raw.Steps))
	for idx, step := range raw.Steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("deserialization error, step %d: %w", idx, err)
		}
		steps = append(steps, step)
	}
	result.Name = raw.Name
	result.Description = raw.Description
	result.Steps = steps
	result.Expect = raw.Expect
	return nil
}

// Validate checks that the operation and the expected error name are known.
func (step Step) Validate() error {
	if Lookup(step.Op) == nil {
		return fmt.Errorf("%w: '%s'", ErrUnknownOp, step.Op)
	}
	if len(step.ExpectError) > 0 && errorByName(step.ExpectError) == nil {
		return fmt.Errorf("%w: '%s'", ErrUnknownErrorName, step.ExpectError)
	}
	return nil
}

func (s *Scenario) UnmarshalJSON(b []byte) error {
	if s == nil {
		return errors.New("nil value passed as deserialization target")
	}
	var raw scenarioRaw
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	return raw.into(s)
}

func (s Scenario) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.intoRaw())
}

func (s *Scenario) UnmarshalYAML(unmarshal func(any) error) error {
	if s == nil {
		return errors.New("nil value passed as deserialization target")
	}
	var raw scenarioRaw
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return raw.into(s)
}

func (s Scenario) MarshalYAML() (any, error) {
	return s.intoRaw(), nil
}

// Parse decodes a scenario from data, format is either "json" or "yaml".
func Parse(data []byte, format string) (Scenario, error) {
	var s Scenario
	var err error
	switch strings.ToLower(format) {
	case "json":
		err = json.Unmarshal(data, &s)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &s)
	default:
		return s, fmt.Errorf("unknown scenario format '%s'", format)
	}
	return s, err
}

// Load reads a scenario file, the format is taken from the file extension
// (.json, anything else is parsed as yaml). An unnamed scenario is named
// after its file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	s, err := Parse(data, format)
	if err != nil {
		return s, fmt.Errorf("could not parse scenario %s: %w", path, err)
	}
	if len(s.Name) == 0 {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}
