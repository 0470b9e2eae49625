package config

import (
	"strconv"
	"strings"
	"sync"

	"smoothie-go-migration/pkg/errors"
)

// Section provides typed access to one config section. Option names
// are case-insensitive; every read is recorded for the unused-option
// check at startup.
type Section struct {
	name    string
	options map[string]string

	mu       sync.Mutex
	accessed map[string]struct{}
}

func newSection(name string, options map[string]string) *Section {
	opts := make(map[string]string, len(options))
	for k, v := range options {
		opts[strings.ToLower(k)] = v
	}
	return &Section{
		name:     name,
		options:  opts,
		accessed: make(map[string]struct{}),
	}
}

// GetName returns the section name.
func (s *Section) GetName() string {
	return s.name
}

func (s *Section) markAccessed(option string) {
	s.mu.Lock()
	s.accessed[strings.ToLower(option)] = struct{}{}
	s.mu.Unlock()
}

// GetUnusedOptions returns options never read through a getter.
func (s *Section) GetUnusedOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []string
	for opt := range s.options {
		if _, ok := s.accessed[opt]; !ok {
			result = append(result, opt)
		}
	}
	return result
}

// HasOption checks whether an option is present.
func (s *Section) HasOption(option string) bool {
	_, ok := s.options[strings.ToLower(option)]
	return ok
}

// Get returns a string option. A fallback makes the option optional;
// without one a missing option is an error.
func (s *Section) Get(option string, fallback ...string) (string, error) {
	if v, ok := s.options[strings.ToLower(option)]; ok {
		s.markAccessed(option)
		return v, nil
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return "", errors.ConfigOptionError(s.name, option)
}

// GetInt returns an integer option.
func (s *Section) GetInt(option string, fallback ...int) (int, error) {
	if v, ok := s.options[strings.ToLower(option)]; ok {
		s.markAccessed(option)
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, errors.ConfigTypeError(s.name, option, v, "integer")
		}
		return i, nil
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return 0, errors.ConfigOptionError(s.name, option)
}

// GetFloat returns a float option.
func (s *Section) GetFloat(option string, fallback ...float64) (float64, error) {
	if v, ok := s.options[strings.ToLower(option)]; ok {
		s.markAccessed(option)
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errors.ConfigTypeError(s.name, option, v, "float")
		}
		return f, nil
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return 0, errors.ConfigOptionError(s.name, option)
}

// GetFloatAbove returns a float option that must be strictly greater
// than the bound.
func (s *Section) GetFloatAbove(option string, above float64, fallback ...float64) (float64, error) {
	v, err := s.GetFloat(option, fallback...)
	if err != nil {
		return 0, err
	}
	if v <= above {
		return 0, errors.ConfigTypeError(s.name, option,
			strconv.FormatFloat(v, 'f', -1, 64),
			"value above "+strconv.FormatFloat(above, 'f', -1, 64))
	}
	return v, nil
}

// GetBool returns a boolean option. Accepts 1/true/yes/on and
// 0/false/no/off.
func (s *Section) GetBool(option string, fallback ...bool) (bool, error) {
	if v, ok := s.options[strings.ToLower(option)]; ok {
		s.markAccessed(option)
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off":
			return false, nil
		}
		return false, errors.ConfigTypeError(s.name, option, v, "boolean")
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return false, errors.ConfigOptionError(s.name, option)
}

// GetChoice returns a string option restricted to the given choices.
// Matching is case-insensitive; the canonical choice is returned.
func (s *Section) GetChoice(option string, choices []string, fallback ...string) (string, error) {
	v, err := s.Get(option, fallback...)
	if err != nil {
		return "", err
	}
	for _, choice := range choices {
		if strings.EqualFold(v, choice) {
			return choice, nil
		}
	}
	return "", errors.ConfigTypeError(s.name, option, v,
		"one of "+strings.Join(choices, "/"))
}
