// Package config parses ini-style host configuration files with
// option access tracking, so unused sections and options can be
// reported after startup.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"smoothie-go-migration/pkg/errors"
)

// Config provides access to a parsed configuration file.
type Config struct {
	mu       sync.RWMutex
	sections map[string]*Section
	order    []string

	accessedSections map[string]struct{}
}

// New creates an empty Config.
func New() *Config {
	return &Config{
		sections:         make(map[string]*Section),
		accessedSections: make(map[string]struct{}),
	}
}

// Load reads a configuration file. [include path] directives pull in
// other files relative to the including file; globs are allowed.
func Load(path string) (*Config, error) {
	c := New()
	visited := make(map[string]bool)
	if err := c.parseFile(path, visited); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadString parses configuration data held in memory. Include
// directives are not supported in this form.
func LoadString(data string) (*Config, error) {
	c := New()
	if err := c.parseLines(strings.Split(data, "\n"), "", nil); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) parseFile(path string, visited map[string]bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: invalid path %s: %w", path, err)
	}
	if visited[abs] {
		return fmt.Errorf("config: recursive include: %s", path)
	}
	visited[abs] = true
	defer func() { visited[abs] = false }()

	f, err := os.Open(abs)
	if err != nil {
		return fmt.Errorf("config: unable to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("config: error reading %s: %w", path, err)
	}

	return c.parseLines(lines, filepath.Dir(abs), visited)
}

// parseLines is the shared parser core. dir and visited are empty for
// in-memory parsing, which disables include handling.
func (c *Config) parseLines(lines []string, dir string, visited map[string]bool) error {
	var currentSection string
	var currentOptions map[string]string

	for lineNum, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if idx := strings.IndexAny(line, "#;"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
			if line == "" {
				continue
			}
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if currentSection != "" {
				c.addSection(currentSection, currentOptions)
			}
			header := strings.TrimSpace(line[1 : len(line)-1])
			if header == "" {
				return fmt.Errorf("config: empty section header at line %d", lineNum+1)
			}

			if strings.HasPrefix(header, "include ") {
				if visited == nil {
					return fmt.Errorf("config: include not supported at line %d", lineNum+1)
				}
				if err := c.handleInclude(strings.TrimSpace(header[8:]), dir, visited); err != nil {
					return err
				}
				currentSection = ""
				currentOptions = nil
				continue
			}

			currentSection = header
			currentOptions = make(map[string]string)
			continue
		}

		// Options outside any section are ignored.
		if currentSection == "" {
			continue
		}

		kv := strings.SplitN(line, ":", 2)
		if len(kv) != 2 {
			kv = strings.SplitN(line, "=", 2)
		}
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		if key == "" {
			continue
		}
		currentOptions[key] = strings.TrimSpace(kv[1])
	}

	if currentSection != "" {
		c.addSection(currentSection, currentOptions)
	}
	return nil
}

func (c *Config) handleInclude(spec, dir string, visited map[string]bool) error {
	if spec == "" {
		return fmt.Errorf("config: empty include directive")
	}
	glob := filepath.Join(dir, spec)
	matches, err := filepath.Glob(glob)
	if err != nil {
		return fmt.Errorf("config: invalid include pattern %q: %w", spec, err)
	}
	sort.Strings(matches)
	if len(matches) == 0 && !strings.ContainsAny(glob, "*?[") {
		return fmt.Errorf("config: include file does not exist: %s", glob)
	}
	for _, m := range matches {
		if err := c.parseFile(m, visited); err != nil {
			return err
		}
	}
	return nil
}

// addSection registers a section, merging options when the section
// appears more than once across included files.
func (c *Config) addSection(name string, options map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.sections[name]; ok {
		for k, v := range options {
			existing.options[strings.ToLower(k)] = v
		}
		return
	}
	c.sections[name] = newSection(name, options)
	c.order = append(c.order, name)
}

// GetSection returns a section by name.
func (c *Config) GetSection(name string) (*Section, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sec, ok := c.sections[name]
	if !ok {
		return nil, errors.ConfigSectionError(name)
	}
	c.accessedSections[name] = struct{}{}
	return sec, nil
}

// GetSectionOptional returns a section if present, nil otherwise.
func (c *Config) GetSectionOptional(name string) *Section {
	c.mu.Lock()
	defer c.mu.Unlock()

	sec, ok := c.sections[name]
	if ok {
		c.accessedSections[name] = struct{}{}
	}
	return sec
}

// HasSection checks whether a section exists.
func (c *Config) HasSection(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.sections[name]
	return ok
}

// GetSectionNames returns all section names in file order.
func (c *Config) GetSectionNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]string, len(c.order))
	copy(result, c.order)
	return result
}

// GetUnusedSections returns sections never retrieved with GetSection.
func (c *Config) GetUnusedSections() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []string
	for name := range c.sections {
		if _, ok := c.accessedSections[name]; !ok {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// CheckUnused reports leftover sections or options as an error. A
// typo in an option name would otherwise silently fall back to the
// default, which is the wrong failure mode for machine settings.
func (c *Config) CheckUnused() error {
	if unused := c.GetUnusedSections(); len(unused) > 0 {
		return errors.New(errors.ErrConfigSection,
			fmt.Sprintf("unused config sections: %v", unused))
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var problems []string
	for name, sec := range c.sections {
		if unused := sec.GetUnusedOptions(); len(unused) > 0 {
			problems = append(problems, fmt.Sprintf("[%s]: %v", name, unused))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return errors.New(errors.ErrConfigOption,
			fmt.Sprintf("unused config options: %s", strings.Join(problems, "; ")))
	}
	return nil
}
