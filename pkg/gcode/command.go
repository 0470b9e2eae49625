// G-code command model for the cutter compensation host
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package gcode provides the structured G-code command model consumed
// and produced by the compensation preprocessor. The engine only ever
// queries words through this surface; it never inspects raw text.
package gcode

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"smoothie-go-migration/pkg/errors"
)

// Command is one parsed G-code command. Args maps upper-case word
// letters (or macro parameter names) to their raw textual values, so
// unrecognized words survive a parse/format round trip verbatim.
type Command struct {
	Name string
	Args map[string]string
	Raw  string
}

var reParenComment = regexp.MustCompile(`\([^)]*\)`)

// Parse parses a single G-code line into a Command. Returns (nil, nil)
// for blank lines and comment-only lines.
func Parse(line string) (*Command, error) {
	ln := strings.TrimSpace(line)
	if ln == "" {
		return nil, nil
	}
	if idx := strings.IndexByte(ln, ';'); idx >= 0 {
		ln = strings.TrimSpace(ln[:idx])
	}
	if ln == "" {
		return nil, nil
	}
	ln = strings.TrimSpace(reParenComment.ReplaceAllString(ln, " "))
	if ln == "" {
		return nil, nil
	}

	fields := strings.Fields(ln)
	if len(fields) == 0 {
		return nil, nil
	}
	name := strings.ToUpper(fields[0])
	args := map[string]string{}
	for _, f := range fields[1:] {
		if f == "" {
			continue
		}
		if strings.Contains(f, "=") {
			kv := strings.SplitN(f, "=", 2)
			k := strings.ToUpper(strings.TrimSpace(kv[0]))
			v := ""
			if len(kv) > 1 {
				v = strings.TrimSpace(kv[1])
			}
			if k != "" {
				args[k] = v
			}
			continue
		}
		// Letter-params like "X10.5", "Z-5", "F1000".
		if len(f) < 2 {
			continue
		}
		k := strings.ToUpper(f[:1])
		v := strings.TrimSpace(f[1:])
		if k != "" {
			args[k] = v
		}
	}
	return &Command{Name: name, Args: args, Raw: line}, nil
}

// HasWord reports whether the command carries the given word.
func (c *Command) HasWord(letter string) bool {
	_, ok := c.Args[strings.ToUpper(letter)]
	return ok
}

// Float returns the numeric value of a word. The second result is
// false when the word is absent.
func (c *Command) Float(letter string) (float64, bool, error) {
	v, ok := c.Args[strings.ToUpper(letter)]
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, true, errors.GCodeInvalidParameterError(c.Name, strings.ToUpper(letter), v)
	}
	return f, true, nil
}

// MotionCode returns the numeric G code of a motion command (G0, G1,
// G2, G3, ...). The second result is false for non-G commands.
func (c *Command) MotionCode() (int, bool) {
	if len(c.Name) < 2 || c.Name[0] != 'G' {
		return 0, false
	}
	n, err := strconv.Atoi(c.Name[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Clone returns an independently owned copy of the command.
func (c *Command) Clone() *Command {
	args := make(map[string]string, len(c.Args))
	for k, v := range c.Args {
		args[k] = v
	}
	return &Command{Name: c.Name, Args: args, Raw: c.Raw}
}

// SetFloat replaces a word's value with a formatted float.
func (c *Command) SetFloat(letter string, v float64) {
	c.Args[strings.ToUpper(letter)] = FormatFloat(v)
}

// FormatFloat renders a coordinate value the way emitted commands
// carry it.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// wordOrder is the emission order for well-known words; anything else
// follows sorted alphabetically.
var wordOrder = []string{"X", "Y", "Z", "I", "J", "K", "E", "F"}

// Format renders the command back to a single G-code line. Word values
// are emitted exactly as stored, so passthrough words keep their
// original text.
func (c *Command) Format() string {
	var sb strings.Builder
	sb.WriteString(c.Name)

	emitted := make(map[string]bool, len(c.Args))
	for _, k := range wordOrder {
		if v, ok := c.Args[k]; ok {
			sb.WriteByte(' ')
			sb.WriteString(k)
			sb.WriteString(v)
			emitted[k] = true
		}
	}

	rest := make([]string, 0, len(c.Args))
	for k := range c.Args {
		if !emitted[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		sb.WriteByte(' ')
		if len(k) > 1 {
			// Macro-style parameter, keep the K=V form.
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(c.Args[k])
		} else {
			sb.WriteString(k)
			sb.WriteString(c.Args[k])
		}
	}
	return sb.String()
}
