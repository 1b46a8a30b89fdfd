// Package script plays scripted notification sequences against a manager
// without a terminal.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/tray/internal/core/notify"
)

// Script is an ordered list of steps.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is a single scripted action. Exactly one field must be set.
type Step struct {
	Notify   *NotifyStep `yaml:"notify,omitempty"`
	Remove   *notify.ID  `yaml:"remove,omitempty"`
	Clear    bool        `yaml:"clear,omitempty"`
	Wait     Duration    `yaml:"wait,omitempty"`
	Snapshot bool        `yaml:"snapshot,omitempty"`
}

// NotifyStep posts a notification. In YAML it is either a mapping with
// kind, message and duration keys or a positional list such as
// ["error", "disk full"].
type NotifyStep struct {
	Kind     notify.Kind `yaml:"kind"`
	Message  string      `yaml:"message"`
	Duration *Duration   `yaml:"duration"`
}

// UnmarshalYAML accepts the mapping and positional forms.
func (n *NotifyStep) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		n.Kind, n.Message = notify.ParseArgs(node.Value)
		return nil
	case yaml.SequenceNode:
		var args []string
		if err := node.Decode(&args); err != nil {
			return err
		}
		n.Kind, n.Message = notify.ParseArgs(args...)
		if len(args) > 2 {
			d := Duration(args[2])
			n.Duration = &d
		}
		return nil
	}

	type plain NotifyStep
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*n = NotifyStep(p)
	n.Kind = notify.Kind(strings.ToLower(strings.TrimSpace(string(n.Kind))))
	if n.Kind == "" {
		n.Kind = notify.KindDefault
	}
	return nil
}

// Duration is a duration as written in a script: bare integers are
// milliseconds, anything else is parsed as a Go duration.
type Duration string

// Parse returns the duration and whether it was valid.
func (d Duration) Parse() (time.Duration, bool) {
	return notify.ParseDuration(string(d))
}

// UnmarshalYAML keeps the scalar verbatim so numbers and strings both work.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	*d = Duration(strings.TrimSpace(node.Value))
	return nil
}

func (s Step) action() (string, error) {
	var set []string
	if s.Notify != nil {
		set = append(set, "notify")
	}
	if s.Remove != nil {
		set = append(set, "remove")
	}
	if s.Clear {
		set = append(set, "clear")
	}
	if s.Wait != "" {
		set = append(set, "wait")
	}
	if s.Snapshot {
		set = append(set, "snapshot")
	}

	switch len(set) {
	case 0:
		return "", errors.New("step has no action")
	case 1:
		return set[0], nil
	default:
		return "", fmt.Errorf("step has multiple actions: %s", strings.Join(set, ", "))
	}
}

// Validate checks that every step names exactly one action and that waits
// are well formed.
func (s Script) Validate() error {
	var errs []error
	for i, step := range s.Steps {
		action, err := step.action()
		if err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i, err))
			continue
		}
		if action == "wait" {
			if _, ok := step.Wait.Parse(); !ok {
				errs = append(errs, fmt.Errorf("step %d: invalid wait %q", i, step.Wait))
			}
		}
		if action == "notify" && step.Notify.Message == "" {
			errs = append(errs, fmt.Errorf("step %d: notify needs a message", i))
		}
	}
	return errors.Join(errs...)
}

// Parse decodes and validates a script.
func Parse(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, fmt.Errorf("invalid script: %w", err)
	}
	return s, nil
}

// Load reads a script file. Scripts without a name are named after the file.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Expand resolves paths and doublestar globs into a de-duplicated list of
// script files in pattern order. A pattern matching nothing is an error.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no scripts match %q", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}

	return out, nil
}

// String renders a step for log output.
func (s Step) String() string {
	action, err := s.action()
	if err != nil {
		return "invalid"
	}
	switch action {
	case "notify":
		return "notify " + string(s.Notify.Kind)
	case "remove":
		return "remove " + strconv.FormatInt(int64(*s.Remove), 10)
	case "wait":
		return "wait " + string(s.Wait)
	}
	return action
}
