package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/terrasketch/internal/input"
	"github.com/Faultbox/terrasketch/pkg/math"
)

// Script is a recorded or hand-written hand track.
type Script struct {
	Session string `yaml:"session"`
	Steps   []Step `yaml:"steps"`
}

// Step is one input frame, repeated Repeat times, or a session action.
// A nil hand position means the hand is inactive.
type Step struct {
	Primary   *math.Vec3 `yaml:"primary,omitempty"`
	Secondary *math.Vec3 `yaml:"secondary,omitempty"`
	Repeat    int        `yaml:"repeat,omitempty"`
	Action    string     `yaml:"action,omitempty"` // hide, reset, filled or sizes
	Sizes     []float32  `yaml:"sizes,omitempty"`  // left, right for the sizes action
}

// Frame converts the step to an input frame.
func (s Step) Frame() input.Frame {
	var f input.Frame
	if s.Primary != nil {
		f.Hands[input.Primary] = input.HandSample{Position: *s.Primary, Active: true}
	}
	if s.Secondary != nil {
		f.Hands[input.Secondary] = input.HandSample{Position: *s.Secondary, Active: true}
	}
	return f
}

// LoadScript reads a YAML script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

// ParseScript decodes and validates a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var sc Script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case "", "hide", "reset", "filled":
		case "sizes":
			if len(st.Sizes) != 2 {
				return nil, fmt.Errorf("step %d: sizes needs [left, right]", i)
			}
		default:
			return nil, fmt.Errorf("step %d: unknown action %q", i, st.Action)
		}
		if st.Repeat < 0 {
			return nil, fmt.Errorf("step %d: negative repeat", i)
		}
	}
	if sc.Session == "" {
		sc.Session = "replay"
	}
	return &sc, nil
}
