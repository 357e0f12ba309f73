// SPDX-License-Identifier: MIT

package module

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FiniteType is the only module type a Spec may declare.
const FiniteType = "finite dimensional module"

// Generator is a named basis element of a finite module.
type Generator struct {
	Name   string
	Degree int
}

// Generators keeps the document order of the gens mapping, which fixes the
// basis order within each degree.
type Generators []Generator

// UnmarshalYAML decodes a mapping of name to degree in document order.
func (g *Generators) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: gens must be a mapping of name to degree", n.Line)
	}
	out := make(Generators, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var deg int
		if err := n.Content[i+1].Decode(&deg); err != nil {
			return fmt.Errorf("line %d: degree of %q: %w", n.Content[i+1].Line, n.Content[i].Value, err)
		}
		out = append(out, Generator{Name: n.Content[i].Value, Degree: deg})
	}
	*g = out

	return nil
}

// MarshalYAML writes the generators back as an ordered mapping.
func (g Generators) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	for _, gen := range g {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: gen.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(gen.Degree)})
	}

	return n, nil
}

// Spec is a module specification document.
type Spec struct {
	Name    string     `yaml:"name,omitempty"`
	P       uint32     `yaml:"p"`
	Type    string     `yaml:"type,omitempty"`
	Algebra []string   `yaml:"algebra,omitempty"`
	Gens    Generators `yaml:"gens"`
	Actions []string   `yaml:"actions,omitempty"`
}

// ParseSpec decodes a YAML or JSON module specification. Unknown keys are
// rejected, and so are cofiber specifications, which describe a chain
// complex rather than a module. Only syntax is checked here;
// NewFiniteModule validates the content against an algebra.
func ParseSpec(data []byte) (*Spec, error) {
	var head struct {
		Cofiber any `yaml:"cofiber"`
	}
	if err := yaml.Unmarshal(data, &head); err == nil && head.Cofiber != nil {
		return nil, fmt.Errorf("%w: cofiber modules are not supported", ErrInvalidSpec)
	}
	var s Spec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	if s.Type != "" && s.Type != FiniteType {
		return nil, fmt.Errorf("%w: unsupported module type %q", ErrInvalidSpec, s.Type)
	}

	return &s, nil
}

// LoadSpec reads and parses a specification file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseSpec(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Shift returns a copy of s with every generator degree raised by n.
func (s *Spec) Shift(n int) *Spec {
	c := *s
	c.Gens = make(Generators, len(s.Gens))
	for i, g := range s.Gens {
		c.Gens[i] = Generator{Name: g.Name, Degree: g.Degree + n}
	}
	c.Actions = append([]string(nil), s.Actions...)

	return &c
}

// action is one parsed line "op elem = c1 e1 + c2 e2".
type action struct {
	line string
	op   string
	elem string
	rhs  []actionTerm
}

type actionTerm struct {
	coeff int64
	elem  string
}

func parseAction(line string) (action, error) {
	lhs, rhs, ok := strings.Cut(line, "=")
	if !ok {
		return action{}, fmt.Errorf("action %q: missing '='", line)
	}
	f := strings.Fields(lhs)
	if len(f) != 2 {
		return action{}, fmt.Errorf("action %q: left side must be '<operation> <generator>'", line)
	}
	a := action{line: line, op: f[0], elem: f[1]}
	rhs = strings.TrimSpace(rhs)
	if rhs == "0" || rhs == "" {
		return a, nil
	}
	for _, term := range strings.Split(rhs, "+") {
		tf := strings.Fields(strings.ReplaceAll(term, "*", " "))
		switch len(tf) {
		case 1:
			a.rhs = append(a.rhs, actionTerm{coeff: 1, elem: tf[0]})
		case 2:
			c, err := strconv.ParseInt(tf[0], 10, 64)
			if err != nil {
				return action{}, fmt.Errorf("action %q: coefficient %q: %w", line, tf[0], err)
			}
			a.rhs = append(a.rhs, actionTerm{coeff: c, elem: tf[1]})
		default:
			return action{}, fmt.Errorf("action %q: malformed term %q", line, strings.TrimSpace(term))
		}
	}

	return a, nil
}
