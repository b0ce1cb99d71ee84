/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package promptbuilder provides bind-once prompt templates with
// {{name}} placeholders. Binding the same placeholder twice or building
// with an unbound placeholder is an error, which keeps prompt assembly
// honest at the call site.
package promptbuilder

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"maps"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// stringLiteral only accepts untyped string constants, so templates and
// literal bindings come from the developer rather than from user input.
type stringLiteral string

// placeholderPattern matches {{name}} where name is a letter followed by
// letters, digits, or underscores.
var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z][a-zA-Z0-9_]*)\}\}`)

// Prompt is a template with a set of placeholders, some of which may
// already be bound. Bind operations return a new Prompt; the receiver is
// never mutated.
type Prompt struct {
	template string
	bound    map[string]string
	names    map[string]struct{}
}

// NewPrompt parses a template literal and records its placeholders.
// A "{{" that does not form a valid placeholder is a parse error.
func NewPrompt(template stringLiteral) (*Prompt, error) {
	tmpl := string(template)

	names := make(map[string]struct{})
	matches := placeholderPattern.FindAllStringSubmatch(tmpl, -1)
	for _, m := range matches {
		names[m[1]] = struct{}{}
	}

	// Every "{{" must belong to a well-formed placeholder.
	if strings.Count(tmpl, "{{") != len(matches) {
		return nil, fmt.Errorf("template contains a malformed placeholder")
	}

	return &Prompt{
		template: tmpl,
		bound:    make(map[string]string),
		names:    names,
	}, nil
}

// GetBindings returns the set of placeholder names in the template.
func (p *Prompt) GetBindings() map[string]struct{} {
	return maps.Clone(p.names)
}

// bind records a resolved value for a placeholder, returning a new Prompt.
func (p *Prompt) bind(name, value string) (*Prompt, error) {
	if _, ok := p.names[name]; !ok {
		return nil, fmt.Errorf("binding %q not found in template", name)
	}
	if _, ok := p.bound[name]; ok {
		return nil, fmt.Errorf("binding %q already bound", name)
	}
	next := &Prompt{
		template: p.template,
		bound:    maps.Clone(p.bound),
		names:    p.names,
	}
	next.bound[name] = value
	return next, nil
}

// BindStringLiteral binds a literal string value to a placeholder.
func (p *Prompt) BindStringLiteral(name string, value stringLiteral) (*Prompt, error) {
	return p.bind(name, string(value))
}

// BindXML binds structured data to a placeholder by marshaling it as XML.
// XML escaping makes this the right choice for model-visible user content.
func (p *Prompt) BindXML(name string, data any) (*Prompt, error) {
	b, err := xml.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal XML for %q: %w", name, err)
	}
	return p.bind(name, string(b))
}

// BindJSON binds structured data to a placeholder by marshaling it as JSON.
func (p *Prompt) BindJSON(name string, data any) (*Prompt, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON for %q: %w", name, err)
	}
	return p.bind(name, string(b))
}

// BindYAML binds structured data to a placeholder by marshaling it as YAML.
func (p *Prompt) BindYAML(name string, data any) (*Prompt, error) {
	b, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML for %q: %w", name, err)
	}
	return p.bind(name, string(b))
}

// Build produces the final prompt string. Every placeholder must have
// been bound.
func (p *Prompt) Build() (string, error) {
	for name := range p.names {
		if _, ok := p.bound[name]; !ok {
			return "", fmt.Errorf("unbound placeholder: %s", name)
		}
	}
	return placeholderPattern.ReplaceAllStringFunc(p.template, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		return p.bound[name]
	}), nil
}
