/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"strings"
	"testing"
)

func TestBuildBindsPlaceholders(t *testing.T) {
	p, err := NewPrompt("Judge the {{caption}} against {{image_kind}}.")
	if err != nil {
		t.Fatalf("NewPrompt() error = %v", err)
	}

	p, err = p.BindXML("caption", struct {
		XMLName struct{} `xml:"caption"`
		Content string   `xml:",chardata"`
	}{Content: "a dog in the park"})
	if err != nil {
		t.Fatalf("BindXML() error = %v", err)
	}
	p, err = p.BindStringLiteral("image_kind", "hypothesis")
	if err != nil {
		t.Fatalf("BindStringLiteral() error = %v", err)
	}

	got, err := p.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(got, "<caption>a dog in the park</caption>") {
		t.Errorf("Build() = %q, wanted XML caption binding", got)
	}
	if !strings.Contains(got, "hypothesis") {
		t.Errorf("Build() = %q, wanted literal binding", got)
	}
}

func TestBuildUnboundPlaceholder(t *testing.T) {
	p := MustNewPrompt("hello {{name}}")
	if _, err := p.Build(); err == nil {
		t.Error("Build() expected error for unbound placeholder")
	}
}

func TestBindErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{{
		name: "unknown placeholder",
		fn: func() error {
			p := MustNewPrompt("hello {{name}}")
			_, err := p.BindStringLiteral("missing", "x")
			return err
		},
	}, {
		name: "double bind",
		fn: func() error {
			p := MustNewPrompt("hello {{name}}")
			p, err := p.BindStringLiteral("name", "a")
			if err != nil {
				return nil // should not happen; surfaces as missing error below
			}
			_, err = p.BindStringLiteral("name", "b")
			return err
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestNewPromptMalformedPlaceholder(t *testing.T) {
	if _, err := NewPrompt("hello {{1bad}}"); err == nil {
		t.Error("NewPrompt() expected error for malformed placeholder")
	}
	if _, err := NewPrompt("hello {{unclosed"); err == nil {
		t.Error("NewPrompt() expected error for unclosed placeholder")
	}
}

func TestBindDoesNotMutateReceiver(t *testing.T) {
	base := MustNewPrompt("value: {{v}}")

	a, err := base.BindStringLiteral("v", "one")
	if err != nil {
		t.Fatalf("BindStringLiteral() error = %v", err)
	}
	b, err := base.BindStringLiteral("v", "two")
	if err != nil {
		t.Fatalf("BindStringLiteral() error = %v", err)
	}

	gotA, err := a.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	gotB, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if gotA != "value: one" || gotB != "value: two" {
		t.Errorf("Build() = %q / %q, wanted independent bindings", gotA, gotB)
	}
}

func TestBindStructured(t *testing.T) {
	type payload struct {
		Caption string `json:"caption" yaml:"caption"`
		Index   int    `json:"index" yaml:"index"`
	}
	data := payload{Caption: "a dog", Index: 3}

	t.Run("json", func(t *testing.T) {
		p, err := MustNewPrompt("context: {{data}}").BindJSON("data", data)
		if err != nil {
			t.Fatalf("BindJSON() error = %v", err)
		}
		got, err := p.Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !strings.Contains(got, `"caption": "a dog"`) {
			t.Errorf("Build() = %q, wanted JSON binding", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		p, err := MustNewPrompt("context: {{data}}").BindYAML("data", data)
		if err != nil {
			t.Fatalf("BindYAML() error = %v", err)
		}
		got, err := p.Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !strings.Contains(got, "caption: a dog") {
			t.Errorf("Build() = %q, wanted YAML binding", got)
		}
	})
}

func TestMustBindSugar(t *testing.T) {
	got, err := MustNewPrompt("{{kind}}: {{caption}}").
		MustBindStringLiteral("kind", "hypothesis").
		MustBindXML("caption", struct {
			XMLName struct{} `xml:"caption"`
			Content string   `xml:",chardata"`
		}{Content: "a dog"}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(got, "<caption>a dog</caption>") {
		t.Errorf("Build() = %q, wanted XML caption binding", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustBindStringLiteral() expected panic for unknown placeholder")
		}
	}()
	MustNewPrompt("hello {{name}}").MustBindStringLiteral("missing", "x")
}

func TestNoopBind(t *testing.T) {
	base := MustNewPrompt("static prompt")
	p, err := Noop{}.Bind(base)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	got, err := p.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got != "static prompt" {
		t.Errorf("Build() = %q, wanted = %q", got, "static prompt")
	}
}

func TestGetBindings(t *testing.T) {
	p := MustNewPrompt("{{a}} and {{b}} and {{a}}")
	bindings := p.GetBindings()
	if len(bindings) != 2 {
		t.Errorf("GetBindings() returned %d names, wanted 2", len(bindings))
	}
	for _, name := range []string{"a", "b"} {
		if _, ok := bindings[name]; !ok {
			t.Errorf("GetBindings() missing %q", name)
		}
	}
}
