package ai

import (
	"encoding/json"
	"strings"
	"testing"
)

type testClassification struct {
	Category string `json:"category" validate:"required"`
}

type testIntentParameters struct {
	Topic          string `json:"topic"`
	Limit          int    `json:"limit" validate:"gte=0"`
	ConnectionType string `json:"connection_type"`
}

type testIntent struct {
	Operation  string               `json:"operation" validate:"required"`
	Entities   []string             `json:"entities"`
	Parameters testIntentParameters `json:"parameters"`
}

type testSQLQuery struct {
	SQL string `json:"sql" validate:"required"`
}

func TestUnmarshalFlexibleIntentVariants(t *testing.T) {
	want := testIntent{Operation: "find_path", Entities: []string{"Alice", "Bob"}}

	tests := []struct {
		name  string
		input string
	}{
		{name: "plain", input: `{"operation":"find_path","entities":["Alice","Bob"]}`},
		{name: "fenced", input: "```json\n{\"operation\":\"find_path\",\"entities\":[\"Alice\",\"Bob\"]}\n```"},
		{name: "fence without language", input: "```\n{\"operation\":\"find_path\",\"entities\":[\"Alice\",\"Bob\"]}\n```"},
		{name: "single quotes and bare keys", input: `{operation: 'find_path', entities: ['Alice', 'Bob']}`},
		{name: "trailing comma", input: `{"operation":"find_path","entities":["Alice","Bob"],}`},
		{name: "truncated", input: `{"operation":"find_path","entities":["Alice","Bob"]`},
		{name: "string encoded", input: `"{\"operation\":\"find_path\",\"entities\":[\"Alice\",\"Bob\"]}"`},
		{name: "doubled brace", input: "{\n{\"operation\":\"find_path\",\"entities\":[\"Alice\",\"Bob\"]}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got testIntent
			if err := UnmarshalFlexible(tt.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Operation != want.Operation || strings.Join(got.Entities, ",") != "Alice,Bob" {
				t.Fatalf("UnmarshalFlexible() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestDecodeStrict(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		out     func() any
		wantErr bool
	}{
		{
			name:  "classification",
			input: `{"category":"graph_query"}`,
			out:   func() any { return &testClassification{} },
		},
		{
			name:    "classification without category",
			input:   `{"label":"graph_query"}`,
			out:     func() any { return &testClassification{} },
			wantErr: true,
		},
		{
			name:    "classification empty category",
			input:   `{"category":""}`,
			out:     func() any { return &testClassification{} },
			wantErr: true,
		},
		{
			name:  "intent with parameters",
			input: `{"operation":"rank_nodes","entities":[],"parameters":{"topic":"AI","limit":3}}`,
			out:   func() any { return &testIntent{} },
		},
		{
			name:    "intent without operation",
			input:   `{"entities":["Alice"]}`,
			out:     func() any { return &testIntent{} },
			wantErr: true,
		},
		{
			name:    "intent with negative limit",
			input:   `{"operation":"rank_nodes","parameters":{"limit":-1}}`,
			out:     func() any { return &testIntent{} },
			wantErr: true,
		},
		{
			name:  "sql query",
			input: "```json\n{\"sql\":\"SELECT name FROM people\"}\n```",
			out:   func() any { return &testSQLQuery{} },
		},
		{
			name:    "sql query missing",
			input:   `{}`,
			out:     func() any { return &testSQLQuery{} },
			wantErr: true,
		},
		{
			name:    "prose instead of json",
			input:   `I'm sorry, I can't help with that.`,
			out:     func() any { return &testSQLQuery{} },
			wantErr: true,
		},
		{
			name:    "null",
			input:   `null`,
			out:     func() any { return &testIntent{} },
			wantErr: true,
		},
		{
			name:    "wrong field type",
			input:   `{"operation":"rank_nodes","parameters":{"limit":"many"}}`,
			out:     func() any { return &testIntent{} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecodeStrict(tt.input, tt.out())
			if tt.wantErr && err == nil {
				t.Fatalf("DecodeStrict(%q) = nil, want error", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("DecodeStrict(%q) error = %v", tt.input, err)
			}
		})
	}
}

func TestGenerateSchemaRejectsUnknownProperties(t *testing.T) {
	raw, err := json.Marshal(GenerateSchema(&testIntent{}))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var schema struct {
		Type                 string                     `json:"type"`
		AdditionalProperties *bool                      `json:"additionalProperties"`
		Properties           map[string]json.RawMessage `json:"properties"`
		Ref                  string                     `json:"$ref"`
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if schema.Ref != "" {
		t.Fatalf("schema uses $ref %q, want inlined definitions", schema.Ref)
	}
	if schema.Type != "object" || schema.AdditionalProperties == nil || *schema.AdditionalProperties {
		t.Fatalf("schema = %s, want a closed object", raw)
	}
	for _, key := range []string{"operation", "entities", "parameters"} {
		if _, ok := schema.Properties[key]; !ok {
			t.Fatalf("schema is missing property %q: %s", key, raw)
		}
	}
}
