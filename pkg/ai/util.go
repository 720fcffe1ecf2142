package ai

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// GenerateSchema reflects a JSON schema for the structured output type of
// value. Nested types are inlined and unknown properties are rejected, which
// is what both the OpenAI and Ollama structured output modes expect.
func GenerateSchema(value any) any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return reflector.Reflect(reflect.New(t).Interface())
}

// UnmarshalFlexible decodes model output into out. Besides plain JSON it
// accepts a markdown code fence around the object, a JSON string holding the
// object, a doubled opening brace and anything jsonrepair can fix.
func UnmarshalFlexible(input string, out any) error {
	input = stripFence(strings.TrimSpace(input))
	if json.Unmarshal([]byte(input), out) == nil {
		return nil
	}

	var inner string
	if json.Unmarshal([]byte(input), &inner) == nil {
		inner = stripFence(strings.TrimSpace(inner))
		if json.Unmarshal([]byte(inner), out) == nil {
			return nil
		}
		input = inner
	}

	input = stripDoubledBrace(input)
	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w (input: %s)", err, input)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: %w (repaired: %s)", err, repaired)
	}
	return nil
}

// stripFence removes a ```json ... ``` wrapper some models put around
// structured output.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[\"") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func stripDoubledBrace(s string) string {
	if !strings.HasPrefix(s, "{") {
		return s
	}
	if rest := strings.TrimSpace(s[1:]); strings.HasPrefix(rest, "{") {
		return rest
	}
	return s
}
