package llm

import (
	"errors"
	"testing"
)

func TestParseObject_PlainJSON(t *testing.T) {
	out, err := ParseObject(`{"a": 1, "b": "two"}`)
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if out["b"] != "two" {
		t.Errorf("b = %v", out["b"])
	}
}

func TestParseObject_FencedWithLanguageTag(t *testing.T) {
	out, err := ParseObject("Here you go:\n```json\n{\"ok\": true}\n```\nLet me know!")
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if out["ok"] != true {
		t.Errorf("ok = %v", out["ok"])
	}
}

func TestParseObject_FencedWithoutTag(t *testing.T) {
	out, err := ParseObject("```\n{\"ok\": true}\n```")
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if out["ok"] != true {
		t.Errorf("ok = %v", out["ok"])
	}
}

func TestParseObject_SurroundingProse(t *testing.T) {
	out, err := ParseObject(`Sure! The result is {"n": 3} as requested.`)
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if out["n"] != float64(3) {
		t.Errorf("n = %v", out["n"])
	}
}

func TestParseObject_EmptyResponse(t *testing.T) {
	_, err := ParseObject("   \n  ")
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != KindEmptyResponse {
		t.Errorf("err = %v, want empty_response", err)
	}
}

func TestParseObject_NoObject(t *testing.T) {
	_, err := ParseObject("I could not produce any structured output, sorry.")
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != KindNoJSONObject {
		t.Errorf("err = %v, want no_json_object", err)
	}
}

func TestParseObject_InvalidJSON(t *testing.T) {
	_, err := ParseObject(`{"a": 1,,}`)
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != KindInvalidJSON {
		t.Errorf("err = %v, want invalid_json", err)
	}
}

func TestExtractJSONObject_NestedBraces(t *testing.T) {
	got, err := ExtractJSONObject(`prefix {"outer": {"inner": [1, 2]}} suffix`)
	if err != nil {
		t.Fatalf("ExtractJSONObject: %v", err)
	}
	if got != `{"outer": {"inner": [1, 2]}}` {
		t.Errorf("got %q", got)
	}
}
