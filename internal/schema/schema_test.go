package schema

import (
	"strings"
	"testing"

	"lodgia.org/internal/payload"
)

func f(v float64) *float64 { return &v }

func listingSchema() Schema {
	return Schema{Fields: map[string]Field{
		"title":      {Type: TypeString, Required: true, MinLen: 3, MaxLen: 140},
		"location":   {Type: TypeString, Required: true},
		"max_guests": {Type: TypeNumber, Required: true, Min: f(1), Max: f(32)},
		"tags":       {Type: TypeArray, Elem: &Field{Type: TypeString, MaxLen: 20}},
		"address": {Type: TypeObject, Fields: map[string]Field{
			"city":    {Type: TypeString, Required: true},
			"country": {Type: TypeString},
		}},
	}}
}

func TestValidateCollectsEveryInvalidField(t *testing.T) {
	obj := payload.Object(
		payload.Member{Key: "title", Value: payload.String("ab")},
		payload.Member{Key: "location", Value: payload.Int(5)},
		payload.Member{Key: "max_guests", Value: payload.Int(50)},
	)
	_, result := Validate(listingSchema(), obj)
	if len(result) != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", len(result), result)
	}
	if result["title"] != "title must be at least 3 characters" {
		t.Fatalf("title message: %q", result["title"])
	}
	if result["location"] != "location must be a string" {
		t.Fatalf("location message: %q", result["location"])
	}
	if result["max_guests"] != "max_guests must be less than or equal to 32" {
		t.Fatalf("max_guests message: %q", result["max_guests"])
	}
}

func TestValidateReportsMissingRequiredFields(t *testing.T) {
	_, result := Validate(listingSchema(), payload.Object())
	if len(result) != 3 {
		t.Fatalf("expected 3 violations, got %v", result)
	}
	for _, field := range []string{"title", "location", "max_guests"} {
		if result[field] != field+" is required" {
			t.Fatalf("%s message: %q", field, result[field])
		}
	}
}

func TestValidateOneMessagePerField(t *testing.T) {
	// title violates both min length and (if checked further) nothing else;
	// the first violation wins and only one entry appears.
	obj := payload.Object(
		payload.Member{Key: "title", Value: payload.Bool(true)},
		payload.Member{Key: "location", Value: payload.String("Vienna")},
		payload.Member{Key: "max_guests", Value: payload.Int(2)},
	)
	_, result := Validate(listingSchema(), obj)
	if len(result) != 1 {
		t.Fatalf("expected 1 violation, got %v", result)
	}
	if result["title"] != "title must be a string" {
		t.Fatalf("title message: %q", result["title"])
	}
}

func TestValidateStripsUnknownFields(t *testing.T) {
	obj := payload.Object(
		payload.Member{Key: "title", Value: payload.String("Canal loft")},
		payload.Member{Key: "location", Value: payload.String("Amsterdam")},
		payload.Member{Key: "max_guests", Value: payload.Int(4)},
		payload.Member{Key: "role", Value: payload.String("admin")},
		payload.Member{Key: "__proto__", Value: payload.Object()},
	)
	stripped, result := Validate(listingSchema(), obj)
	if !result.OK() {
		t.Fatalf("unexpected violations: %v", result)
	}
	if _, ok := stripped.Get("role"); ok {
		t.Fatal("unknown field 'role' survived stripping")
	}
	if _, ok := stripped.Get("__proto__"); ok {
		t.Fatal("unknown field '__proto__' survived stripping")
	}
	if title, _ := stripped.Get("title"); title.Str() != "Canal loft" {
		t.Fatalf("declared field lost: %v", stripped)
	}
}

func TestValidateNestedObjectAndArray(t *testing.T) {
	obj := payload.Object(
		payload.Member{Key: "title", Value: payload.String("Canal loft")},
		payload.Member{Key: "location", Value: payload.String("Amsterdam")},
		payload.Member{Key: "max_guests", Value: payload.Int(4)},
		payload.Member{Key: "tags", Value: payload.Array(payload.String("ok"), payload.Int(7))},
		payload.Member{Key: "address", Value: payload.Object(
			payload.Member{Key: "country", Value: payload.String("NL")},
		)},
	)
	_, result := Validate(listingSchema(), obj)
	if len(result) != 2 {
		t.Fatalf("expected 2 violations, got %v", result)
	}
	if result["tags"] != "tags[1] must be a string" {
		t.Fatalf("tags message: %q", result["tags"])
	}
	if result["address"] != "address.city is required" {
		t.Fatalf("address message: %q", result["address"])
	}
}

func TestValidateNestedStripUnknown(t *testing.T) {
	obj := payload.Object(
		payload.Member{Key: "title", Value: payload.String("Canal loft")},
		payload.Member{Key: "location", Value: payload.String("Amsterdam")},
		payload.Member{Key: "max_guests", Value: payload.Int(4)},
		payload.Member{Key: "address", Value: payload.Object(
			payload.Member{Key: "city", Value: payload.String("Amsterdam")},
			payload.Member{Key: "sneaky", Value: payload.String("x")},
		)},
	)
	stripped, result := Validate(listingSchema(), obj)
	if !result.OK() {
		t.Fatalf("unexpected violations: %v", result)
	}
	address, _ := stripped.Get("address")
	if _, ok := address.Get("sneaky"); ok {
		t.Fatal("nested unknown field survived stripping")
	}
}

func TestValidateEnum(t *testing.T) {
	s := Schema{Fields: map[string]Field{
		"role": {Type: TypeString, Required: true, Enum: []string{"user", "admin"}},
	}}
	obj := payload.Object(payload.Member{Key: "role", Value: payload.String("owner")})
	_, result := Validate(s, obj)
	if result["role"] != "role must be one of: user, admin" {
		t.Fatalf("role message: %q", result["role"])
	}
}

func TestValidateNormalizesQuotes(t *testing.T) {
	s := Schema{Fields: map[string]Field{
		"kind": {Type: TypeString, Required: true, Enum: []string{`say "hi"`}},
	}}
	obj := payload.Object(payload.Member{Key: "kind", Value: payload.String("nope")})
	_, result := Validate(s, obj)
	if strings.Contains(result["kind"], `"`) {
		t.Fatalf("double quotes survived: %q", result["kind"])
	}
	if !strings.Contains(result["kind"], "'hi'") {
		t.Fatalf("expected single-quoted rewrite, got %q", result["kind"])
	}
}

func TestValidateNonObjectPayload(t *testing.T) {
	_, result := Validate(listingSchema(), payload.Array())
	if result.OK() {
		t.Fatal("expected rejection for non-object payload")
	}
	if result["payload"] == "" {
		t.Fatalf("expected payload-level message, got %v", result)
	}
}

func TestValidateOptionalNullPasses(t *testing.T) {
	s := Schema{Fields: map[string]Field{
		"note": {Type: TypeString},
	}}
	obj := payload.Object(payload.Member{Key: "note", Value: payload.Null()})
	_, result := Validate(s, obj)
	if !result.OK() {
		t.Fatalf("unexpected violations: %v", result)
	}
}
