package payload

import (
	"strings"
	"testing"
)

func TestCleanStringStripsAngleBracketsAndTrims(t *testing.T) {
	cases := map[string]string{
		"  <b>hi</b>  ":  "bhi/b",
		"plain":          "plain",
		"  padded  ":     "padded",
		"<script>":       "script",
		"< a >":          "a",
		"a < b && b > c": "a  b && b  c",
		"":               "",
		"<>":             "",
	}
	for in, want := range cases {
		if got := CleanString(in); got != want {
			t.Fatalf("CleanString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeCleansNestedStrings(t *testing.T) {
	in := Object(
		Member{Key: "name", Value: String("  <b>hi</b>  ")},
		Member{Key: "tags", Value: Array(String(" <x> "), String("ok"))},
		Member{Key: "nested", Value: Object(
			Member{Key: "city", Value: String("  Wien<  ")},
		)},
	)
	got := Sanitize(in)

	name, _ := got.Get("name")
	if name.Str() != "bhi/b" {
		t.Fatalf("name = %q", name.Str())
	}
	tags, _ := got.Get("tags")
	if tags.Items()[0].Str() != "x" || tags.Items()[1].Str() != "ok" {
		t.Fatalf("tags = %v", tags.Items())
	}
	nested, _ := got.Get("nested")
	city, _ := nested.Get("city")
	if city.Str() != "Wien" {
		t.Fatalf("city = %q", city.Str())
	}
}

func TestSanitizeLeavesNonStringsAlone(t *testing.T) {
	in := Object(
		Member{Key: "count", Value: Int(42)},
		Member{Key: "ok", Value: Bool(true)},
		Member{Key: "none", Value: Null()},
	)
	got := Sanitize(in)
	if !Equal(in, got) {
		t.Fatalf("non-string leaves changed: %v", got)
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	in := Object(
		Member{Key: "a", Value: String("  < trimmed > ")},
		Member{Key: "b", Value: Array(String("<<x>>"), Int(7), Null())},
		Member{Key: "c", Value: Object(Member{Key: "d", Value: String(" <deep> ")})},
	)
	once := Sanitize(in)
	twice := Sanitize(once)
	if !Equal(once, twice) {
		t.Fatalf("sanitize not idempotent: %v vs %v", once, twice)
	}
}

func TestSanitizePreservesOrderAndShape(t *testing.T) {
	in := Object(
		Member{Key: "z", Value: String("last<")},
		Member{Key: "a", Value: String(">first")},
	)
	got := Sanitize(in)
	members := got.Members()
	if members[0].Key != "z" || members[1].Key != "a" {
		t.Fatalf("member order changed: %v", members)
	}
}

func TestDecodePreservesMemberOrder(t *testing.T) {
	v, err := Decode(strings.NewReader(`{"z": 1, "a": {"y": true, "b": [1, "two", null]}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	members := v.Members()
	if len(members) != 2 || members[0].Key != "z" || members[1].Key != "a" {
		t.Fatalf("unexpected members: %v", members)
	}

	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"z":1,"a":{"y":true,"b":[1,"two",null]}}`
	if string(data) != want {
		t.Fatalf("round trip = %s, want %s", data, want)
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	if _, err := Decode(strings.NewReader(`{"a":1} {"b":2}`)); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestBind(t *testing.T) {
	v, err := DecodeBytes([]byte(`{"title": "Loft", "guests": 3}`))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	var dst struct {
		Title  string `json:"title"`
		Guests int    `json:"guests"`
	}
	if err := Bind(v, &dst); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if dst.Title != "Loft" || dst.Guests != 3 {
		t.Fatalf("unexpected bind result: %+v", dst)
	}
}
