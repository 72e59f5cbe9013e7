package payload

import "strings"

// CleanString strips every '<' and '>' and then trims surrounding
// whitespace. Stripping happens first so the result is stable: cleaning
// "< a >" yields "a" in one pass instead of leaving inner padding behind.
//
// This is deliberate character stripping, not HTML-aware tag removal:
// "<b>hi</b>" becomes "bhi/b".
func CleanString(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '<' || r == '>' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Sanitize walks the tree and cleans every string leaf. Numbers, booleans
// and null pass through untouched; array order and object member order are
// preserved. Sanitize is idempotent.
func Sanitize(v Value) Value {
	switch v.kind {
	case KindString:
		return String(CleanString(v.str))
	case KindArray:
		if len(v.arr) == 0 {
			return v
		}
		items := make([]Value, len(v.arr))
		for i, item := range v.arr {
			items[i] = Sanitize(item)
		}
		return Array(items...)
	case KindObject:
		if len(v.obj) == 0 {
			return v
		}
		members := make([]Member, len(v.obj))
		for i, m := range v.obj {
			members[i] = Member{Key: m.Key, Value: Sanitize(m.Value)}
		}
		return Object(members...)
	case KindNull, KindNumber, KindBool:
		return v
	default:
		return v
	}
}
