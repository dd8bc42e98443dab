package assets

import (
	"strconv"
	"strings"
)

// Status is the resolution state of one slot within a round.
type Status int

const (
	Pending Status = iota
	Resolved
	Failed
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolution is what is currently known about one slot.
type Resolution struct {
	Status Status
	URL    string // set when Resolved
	Err    string // set when Failed
}

// Set is the current asset set of a round. Missing slots count as pending.
type Set map[Slot]Resolution

// URL returns the text that replaces a slot's token: the resolved URL, the
// default for a failed slot, or empty while pending.
func (s Set) URL(slot Slot, d Defaults) string {
	r, ok := s[slot]
	if !ok {
		return ""
	}
	switch r.Status {
	case Resolved:
		return r.URL
	case Failed:
		return d.For(slot)
	default:
		return ""
	}
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Substitute replaces every placeholder token in raw with the slot's current
// URL. It never leaves a token behind, does not modify raw, and is idempotent:
// the resolved text contains no tokens, so a second pass changes nothing.
//
// A token that is a whole quoted YAML scalar ('TOKEN' or "TOKEN", as the
// scene encoder writes URL fields) is replaced by a double-quoted scalar
// with the URL escaped, so quotes, '#' and line breaks in a URL cannot
// change the structure of the descriptor. Bare tokens get the URL verbatim.
func Substitute(raw string, set Set, d Defaults) string {
	pairs := make([]string, 0, 6*len(Slots()))
	for _, slot := range Slots() {
		url := StripTokens(set.URL(slot, d))
		quoted := strconv.Quote(url)
		token := slot.Token()
		pairs = append(pairs,
			"'"+token+"'", quoted,
			`"`+token+`"`, quoted,
			token, url,
		)
	}
	return strings.NewReplacer(pairs...).Replace(raw)
}

// StripTokens removes every placeholder token from text.
func StripTokens(text string) string {
	for ContainsToken(text) {
		for _, slot := range Slots() {
			text = strings.ReplaceAll(text, slot.Token(), "")
		}
	}
	return text
}

// ContainsToken reports whether text still carries any placeholder token.
func ContainsToken(text string) bool {
	for _, slot := range Slots() {
		if strings.Contains(text, slot.Token()) {
			return true
		}
	}
	return false
}
