// Package ident normalizes the heterogeneous identifier representations that
// arrive from request payloads (strings) and the relational store (integers)
// into one canonical, type-stable form.
package ident

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind discriminates the normalized identifier forms.
type Kind int

const (
	None Kind = iota
	Int
	Str
)

// ID is a normalized identifier: an integer, an opaque string, or absent.
// The zero value is the absent ("none") identifier.
type ID struct {
	kind Kind
	n    int64
	s    string
}

// Normalize coerces a raw identifier value into an ID. A string of digits
// becomes an integer; other strings are trimmed and kept as-is; nil and
// blank strings yield the none value. Digit strings that overflow int64
// fall back to the trimmed string.
func Normalize(v any) ID {
	switch t := v.(type) {
	case nil:
		return ID{}
	case string:
		return fromString(t)
	case int:
		return ID{kind: Int, n: int64(t)}
	case int32:
		return ID{kind: Int, n: int64(t)}
	case int64:
		return ID{kind: Int, n: t}
	case float64:
		// JSON numbers decode as float64.
		if t == math.Trunc(t) && t >= math.MinInt64 && t <= math.MaxInt64 {
			return ID{kind: Int, n: int64(t)}
		}
		return fromString(strconv.FormatFloat(t, 'f', -1, 64))
	case json.Number:
		return fromString(t.String())
	default:
		return fromString(fmt.Sprint(t))
	}
}

func fromString(s string) ID {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ID{}
	}
	if isDigits(trimmed) {
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return ID{kind: Int, n: n}
		}
		// Overflows int64: keep the trimmed string.
	}
	return ID{kind: Str, s: trimmed}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Kind reports which form the identifier took.
func (id ID) Kind() Kind { return id.kind }

// IsNone reports whether the identifier is absent.
func (id ID) IsNone() bool { return id.kind == None }

// Int returns the integer form, if the identifier has one.
func (id ID) Int() (int64, bool) {
	if id.kind != Int {
		return 0, false
	}
	return id.n, true
}

// String renders the identifier for logs and lookups. None renders empty.
func (id ID) String() string {
	switch id.kind {
	case Int:
		return strconv.FormatInt(id.n, 10)
	case Str:
		return id.s
	default:
		return ""
	}
}
