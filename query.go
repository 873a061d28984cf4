package sqliteplus

import (
	"strconv"
	"strings"
)

// fragment is one piece of a parsed template: either a literal run of SQL
// text, or a placeholder whose text is the binding key.
type fragment struct {
	text        string
	placeholder bool
}

// Query is a parameterized SQL statement: an immutable template of literal
// fragments and placeholders, plus a map of values bound to placeholder
// keys.
//
// Two placeholder forms are recognized: named (":id") and positional ("?",
// keyed "1", "2", ... in order of appearance). Placeholders inside single-
// or double-quoted SQL literals are left untouched.
type Query struct {
	fragments []fragment
	bindings  map[string]string
}

// QueryOption is a function that configures a Query instance.
type QueryOption func(*Query)

// WithBinding binds value to the placeholder key.
func WithBinding(key, value string) QueryOption {
	return func(q *Query) {
		q.bindings[key] = value
	}
}

// WithBindings binds every key/value pair in the given map.
func WithBindings(bindings map[string]string) QueryOption {
	return func(q *Query) {
		for key, value := range bindings {
			q.bindings[key] = value
		}
	}
}

// NewQuery parses template into a Query and applies the given options. The
// template is parsed once; the resulting fragment sequence never changes.
func NewQuery(template string, opts ...QueryOption) *Query {
	q := &Query{
		fragments: parseTemplate(template),
		bindings:  make(map[string]string),
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Set binds value to the placeholder key, replacing any previous binding.
// It returns the query to allow chained calls.
func (q *Query) Set(key, value string) *Query {
	q.bindings[key] = value
	return q
}

// Bind resolves the template into a final executable SQL string: literal
// fragments are appended verbatim and each placeholder is replaced by its
// bound value with no escaping or quoting. SQL-safety of bound values is the
// caller's responsibility.
//
// Bind is pure: it never consumes state, and repeated calls with the same
// bindings return identical strings. If any placeholder has no bound value,
// Bind fails with an Error of KindBindingFailed naming the key and no
// partial SQL string is produced.
func (q *Query) Bind() (string, error) {
	var sb strings.Builder
	for _, f := range q.fragments {
		if !f.placeholder {
			sb.WriteString(f.text)
			continue
		}
		value, ok := q.bindings[f.text]
		if !ok {
			return "", &Error{Kind: KindBindingFailed, Key: f.text}
		}
		sb.WriteString(value)
	}
	return sb.String(), nil
}

func parseTemplate(template string) []fragment {
	var frags []fragment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			frags = append(frags, fragment{text: lit.String()})
			lit.Reset()
		}
	}

	pos := 0
	for i := 0; i < len(template); {
		switch c := template[i]; {
		case c == '\'' || c == '"':
			end := quotedEnd(template, i)
			lit.WriteString(template[i:end])
			i = end

		case c == '?':
			flush()
			pos++
			frags = append(frags, fragment{text: strconv.Itoa(pos), placeholder: true})
			i++

		case c == ':' && i+1 < len(template) && isIdentStart(template[i+1]):
			end := i + 1
			for end < len(template) && isIdentChar(template[end]) {
				end++
			}
			flush()
			frags = append(frags, fragment{text: template[i+1 : end], placeholder: true})
			i = end

		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()

	return frags
}

// quotedEnd returns the index just past the quoted SQL literal starting at
// i. A doubled quote character inside the literal is the SQL escape form and
// does not terminate it. An unterminated literal runs to the end of the
// template.
func quotedEnd(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		if s[j] != quote {
			continue
		}
		if j+1 < len(s) && s[j+1] == quote {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
