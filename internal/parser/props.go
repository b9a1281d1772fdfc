package parser

import (
	"fmt"
	"strings"

	"github.com/tobsdb/pcddb/internal/props"
	"github.com/tobsdb/pcddb/pkg"
)

// parseRawDeclProps reads a list of name(value) props. Values may hold
// quoted strings and braces, so parentheses inside quotes don't end a prop.
func parseRawDeclProps(raw string) (pkg.Map[props.DeclProp, string], error) {
	decl_props := pkg.Map[props.DeclProp, string]{}
	rest := strings.TrimSpace(raw)

	for len(rest) > 0 {
		open := strings.IndexByte(rest, '(')
		if open <= 0 {
			return nil, fmt.Errorf("Invalid prop syntax: %s", rest)
		}
		prop := props.DeclProp(strings.TrimSpace(rest[:open]))
		if !prop.IsValid() {
			return nil, fmt.Errorf("Invalid pcd prop: %s", prop)
		}
		if decl_props.Has(prop) {
			return nil, fmt.Errorf("Duplicate pcd prop: %s", prop)
		}

		end, err := closingParen(rest, open)
		if err != nil {
			return nil, err
		}
		decl_props.Set(prop, strings.TrimSpace(rest[open+1:end]))
		rest = strings.TrimSpace(rest[end+1:])
	}

	return decl_props, nil
}

func closingParen(s string, open int) (int, error) {
	depth := 0
	in_quote := false
	for i := open; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && in_quote:
			i++
		case c == '"':
			in_quote = !in_quote
		case in_quote:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("Unterminated prop: %s", s)
}
