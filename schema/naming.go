package schema

import (
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
)

// Naming utilities for deriving schema field names from record members and
// table names from record type names. Conversions must be deterministic:
// schema stability depends on the same input always producing the same name.

// pluralizeClient is a singleton instance for consistent pluralization behavior.
var pluralizeClient = pluralizer.NewClient()

// AccessorPrefix is the conventional accessor method prefix. Methods named
// Get<Member> contribute the field derived from <Member>.
const AccessorPrefix = "Get"

// =========================================================================
// Core Interfaces
// =========================================================================

// FieldNamingStrategy converts a record member name (a struct field name or
// an accessor method name with its prefix already stripped) to a schema
// field name.
type FieldNamingStrategy interface {
	FieldName(member string) string
}

// TableNamingStrategy converts a record type name to a sink table name.
type TableNamingStrategy interface {
	TableName(typeName string) string
}

// NamingStrategy combines field and table naming.
type NamingStrategy interface {
	FieldNamingStrategy
	TableNamingStrategy
}

// =========================================================================
// Field Naming
// =========================================================================

// FieldNamingType represents the supported field naming conventions.
type FieldNamingType int

const (
	FieldLowerCamel FieldNamingType = iota // firstName, createdAt
	FieldSnakeCase                         // first_name, created_at
)

type fieldNamingStrategy struct {
	namingType FieldNamingType
}

// NewFieldNamingStrategy creates a field naming strategy for the given convention.
func NewFieldNamingStrategy(namingType FieldNamingType) FieldNamingStrategy {
	return &fieldNamingStrategy{namingType: namingType}
}

func (f *fieldNamingStrategy) FieldName(member string) string {
	switch f.namingType {
	case FieldSnakeCase:
		return toSnakeCase(member)
	default:
		return toLowerCamel(member)
	}
}

// StripAccessorPrefix removes the Get prefix from an accessor method name.
// Returns false when the name is not a conforming accessor (no prefix, or
// nothing after it).
func StripAccessorPrefix(method string) (string, bool) {
	if !strings.HasPrefix(method, AccessorPrefix) || len(method) == len(AccessorPrefix) {
		return "", false
	}
	return method[len(AccessorPrefix):], true
}

// =========================================================================
// Table Naming
// =========================================================================

// TableNamingType represents the supported table naming conventions.
type TableNamingType int

const (
	TableSnakeCasePlural   TableNamingType = iota // users, blog_posts
	TableSnakeCaseSingular                        // user, blog_post
)

type tableNamingStrategy struct {
	namingType TableNamingType
}

// NewTableNamingStrategy creates a table naming strategy for the given convention.
func NewTableNamingStrategy(namingType TableNamingType) TableNamingStrategy {
	return &tableNamingStrategy{namingType: namingType}
}

func (t *tableNamingStrategy) TableName(typeName string) string {
	snake := toSnakeCase(typeName)
	if t.namingType == TableSnakeCaseSingular {
		return snake
	}
	return pluralizeClient.Plural(snake)
}

// =========================================================================
// Default Strategy
// =========================================================================

type defaultNaming struct {
	FieldNamingStrategy
	TableNamingStrategy
}

// DefaultNamingStrategy returns the conventional configuration: lowerCamel
// field names and pluralized snake_case table names.
func DefaultNamingStrategy() NamingStrategy {
	return &defaultNaming{
		FieldNamingStrategy: NewFieldNamingStrategy(FieldLowerCamel),
		TableNamingStrategy: NewTableNamingStrategy(TableSnakeCasePlural),
	}
}

// =========================================================================
// Case Conversion
// =========================================================================

// toSnakeCase converts PascalCase or camelCase to snake_case. Runs of
// capitals are treated as one word (HTTPStatus -> http_status).
func toSnakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)

	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevEndsWord := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevEndsWord || (unicode.IsUpper(runes[i-1]) && nextLower)) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// toLowerCamel lowers the leading capital run of a PascalCase name
// (FirstName -> firstName, URL -> url, URLPath -> urlPath).
func toLowerCamel(name string) string {
	if name == "" {
		return name
	}

	runes := []rune(name)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	if upper == 0 {
		return name
	}

	// Keep the last capital of a run when it starts the next word.
	if upper > 1 && upper < len(runes) {
		upper--
	}
	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
