// Package naming maps catalog identifiers to Go identifiers.
//
// Tables become exported struct names (optionally singularized first),
// columns become exported field names, and both go through the same casing
// conversion so `user_id` and `user_account` always land on `UserID` and
// `UserAccount`. Collisions between distinct source names are fatal —
// generation never silently renames.
package naming

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"

	"github.com/koustreak/autostruct/internal/errs"
)

// commonInitialisms are written fully upper-cased in identifiers, the
// spelling gofmt'd Go code uses.
var commonInitialisms = map[string]bool{
	"api":  true,
	"db":   true,
	"html": true,
	"http": true,
	"id":   true,
	"ip":   true,
	"json": true,
	"sql":  true,
	"ttl":  true,
	"ui":   true,
	"uid":  true,
	"url":  true,
	"uuid": true,
	"xml":  true,
}

// reservedWords are Go keywords and predeclared identifiers that can never
// be used as a generated identifier. Exported CamelCase names cannot hit
// keywords, but enum constants and file stems can.
var reservedWords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
	"any": true, "bool": true, "byte": true, "error": true, "rune": true, "string": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
	"true": true, "false": true, "iota": true, "nil": true,
}

// Resolver converts raw catalog names into Go identifiers.
type Resolver struct {
	singular bool
}

// NewResolver creates a Resolver. When singular is true, table names are
// singularized before casing.
func NewResolver(singular bool) *Resolver {
	return &Resolver{singular: singular}
}

// TableIdent returns the struct identifier for a raw table name.
func (r *Resolver) TableIdent(raw string) string {
	name := raw
	if r.singular {
		name = inflect.Singularize(name)
	}
	return Exported(name)
}

// ColumnIdent returns the field identifier for a raw column name.
func (r *Resolver) ColumnIdent(raw string) string {
	return Exported(raw)
}

// TypeIdent returns the identifier for a user-defined type name. Type
// names are never singularized — `order_statuses` the enum stays plural.
func (r *Resolver) TypeIdent(raw string) string {
	return Exported(raw)
}

// FileName returns the deterministic file stem for a struct identifier,
// e.g. "TableBasicType" -> "table_basic_type", "UserID" -> "user_id".
func (r *Resolver) FileName(ident string) string {
	runes := []rune(ident)
	var b strings.Builder
	for i, c := range runes {
		if !unicode.IsUpper(c) {
			b.WriteRune(c)
			continue
		}
		prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if prevLower || (i > 0 && unicode.IsUpper(runes[i-1]) && nextLower) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(c))
	}
	return b.String()
}

// CheckDistinct verifies that no two raw table names resolve to the same
// struct identifier or the same output file stem. Distinct identifiers can
// still share a stem (AbCat and ABCat both file as ab_cat), and a shared
// stem would make one rendered file silently overwrite the other. It
// reports both source names on a collision; the run aborts before any
// mapping work happens.
func (r *Resolver) CheckDistinct(rawNames []string) error {
	seenIdents := map[string]string{}
	seenStems := map[string]string{}
	for _, raw := range rawNames {
		ident := r.TableIdent(raw)
		if prev, ok := seenIdents[ident]; ok {
			return errs.Newf(errs.KindNameCollision,
				"tables %q and %q both resolve to struct name %q - rename one or exclude it",
				prev, raw, ident)
		}
		seenIdents[ident] = raw

		stem := r.FileName(ident)
		if prev, ok := seenStems[stem]; ok {
			return errs.Newf(errs.KindNameCollision,
				"tables %q and %q both resolve to file name %q - rename one or exclude it",
				prev, raw, stem)
		}
		seenStems[stem] = raw
	}
	return nil
}

// CheckFieldsDistinct verifies that no two columns of one table resolve to
// the same field identifier.
func (r *Resolver) CheckFieldsDistinct(table string, rawColumns []string) error {
	seen := map[string]string{}
	for _, raw := range rawColumns {
		ident := r.ColumnIdent(raw)
		if prev, ok := seen[ident]; ok {
			return errs.Newf(errs.KindNameCollision,
				"columns %q and %q of table %q both resolve to field name %q",
				prev, raw, table, ident)
		}
		seen[ident] = raw
	}
	return nil
}

// Exported converts a snake_case catalog name into an exported CamelCase
// Go identifier, upper-casing common initialisms.
func Exported(raw string) string {
	parts := strings.FieldsFunc(raw, func(c rune) bool {
		return c == '_' || c == '-' || c == ' ' || c == '.'
	})

	var b strings.Builder
	for _, part := range parts {
		lower := strings.ToLower(part)
		if commonInitialisms[lower] {
			b.WriteString(strings.ToUpper(lower))
			continue
		}
		runes := []rune(lower)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}

	ident := b.String()
	if ident == "" {
		ident = "X"
	}
	// An identifier that starts with a digit is prefixed, never renamed.
	if unicode.IsDigit(rune(ident[0])) {
		ident = "X" + ident
	}
	return ident
}

// Escape applies the documented deterministic escape for identifiers that
// collide with a Go reserved word: a fixed trailing underscore.
func Escape(ident string) string {
	if reservedWords[ident] {
		return ident + "_"
	}
	return ident
}
