// Package query turns raw request parameters into a refined GORM query:
// filter → sort → field selection → pagination, applied in that order.
// Parsing never mutates the source values and never executes the query.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Op is a comparison operator tag. Suffix tokens in parameter keys
// (price[gte]=500) map onto these through suffixOps, an explicit enumerated
// mapping rather than string rewriting.
type Op int

const (
	OpEq Op = iota
	OpGt
	OpGte
	OpLt
	OpLte
)

var suffixOps = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
}

func (o Op) SQL() string {
	switch o {
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	default:
		return "="
	}
}

type Condition struct {
	Column string
	Op     Op
	Value  string
}

type Order struct {
	Column string
	Desc   bool
}

// Descriptor is the parse result for one read operation. It is immutable once
// built and consumed exactly once by Apply.
type Descriptor struct {
	Filters []Condition
	Sort    []Order
	Fields  []string
	Page    int
	Limit   int
}

const (
	defaultPage  = 1
	defaultLimit = 100
)

// reserved parameter names never treated as filters
func reserved(key string) bool {
	switch key {
	case "page", "sort", "limit", "fields":
		return true
	}
	return false
}

// Parse builds a Descriptor from raw query parameters. Unrecognized keys pass
// through as equality filters; value validation stays with the resource
// schema. Keys that do not form a legal column identifier are dropped so they
// can never reach the SQL layer.
func Parse(params url.Values) Descriptor {
	d := Descriptor{Page: defaultPage, Limit: defaultLimit}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic filter order regardless of map iteration

	for _, key := range keys {
		if reserved(key) {
			continue
		}
		field, op := splitOperator(key)
		col := toColumn(field)
		if !validIdent(col) {
			continue
		}
		for _, v := range params[key] {
			d.Filters = append(d.Filters, Condition{Column: col, Op: op, Value: v})
		}
	}

	d.Sort = parseSort(params.Get("sort"))
	d.Fields = parseFields(params.Get("fields"))

	if p, err := strconv.Atoi(params.Get("page")); err == nil && p >= 1 {
		d.Page = p
	}
	if l, err := strconv.Atoi(params.Get("limit")); err == nil && l >= 1 {
		d.Limit = l
	}
	return d
}

// Skip is the row offset implied by page/limit.
func (d Descriptor) Skip() int { return (d.Page - 1) * d.Limit }

// Apply chains the four transformations onto tx. Execution stays with the
// caller; requesting a page past the end yields an empty result, not an error.
func (d Descriptor) Apply(tx *gorm.DB) *gorm.DB {
	for _, f := range d.Filters {
		tx = tx.Where(f.Column+" "+f.Op.SQL()+" ?", f.Value)
	}
	for _, o := range d.Sort {
		dir := " asc"
		if o.Desc {
			dir = " desc"
		}
		tx = tx.Order(o.Column + dir)
	}
	if len(d.Fields) > 0 {
		tx = tx.Select(d.Fields)
	} else {
		tx = tx.Omit("updated_at")
	}
	return tx.Offset(d.Skip()).Limit(d.Limit)
}

// splitOperator recognizes the field[op] form and maps the suffix token onto
// its operator tag. Anything else is an equality condition.
func splitOperator(key string) (field string, op Op) {
	open := strings.IndexByte(key, '[')
	if open > 0 && strings.HasSuffix(key, "]") {
		if o, ok := suffixOps[key[open+1:len(key)-1]]; ok {
			return key[:open], o
		}
	}
	return key, OpEq
}

func parseSort(raw string) []Order {
	if raw == "" {
		return []Order{{Column: "created_at", Desc: true}}
	}
	var out []Order
	for _, spec := range strings.Split(raw, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		desc := strings.HasPrefix(spec, "-")
		col := toColumn(strings.TrimPrefix(spec, "-"))
		if !validIdent(col) {
			continue
		}
		out = append(out, Order{Column: col, Desc: desc})
	}
	if len(out) == 0 {
		return []Order{{Column: "created_at", Desc: true}}
	}
	return out
}

func parseFields(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(raw, ",") {
		col := toColumn(strings.TrimSpace(f))
		if validIdent(col) {
			out = append(out, col)
		}
	}
	return out
}

// toColumn normalizes a camelCase parameter name to the snake_case column the
// engine knows (ratingsAverage → ratings_average).
func toColumn(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
