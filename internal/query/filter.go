package query

import (
	"fmt"
	"sort"
	"strings"
)

// SearchKey is the reserved filter key for cross-field free-text search.
const SearchKey = "search"

// Filters maps filter keys to raw values. A key is either a catalog field
// name (exact match), `<field>_<operator>` or the reserved SearchKey.
type Filters map[string]interface{}

var operators = map[string]string{
	"eq":  "=",
	"gt":  ">",
	"gte": ">=",
	"lt":  "<",
	"lte": "<=",
}

// Predicates is the AND-combination of conditions produced by Build,
// carrying numbered-placeholder SQL fragments and their arguments. The
// zero value matches every record.
type Predicates struct {
	conds []string
	args  []interface{}
}

// Where renders the WHERE clause, or an empty string when no condition
// applies.
func (p Predicates) Where() string {
	if len(p.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.conds, " AND ")
}

// Args returns the placeholder arguments in order.
func (p Predicates) Args() []interface{} {
	return p.args
}

// Len reports how many conditions were built.
func (p Predicates) Len() int {
	return len(p.conds)
}

func (p *Predicates) add(cond string, args ...interface{}) {
	p.conds = append(p.conds, cond)
	p.args = append(p.args, args...)
}

// Build translates the raw filter map into predicates against the catalog.
// The translation is pure and never fails:
//
//   - entries with nil or empty-string values contribute nothing;
//   - SearchKey becomes an OR of case-insensitive substring matches over
//     the catalog's searchable text fields (a no-op when there are none);
//   - a key naming a catalog field directly is an exact match, so field
//     names containing underscores keep working;
//   - otherwise the segment after the last underscore is read as an
//     operator (eq, like, gt, gte, lt, lte; anything else coerces to eq);
//   - keys that resolve to no catalog field are silently dropped.
//
// Ordering operators are emitted for any field type and left to SQL
// comparison semantics, which for text means collation order.
func Build(catalog Catalog, filters Filters) Predicates {
	var p Predicates

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := filters[key]
		if isEmpty(value) {
			continue
		}

		if key == SearchKey {
			p.addSearch(catalog, fmt.Sprint(value))
			continue
		}

		field, op, ok := resolve(catalog, key)
		if !ok {
			continue
		}

		column := field.SQLColumn()
		switch op {
		case "like":
			p.add(fmt.Sprintf("LOWER(%s) LIKE $%d", column, len(p.args)+1), likePattern(fmt.Sprint(value)))
		default:
			p.add(fmt.Sprintf("%s %s $%d", column, operators[op], len(p.args)+1), value)
		}
	}

	return p
}

func (p *Predicates) addSearch(catalog Catalog, term string) {
	fields := catalog.SearchFields()
	if len(fields) == 0 {
		return
	}

	placeholder := len(p.args) + 1
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("LOWER(%s) LIKE $%d", f.SQLColumn(), placeholder)
	}
	p.add("("+strings.Join(parts, " OR ")+")", likePattern(term))
}

// resolve maps a filter key to a catalog field and operator. Exact field
// names win over operator suffixes.
func resolve(catalog Catalog, key string) (Field, string, bool) {
	if field, ok := catalog.Lookup(key); ok {
		return field, "eq", true
	}

	idx := strings.LastIndex(key, "_")
	if idx <= 0 {
		return Field{}, "", false
	}

	field, ok := catalog.Lookup(key[:idx])
	if !ok {
		return Field{}, "", false
	}

	op := key[idx+1:]
	if op != "like" {
		if _, known := operators[op]; !known {
			op = "eq"
		}
	}
	return field, op, true
}

func likePattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}
