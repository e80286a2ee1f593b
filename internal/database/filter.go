package database

import (
	"fmt"
	"strings"
)

// Filter builds a parameterized WHERE clause. Conditions are ANDed in the
// order they are added; placeholders are numbered from $1.
type Filter struct {
	conditions []string
	args       []interface{}
}

// NewFilter starts a filter with the mandatory brand scope.
func NewFilter(brandColumn, brand string) *Filter {
	f := &Filter{}
	return f.Eq(brandColumn, brand)
}

func (f *Filter) next() int {
	return len(f.args) + 1
}

// Eq adds column = value.
func (f *Filter) Eq(column string, value interface{}) *Filter {
	f.conditions = append(f.conditions, fmt.Sprintf("%s = $%d", column, f.next()))
	f.args = append(f.args, value)
	return f
}

// ILike adds a case-insensitive substring match of term against any of the
// columns. An empty term adds nothing.
func (f *Filter) ILike(term string, columns ...string) *Filter {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return f
	}
	pos := f.next()
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", c, pos)
	}
	f.conditions = append(f.conditions, "("+strings.Join(parts, " OR ")+")")
	f.args = append(f.args, "%"+term+"%")
	return f
}

// Gte adds column >= value.
func (f *Filter) Gte(column string, value interface{}) *Filter {
	f.conditions = append(f.conditions, fmt.Sprintf("%s >= $%d", column, f.next()))
	f.args = append(f.args, value)
	return f
}

// Lt adds column < value.
func (f *Filter) Lt(column string, value interface{}) *Filter {
	f.conditions = append(f.conditions, fmt.Sprintf("%s < $%d", column, f.next()))
	f.args = append(f.args, value)
	return f
}

// Where renders the clause, including the WHERE keyword, or "" when empty.
func (f *Filter) Where() string {
	if len(f.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(f.conditions, " AND ")
}

// Args returns the bound values in placeholder order.
func (f *Filter) Args() []interface{} {
	out := make([]interface{}, len(f.args))
	copy(out, f.args)
	return out
}

// Page appends LIMIT/OFFSET placeholders to query and returns it with the
// extended argument list.
func (f *Filter) Page(query string, limit, offset int32) (string, []interface{}) {
	pos := f.next()
	args := append(f.Args(), limit, offset)
	return fmt.Sprintf("%s LIMIT $%d OFFSET $%d", query, pos, pos+1), args
}
