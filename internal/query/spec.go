// Package query describes repository reads as data: column filters, a single
// sort key, an optional page window and a list of related-entity includes.
// Specs compile to SQL clauses in a fixed order, so repeated evaluations over
// different specs are independent of one another.
package query

import (
	"fmt"
	"strings"
)

type Op string

const (
	OpEq    Op = "="
	OpILike Op = "ILIKE"
)

type Filter struct {
	Column string
	Op     Op
	Value  any
}

type Spec struct {
	filters     []Filter
	orderBy     string
	orderByDesc string
	skip        int
	take        int
	paging      bool
	includes    []string
}

func New() *Spec {
	return &Spec{}
}

// Where adds a filter clause. Filters are AND-joined; a spec with no filters
// matches everything. Column names come from repository code, never from
// request input.
func (s *Spec) Where(column string, op Op, value any) *Spec {
	s.filters = append(s.filters, Filter{Column: column, Op: op, Value: value})
	return s
}

func (s *Spec) OrderBy(column string) *Spec {
	s.orderBy = column
	return s
}

func (s *Spec) OrderByDesc(column string) *Spec {
	s.orderByDesc = column
	return s
}

// Page enables the skip/take window. take=0 is honored literally and yields
// zero rows. Clamping page size is the caller's job, not the evaluator's.
func (s *Spec) Page(skip, take int) *Spec {
	s.skip = skip
	s.take = take
	s.paging = true
	return s
}

// Include names a related-entity load resolved by the repository after the
// row query.
func (s *Spec) Include(name string) *Spec {
	s.includes = append(s.includes, name)
	return s
}

func (s *Spec) Includes() []string {
	return s.includes
}

// Compile appends WHERE, ORDER BY and LIMIT/OFFSET to a base SELECT, in that
// order. When both sort directions are set, ascending wins. argOffset shifts
// placeholder numbering for callers that already bound arguments.
func (s *Spec) Compile(base string, argOffset int) (string, []any) {
	var b strings.Builder
	b.WriteString(base)

	args := make([]any, 0, len(s.filters))

	if len(s.filters) > 0 {
		b.WriteString(" WHERE ")
		for i, f := range s.filters {
			if i > 0 {
				b.WriteString(" AND ")
			}
			args = append(args, f.Value)
			fmt.Fprintf(&b, "%s %s $%d", f.Column, f.Op, argOffset+len(args))
		}
	}

	switch {
	case s.orderBy != "":
		fmt.Fprintf(&b, " ORDER BY %s ASC", s.orderBy)
	case s.orderByDesc != "":
		fmt.Fprintf(&b, " ORDER BY %s DESC", s.orderByDesc)
	}

	if s.paging {
		fmt.Fprintf(&b, " LIMIT %d OFFSET %d", s.take, s.skip)
	}

	return b.String(), args
}

// CompileCount wraps the fully compiled spec, so paging narrows the counted
// window exactly as it narrows the row query.
func (s *Spec) CompileCount(base string) (string, []any) {
	inner, args := s.Compile(base, 0)
	return "SELECT COUNT(*) FROM (" + inner + ") AS counted", args
}
