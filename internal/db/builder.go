package db

import (
	"strconv"
	"strings"
)

// Direction is an ORDER BY direction.
type Direction string

// Order directions.
const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Statement is a parameterized SQL statement.
type Statement struct {
	SQL  string
	Args []any
}

// likeEscaper escapes LIKE wildcards so user text matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern returns a LIKE pattern matching s anywhere, with wildcards
// in s escaped. Use with ESCAPE '\'.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// SelectBuilder is a fluent builder for parameterized SELECT statements.
// Identifiers and expressions come from code; values always go through args.
type SelectBuilder struct {
	columns []string
	from    string
	joins   []string
	where   []string
	args    []any
	groupBy []string
	orderBy []string
	limit   int
	offset  int
}

// Select starts building a SELECT of the given columns.
func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns, limit: -1}
}

// From sets the source table.
func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.from = table
	return b
}

// Join appends a JOIN clause, e.g. "JOIN posts_fts ON posts_fts.rowid = p.id".
func (b *SelectBuilder) Join(clause string) *SelectBuilder {
	b.joins = append(b.joins, clause)
	return b
}

// Where appends a condition with ? placeholders, AND-ed with the rest.
func (b *SelectBuilder) Where(cond string, args ...any) *SelectBuilder {
	b.where = append(b.where, cond)
	b.args = append(b.args, args...)
	return b
}

// WhereEq appends "column = ?".
func (b *SelectBuilder) WhereEq(column string, v any) *SelectBuilder {
	return b.Where(column+" = ?", v)
}

// WhereGTE appends "column >= ?".
func (b *SelectBuilder) WhereGTE(column string, v any) *SelectBuilder {
	return b.Where(column+" >= ?", v)
}

// WhereLTE appends "column <= ?".
func (b *SelectBuilder) WhereLTE(column string, v any) *SelectBuilder {
	return b.Where(column+" <= ?", v)
}

// WhereContainsAny appends a parenthesized OR of escaped LIKE matches of text
// against each column.
func (b *SelectBuilder) WhereContainsAny(text string, columns ...string) *SelectBuilder {
	if len(columns) == 0 {
		return b
	}
	pattern := ContainsPattern(text)
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		parts[i] = c + ` LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return b.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// GroupBy appends GROUP BY expressions.
func (b *SelectBuilder) GroupBy(exprs ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, exprs...)
	return b
}

// OrderBy appends an ORDER BY term.
func (b *SelectBuilder) OrderBy(expr string, dir Direction) *SelectBuilder {
	b.orderBy = append(b.orderBy, expr+" "+string(dir))
	return b
}

// Page sets LIMIT and OFFSET.
func (b *SelectBuilder) Page(limit, offset int) *SelectBuilder {
	b.limit = limit
	b.offset = offset
	return b
}

// Build renders the statement.
func (b *SelectBuilder) Build() Statement {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(b.columns, ", "))
	b.writeBody(&sb)
	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	args := append([]any(nil), b.args...)
	if b.limit >= 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, b.limit, b.offset)
	}
	return Statement{SQL: sb.String(), Args: args}
}

// BuildCount renders SELECT COUNT(*) over the same source and conditions,
// ignoring columns, ordering and paging.
func (b *SelectBuilder) BuildCount() Statement {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*)")
	b.writeBody(&sb)
	return Statement{SQL: sb.String(), Args: append([]any(nil), b.args...)}
}

func (b *SelectBuilder) writeBody(sb *strings.Builder) {
	sb.WriteString(" FROM ")
	sb.WriteString(b.from)
	for _, j := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
}

// String renders the SQL for logging.
func (s Statement) String() string {
	return s.SQL + " [" + strconv.Itoa(len(s.Args)) + " args]"
}
