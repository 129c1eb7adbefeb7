package database

import (
	"strconv"
	"strings"

	"github.com/existflow/toedo/internal/store"
)

// query accumulates positional arguments for a Postgres statement
type query struct {
	args []any
}

// arg appends v and returns its $n placeholder
func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

type predicate struct {
	column string
	value  any
}

// where renders ANDed equality predicates. No predicates renders nothing.
func (q *query) where(preds []predicate) string {
	if len(preds) == 0 {
		return ""
	}
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.column + " = " + q.arg(p.value)
	}
	return " WHERE " + strings.Join(parts, " AND ")
}

// set renders a SET list. A nil value renders as NULL without an argument.
func (q *query) set(cols []predicate) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		if c.value == nil {
			parts[i] = c.column + " = NULL"
			continue
		}
		parts[i] = c.column + " = " + q.arg(c.value)
	}
	return " SET " + strings.Join(parts, ", ")
}

func workspacePredicates(f store.WorkspaceFilter) []predicate {
	var preds []predicate
	if f.ID != nil {
		preds = append(preds, predicate{"id", *f.ID})
	}
	if f.OwnerID != nil {
		preds = append(preds, predicate{"owner_id", *f.OwnerID})
	}
	return preds
}

func todoPredicates(f store.TodoFilter) []predicate {
	var preds []predicate
	if f.ID != nil {
		preds = append(preds, predicate{"id", *f.ID})
	}
	if f.WorkspaceID != nil {
		preds = append(preds, predicate{"workspace_id", *f.WorkspaceID})
	}
	if f.OwnerID != nil {
		preds = append(preds, predicate{"owner_id", *f.OwnerID})
	}
	return preds
}
