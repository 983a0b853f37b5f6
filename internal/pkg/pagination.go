package pkg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/genbot/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100

	createdAtColumn  = "created_at"
	primaryKeyColumn = "id"
)

// ListConfig describes how one resource may be listed.
//
// SortColumns is the whitelist of query-parameter names a client may use in
// both "sort" and "filterFields". Names outside it never reach the database.
type ListConfig struct {
	// SearchColumns are matched by the free-text "search" parameter.
	SearchColumns []clause.Column
	// SortColumns maps query-parameter names to columns.
	SortColumns map[string]clause.Column
	// DefaultSort is a SortColumns key used when "sort" is absent or unknown.
	// When empty or unknown the created_at column is used.
	DefaultSort string
	// Scope is always AND-ed into the query, typically a tenant restriction.
	Scope clause.Expression
}

// Column returns a column handle for the given column name.
func Column(name string) clause.Column {
	return clause.Column{Name: name}
}

// Eq returns an equality condition on the given column, for use as ListConfig.Scope.
func Eq(column string, value any) clause.Expression {
	return clause.Eq{Column: Column(column), Value: value}
}

// PaginatedList returns one page of T matching q under cfg, together with
// pagination metadata computed from the total match count.
//
// The table is the one T maps to. The row fetch and the count run
// concurrently on independent sessions and share the same condition.
// Store errors are returned wrapped; nothing is retried.
func PaginatedList[T any](ctx context.Context, db *gorm.DB, q domain.ListQuery, cfg ListConfig) (*domain.ListResult[T], error) {
	if db == nil {
		return nil, errors.New("paginated list: db is nil")
	}

	q = normalizeListQuery(q)
	cond := buildListCondition(q, cfg)
	order := resolveOrder(q, cfg)
	offset := (q.Page - 1) * q.Limit

	var (
		rows  []T
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tx := withCondition(db.WithContext(gctx).Model(new(T)), cond)
		return tx.Order(order).Offset(offset).Limit(q.Limit).Find(&rows).Error
	})
	g.Go(func() error {
		tx := withCondition(db.WithContext(gctx).Model(new(T)), cond)
		return tx.Count(&total).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("paginated list: %w", err)
	}

	if rows == nil {
		rows = []T{}
	}

	return &domain.ListResult[T]{
		Data: rows,
		Meta: domain.NewPaginationMeta(q.Page, q.Limit, total),
	}, nil
}

// normalizeListQuery fills defaults for callers that bypass HTTP binding,
// such as the admin CLI.
func normalizeListQuery(q domain.ListQuery) domain.ListQuery {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Order != domain.OrderAsc {
		q.Order = domain.OrderDesc
	}
	return q
}

func withCondition(tx *gorm.DB, cond clause.Expression) *gorm.DB {
	if cond == nil {
		return tx
	}
	return tx.Where(cond)
}

// buildListCondition composes the WHERE expression for q, or nil when the
// query is unrestricted.
func buildListCondition(q domain.ListQuery, cfg ListConfig) clause.Expression {
	var conds []clause.Expression
	if match := matchCondition(q, cfg); match != nil {
		conds = append(conds, match)
	}
	if cfg.Scope != nil {
		conds = append(conds, cfg.Scope)
	}

	switch len(conds) {
	case 0:
		return nil
	case 1:
		return conds[0]
	default:
		return clause.And(conds...)
	}
}

// matchCondition returns the targeted filter when it resolves to at least one
// whitelisted column, otherwise the free-text search, otherwise nil.
func matchCondition(q domain.ListQuery, cfg ListConfig) clause.Expression {
	if q.FilterValue != "" && q.FilterFields != "" {
		if cols := resolveFilterColumns(q.FilterFields, cfg.SortColumns); len(cols) > 0 {
			return containsAny(cols, q.FilterValue)
		}
	}
	if q.Search != "" && len(cfg.SearchColumns) > 0 {
		return containsAny(cfg.SearchColumns, q.Search)
	}
	return nil
}

// resolveFilterColumns maps a comma separated name list onto the whitelist.
// Unknown names and duplicates are dropped.
func resolveFilterColumns(fields string, whitelist map[string]clause.Column) []clause.Column {
	var cols []clause.Column
	seen := make(map[string]struct{})
	for _, name := range strings.Split(fields, ",") {
		name = strings.TrimSpace(name)
		col, ok := whitelist[name]
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		cols = append(cols, col)
	}
	return cols
}

// containsAny ORs a case-insensitive substring match of value over cols.
// Columns are cast to text so that whitelisted timestamp columns can be
// matched on postgres too. A single column yields the bare match; gorm treats
// a one-element OR group inside WHERE as "OR previous condition".
func containsAny(cols []clause.Column, value string) clause.Expression {
	pattern := "%" + strings.ToLower(value) + "%"
	exprs := make([]clause.Expression, 0, len(cols))
	for _, col := range cols {
		exprs = append(exprs, clause.Expr{
			SQL:  "LOWER(CAST(? AS TEXT)) LIKE ?",
			Vars: []any{col, pattern},
		})
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return clause.Or(exprs...)
}

// resolveOrder picks the sort column from the whitelist and appends the
// primary key in the same direction so that ties page deterministically.
func resolveOrder(q domain.ListQuery, cfg ListConfig) clause.OrderBy {
	col, ok := cfg.SortColumns[q.Sort]
	if q.Sort == "" || !ok {
		col, ok = cfg.SortColumns[cfg.DefaultSort]
		if cfg.DefaultSort == "" || !ok {
			col = Column(createdAtColumn)
		}
	}

	desc := q.Order != domain.OrderAsc
	order := clause.OrderBy{Columns: []clause.OrderByColumn{{Column: col, Desc: desc}}}
	if col.Name != primaryKeyColumn {
		order.Columns = append(order.Columns, clause.OrderByColumn{Column: Column(primaryKeyColumn), Desc: desc})
	}
	return order
}
