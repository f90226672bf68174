// Package repository holds the storage-layer primitives shared by the
// concrete stores in this directory (see fixture.go) -- the DB/Tx
// abstraction over database.DB, and the paging filter the fixture store's
// List query takes.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// ListFilter narrows and pages a scenario listing. FixtureStore.List reads
// Search, Offset and Limit; it takes the org from its own orgID argument and
// always orders by updated_at descending, so OrgID, OrderBy and OrderDir
// have no effect on it.
type ListFilter struct {
	OrgID    *uuid.UUID `json:"org_id,omitempty"`
	Search   string     `json:"search,omitempty"` // substring match on scenario name
	Offset   int        `json:"offset"`
	Limit    int        `json:"limit"`
	OrderBy  string     `json:"order_by,omitempty"`
	OrderDir string     `json:"order_dir,omitempty"` // asc/desc
}

// DefaultListFilter returns paging defaults of 20 per page starting at
// offset 0. Its OrderBy/OrderDir values name the order FixtureStore.List
// uses anyway (updated_at descending); List does not read them.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Offset:   0,
		Limit:    20,
		OrderBy:  "updated_at",
		OrderDir: "desc",
	}
}

// WithLimit returns a copy of f with Limit set.
func (f ListFilter) WithLimit(limit int) ListFilter {
	f.Limit = limit
	return f
}

// WithOffset returns a copy of f with Offset set.
func (f ListFilter) WithOffset(offset int) ListFilter {
	f.Offset = offset
	return f
}

// WithOrgID returns a copy of f scoped to orgID.
func (f ListFilter) WithOrgID(orgID uuid.UUID) ListFilter {
	f.OrgID = &orgID
	return f
}

// WithSearch returns a copy of f filtering on a scenario name substring.
func (f ListFilter) WithSearch(search string) ListFilter {
	f.Search = search
	return f
}

// DB is the subset of *database.DB (or an open *sql.Tx) a store needs --
// narrow enough that FixtureStore can run unmodified against either a bare
// connection or a transaction.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx is a DB that can also be committed or rolled back.
type Tx interface {
	DB
	Commit() error
	Rollback() error
}

// TxFunc is the body passed to a transactional helper.
type TxFunc func(tx Tx) error

// Scanner is satisfied by both *sql.Row and *sql.Rows, letting a single
// scan function handle either.
type Scanner interface {
	Scan(dest ...interface{}) error
}
