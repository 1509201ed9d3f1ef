package utils

import (
	"context"
	"database/sql"

	"github.com/sirupsen/logrus"
)

// Wrappers around go's sql.DB, sql.Tx and sql.Stmt types so queries can be
// intercepted by the debug decorators below.

type QueryWrapper interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareStatement(ctx context.Context, query string) (StmtWrapper, error)
}

type StmtWrapper interface {
	QueryContext(ctx context.Context, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, args ...any) *sql.Row
	ExecContext(ctx context.Context, args ...any) (sql.Result, error)
	Close() error
}

type DBWrapper struct {
	DB *sql.DB
}

func (d DBWrapper) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.DB.QueryContext(ctx, query, args...)
}

func (d DBWrapper) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.DB.QueryRowContext(ctx, query, args...)
}

func (d DBWrapper) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.DB.ExecContext(ctx, query, args...)
}

func (d DBWrapper) PrepareStatement(ctx context.Context, query string) (StmtWrapper, error) {
	return d.DB.PrepareContext(ctx, query)
}

type TXWrapper struct {
	TX *sql.Tx
}

func (t TXWrapper) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.TX.QueryContext(ctx, query, args...)
}

func (t TXWrapper) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.TX.QueryRowContext(ctx, query, args...)
}

func (t TXWrapper) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.TX.ExecContext(ctx, query, args...)
}

func (t TXWrapper) PrepareStatement(ctx context.Context, query string) (StmtWrapper, error) {
	return t.TX.PrepareContext(ctx, query)
}

type DebugQueryWrapper struct {
	QW    QueryWrapper
	Entry *logrus.Entry
}

func (d DebugQueryWrapper) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	d.Entry.Debugf("query=%v args=%v", query, args)

	return d.QW.QueryContext(ctx, query, args...)
}

func (d DebugQueryWrapper) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	d.Entry.Debugf("query=%v args=%v", query, args)

	return d.QW.QueryRowContext(ctx, query, args...)
}

func (d DebugQueryWrapper) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	d.Entry.Debugf("exec=%v args=%v", query, args)

	return d.QW.ExecContext(ctx, query, args...)
}

func (d DebugQueryWrapper) PrepareStatement(ctx context.Context, query string) (StmtWrapper, error) {
	stmt, err := d.QW.PrepareStatement(ctx, query)
	if err != nil {
		return nil, err
	}

	return &DebugStmtWrapper{
		SW:    stmt,
		Entry: d.Entry,
		query: query,
	}, nil
}

type DebugStmtWrapper struct {
	SW    StmtWrapper
	Entry *logrus.Entry
	query string
}

func (d DebugStmtWrapper) QueryContext(ctx context.Context, args ...any) (*sql.Rows, error) {
	d.Entry.Debugf("query=%v args=%v", d.query, args)

	return d.SW.QueryContext(ctx, args...)
}

func (d DebugStmtWrapper) QueryRowContext(ctx context.Context, args ...any) *sql.Row {
	d.Entry.Debugf("query=%v args=%v", d.query, args)

	return d.SW.QueryRowContext(ctx, args...)
}

func (d DebugStmtWrapper) ExecContext(ctx context.Context, args ...any) (sql.Result, error) {
	d.Entry.Debugf("exec=%v args=%v", d.query, args)

	return d.SW.ExecContext(ctx, args...)
}

func (d DebugStmtWrapper) Close() error {
	return d.SW.Close()
}
