package rdb

import (
	"context"
	"database/sql"
	"fmt"
)

// Cursor is a pull-based iterator over matching records. Usage mirrors
// database/sql rows:
//
//	cur, err := store.OpenCursor(ctx, prog)
//	...
//	defer cur.Close()
//	for cur.Next() {
//		rec := cur.Record()
//		...
//	}
//	if err := cur.Err(); err != nil { ... }
//
// A cursor is valid only while its owning Store remains open.
type Cursor struct {
	rows *sql.Rows
	prog *Program
	cur  Value
	err  error
}

// OpenCursor opens a cursor bound to the compiled program. A nil program
// matches every record. Records are yielded in insertion order.
func (s *Store) OpenCursor(ctx context.Context, prog *Program) (*Cursor, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("opening cursor: %w", err)
	}
	return &Cursor{rows: rows, prog: prog}, nil
}

// Next advances to the next matching record. It returns false at end of
// stream or on error; check Err afterwards to distinguish.
func (c *Cursor) Next() bool {
	for c.rows.Next() {
		var blob []byte
		if err := c.rows.Scan(&blob); err != nil {
			c.err = fmt.Errorf("scanning record row: %w", err)
			return false
		}
		rec, err := DecodeRecord(blob)
		if err != nil {
			c.err = err
			return false
		}
		if !c.prog.Matches(rec) {
			continue
		}
		c.cur = rec
		return true
	}
	if err := c.rows.Err(); err != nil {
		c.err = fmt.Errorf("reading records: %w", err)
	}
	return false
}

// Record returns the record produced by the last successful Next. The
// value is only guaranteed valid until the next Next call.
func (c *Cursor) Record() Value { return c.cur }

// Err returns the first error encountered while iterating, if any.
func (c *Cursor) Err() error { return c.err }

// Close releases the cursor. Safe to call more than once.
func (c *Cursor) Close() error {
	if c == nil || c.rows == nil {
		return nil
	}
	err := c.rows.Close()
	c.rows = nil
	return err
}
