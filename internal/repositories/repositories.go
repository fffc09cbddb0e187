package repositories

import (
	"database/sql"
	"fmt"
)

// sequencer is satisfied by both [sql.DB] and [sql.Tx].
type sequencer interface {
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence bumps the counter in {table}_sequence and returns the new value.
//
// The update and read happen in one statement, so callers inside a transaction get
// a number that is released again if the transaction rolls back.
func NextSequence(q sequencer, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := q.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
	}
	return sequence, nil
}
