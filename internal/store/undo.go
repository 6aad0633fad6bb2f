package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/keytar/internal/anim"
)

// ErrNothingToUndo is returned by Undo when the journal is empty.
var ErrNothingToUndo = anim.ErrNothingToUndo

// UndoGroup is one committed batch in the journal.
type UndoGroup struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Seq     int64  `json:"seq"`
	Entries int    `json:"entries"`
}

// History returns the undo groups, oldest first.
func (ss *Session) History() ([]UndoGroup, error) {
	rows, err := ss.q().QueryContext(ss.ctx, `
		SELECT g.id, g.label, g.seq, COUNT(e.seq)
		FROM undo_groups g
		LEFT JOIN undo_entries e ON e.group_id = g.id
		GROUP BY g.id
		ORDER BY g.seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query undo groups: %w", err)
	}
	defer rows.Close()

	groups := []UndoGroup{}
	for rows.Next() {
		var g UndoGroup
		if err := rows.Scan(&g.ID, &g.Label, &g.Seq, &g.Entries); err != nil {
			return nil, fmt.Errorf("scan undo group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate undo groups: %w", err)
	}
	return groups, nil
}

// Undo reverts the most recent undo group and returns its label.
//
// Journal entries are replayed newest first, each restoring the key it
// recorded (or removing the key when none existed). The group is then
// dropped. The whole undo is one transaction.
func (ss *Session) Undo() (string, error) {
	if ss.tx != nil {
		return "", ErrBatchOpen
	}
	tx, err := ss.store.db.BeginTx(ss.ctx, nil)
	if err != nil {
		return "", fmt.Errorf("undo: begin: %w", err)
	}
	label, err := ss.undo(tx)
	if err != nil {
		tx.Rollback()
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("undo: commit: %w", err)
	}
	return label, nil
}

type journalEntry struct {
	channel string
	frame   float64
	prior   sql.NullString
}

func (ss *Session) undo(tx *sql.Tx) (string, error) {
	var group, label string
	err := tx.QueryRowContext(ss.ctx, `
		SELECT id, label FROM undo_groups ORDER BY seq DESC LIMIT 1
	`).Scan(&group, &label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNothingToUndo
	}
	if err != nil {
		return "", fmt.Errorf("undo: query group: %w", err)
	}

	rows, err := tx.QueryContext(ss.ctx, `
		SELECT channel, frame, prior
		FROM undo_entries
		WHERE group_id = ?
		ORDER BY seq DESC
	`, group)
	if err != nil {
		return "", fmt.Errorf("undo: query journal: %w", err)
	}
	var entries []journalEntry
	for rows.Next() {
		var e journalEntry
		if err := rows.Scan(&e.channel, &e.frame, &e.prior); err != nil {
			rows.Close()
			return "", fmt.Errorf("undo: scan journal: %w", err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("undo: iterate journal: %w", err)
	}

	for _, e := range entries {
		if err := deleteKey(ss.ctx, tx, e.channel, e.frame); err != nil {
			return "", fmt.Errorf("undo: %w", err)
		}
		k, ok, err := unmarshalPrior(e.prior)
		if err != nil {
			return "", fmt.Errorf("undo: %w", err)
		}
		if ok {
			if err := putKey(ss.ctx, tx, e.channel, k); err != nil {
				return "", fmt.Errorf("undo: %w", err)
			}
		}
	}

	if _, err := tx.ExecContext(ss.ctx, `DELETE FROM undo_groups WHERE id = ?`, group); err != nil {
		return "", fmt.Errorf("undo: drop group: %w", err)
	}
	slog.Info("undone", "label", label, "group", group, "entries", len(entries))
	return label, nil
}
