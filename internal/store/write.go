package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/keytar/internal/anim"
	"github.com/roach88/keytar/internal/scene"
)

// putKey inserts or replaces the key at k.Frame.
func putKey(ctx context.Context, q querier, channel string, k anim.Keyframe) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO keyframes
		(channel, `+keyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(channel, frame) DO UPDATE SET
			value = excluded.value,
			in_slope = excluded.in_slope,
			out_slope = excluded.out_slope,
			in_slope_auto = excluded.in_slope_auto,
			out_slope_auto = excluded.out_slope_auto,
			in_accel = excluded.in_accel,
			out_accel = excluded.out_accel,
			interp = excluded.interp
	`,
		channel,
		k.Frame,
		k.Value,
		k.InSlope,
		k.OutSlope,
		k.InSlopeAuto,
		k.OutSlopeAuto,
		k.InAccel,
		k.OutAccel,
		k.Interp.String(),
	)
	if err != nil {
		return fmt.Errorf("write keyframe: %w", err)
	}
	return nil
}

// deleteKey removes the key at frame, if any.
func deleteKey(ctx context.Context, q querier, channel string, frame float64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM keyframes WHERE channel = ? AND frame = ?`, channel, frame)
	if err != nil {
		return fmt.Errorf("delete keyframe: %w", err)
	}
	return nil
}

func writeFrame(ctx context.Context, q querier, frame float64) error {
	_, err := q.ExecContext(ctx, `UPDATE scene_state SET frame = ? WHERE id = 1`, frame)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Import replaces the stored scene with doc and clears the undo history.
// The whole import is one transaction.
func (s *Store) Import(ctx context.Context, doc *scene.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: begin: %w", err)
	}
	keyCount, err := importDocument(ctx, tx, doc)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("import: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import: commit: %w", err)
	}
	slog.Info("scene imported", "channels", len(doc.Channels), "keys", keyCount, "cameras", len(doc.Cameras))
	return nil
}

func importDocument(ctx context.Context, q querier, doc *scene.Document) (int, error) {
	for _, table := range []string{"undo_entries", "undo_groups", "keyframes", "channels", "cameras"} {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return 0, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	var start, end any
	if doc.Playbar != nil {
		start, end = doc.Playbar.Start, doc.Playbar.End
	}
	_, err := q.ExecContext(ctx, `
		UPDATE scene_state SET frame = ?, playbar_start = ?, playbar_end = ? WHERE id = 1
	`, doc.Frame, start, end)
	if err != nil {
		return 0, fmt.Errorf("scene state: %w", err)
	}

	for _, cam := range doc.Cameras {
		cam.Path = anim.CleanPath(cam.Path)
		spec, err := marshalCamera(cam)
		if err != nil {
			return 0, err
		}
		if _, err := q.ExecContext(ctx, `INSERT INTO cameras (path, spec) VALUES (?, ?)`, cam.Path, spec); err != nil {
			return 0, fmt.Errorf("camera %s: %w", cam.Path, err)
		}
	}

	keyCount := 0
	for _, ch := range doc.Channels {
		path := anim.CleanPath(ch.Path)
		if _, err := q.ExecContext(ctx, `INSERT INTO channels (path) VALUES (?)`, path); err != nil {
			return 0, fmt.Errorf("channel %s: %w", path, err)
		}
		keys, err := ch.Keyframes()
		if err != nil {
			return 0, err
		}
		for _, k := range keys {
			if err := putKey(ctx, q, path, k); err != nil {
				return 0, fmt.Errorf("%s: %w", path, err)
			}
		}
		keyCount += len(keys)
	}
	return keyCount, nil
}
