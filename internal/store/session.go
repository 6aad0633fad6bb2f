package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/keytar/internal/anim"
)

// Batch errors.
var (
	ErrBatchOpen = errors.New("a batch is already open")
	ErrNoBatch   = errors.New("no batch is open")
)

// Session is the store seen as an animation host. It binds a context to
// the host calls, which carry none.
//
// A batch is a transaction: EndBatch with a non-nil error rolls back every
// change made since BeginBatch. Each committed batch becomes one undo
// group. Changes made outside a batch are written directly and are not
// undoable.
//
// A Session is not safe for concurrent use.
type Session struct {
	store *Store
	ctx   context.Context
	frame float64

	tx    *sql.Tx
	group string
	label string
}

// Session opens a host session on the stored scene.
func (s *Store) Session(ctx context.Context) (*Session, error) {
	st, err := readState(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return &Session{store: s, ctx: ctx, frame: st.Frame}, nil
}

func (ss *Session) q() querier {
	if ss.tx != nil {
		return ss.tx
	}
	return ss.store.db
}

// BeginBatch implements anim.Batcher.
func (ss *Session) BeginBatch(label string) error {
	if ss.tx != nil {
		return fmt.Errorf("begin %q: %w (%q)", label, ErrBatchOpen, ss.label)
	}
	tx, err := ss.store.db.BeginTx(ss.ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %q: %w", label, err)
	}
	group := ss.store.ids.Generate()
	_, err = tx.ExecContext(ss.ctx, `
		INSERT INTO undo_groups (id, label, seq) VALUES (?, ?, ?)
	`, group, label, ss.store.clock.Next())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("begin %q: write undo group: %w", label, err)
	}
	ss.tx, ss.group, ss.label = tx, group, label
	slog.Debug("batch begin", "label", label, "group", group)
	return nil
}

// EndBatch implements anim.Batcher. A non-nil err rolls the batch back.
func (ss *Session) EndBatch(err error) error {
	if ss.tx == nil {
		return ErrNoBatch
	}
	tx, group, label := ss.tx, ss.group, ss.label
	ss.tx, ss.group, ss.label = nil, "", ""

	if err != nil {
		slog.Debug("batch rolled back", "label", label, "group", group, "error", err)
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("rollback %q: %w", label, rerr)
		}
		return nil
	}

	// A batch that changed nothing leaves no undo group
	var entries int
	if err := tx.QueryRowContext(ss.ctx, `SELECT COUNT(*) FROM undo_entries WHERE group_id = ?`, group).Scan(&entries); err != nil {
		tx.Rollback()
		return fmt.Errorf("end %q: count journal: %w", label, err)
	}
	if entries == 0 {
		if _, err := tx.ExecContext(ss.ctx, `DELETE FROM undo_groups WHERE id = ?`, group); err != nil {
			tx.Rollback()
			return fmt.Errorf("end %q: drop empty group: %w", label, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %q: %w", label, err)
	}
	slog.Debug("batch committed", "label", label, "group", group, "entries", entries)
	return nil
}

// Frame implements anim.TimeCursor.
func (ss *Session) Frame() float64 { return ss.frame }

// SetFrame implements anim.TimeCursor. The cursor is persisted.
func (ss *Session) SetFrame(frame float64) error {
	if err := writeFrame(ss.ctx, ss.q(), frame); err != nil {
		return err
	}
	ss.frame = frame
	return nil
}

// SelectionRange implements anim.Playbar. Without a stored playbar
// selection the range covers every key in the scene.
func (ss *Session) SelectionRange() (float64, float64, error) {
	st, err := readState(ss.ctx, ss.q())
	if err != nil {
		return 0, 0, fmt.Errorf("read playbar: %w", err)
	}
	if st.Playbar != nil {
		return st.Playbar.Start, st.Playbar.End, nil
	}
	start, end, ok, err := keyedRange(ss.ctx, ss.q())
	if err != nil {
		return 0, 0, fmt.Errorf("read keyed range: %w", err)
	}
	if !ok {
		return ss.frame, ss.frame, nil
	}
	return start, end, nil
}

// Camera implements anim.CameraLookup.
func (ss *Session) Camera(path string) (anim.Camera, error) {
	spec, err := readCamera(ss.ctx, ss.q(), anim.CleanPath(path))
	if err != nil {
		return nil, err
	}
	return spec.Camera(), nil
}

// Channel returns the channel at path, wrapping anim.ErrNotFound.
func (ss *Session) Channel(path string) (anim.Channel, error) {
	path = anim.CleanPath(path)
	ok, err := channelExists(ss.ctx, ss.q(), path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("channel %q: %w", path, anim.ErrNotFound)
	}
	return &Channel{sess: ss, path: path}, nil
}

// ChannelPaths returns the channels under prefix in path order.
func (ss *Session) ChannelPaths(prefix string) ([]string, error) {
	return channelPaths(ss.ctx, ss.q(), anim.CleanPath(prefix))
}

// journal records the prior state of the key at frame in the open undo
// group. Outside a batch it does nothing. Deleting a missing key is not
// journaled.
func (ss *Session) journal(channel string, frame float64, deleting bool) error {
	if ss.tx == nil {
		return nil
	}
	k, ok, err := readKeyAt(ss.ctx, ss.tx, channel, frame)
	if err != nil {
		return err
	}
	if deleting && !ok {
		return nil
	}
	prior, err := marshalPrior(k, ok)
	if err != nil {
		return err
	}
	_, err = ss.tx.ExecContext(ss.ctx, `
		INSERT INTO undo_entries (group_id, seq, channel, frame, prior)
		VALUES (?, ?, ?, ?, ?)
	`, ss.group, ss.store.clock.Next(), channel, frame, prior)
	if err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// Channel is a stored animation channel.
type Channel struct {
	sess *Session
	path string
}

// Path returns the channel path.
func (c *Channel) Path() string { return c.path }

// Keyframes implements anim.Curve.
func (c *Channel) Keyframes() ([]anim.Keyframe, error) {
	return readKeys(c.sess.ctx, c.sess.q(), c.path)
}

// KeyframesBefore implements anim.Curve.
func (c *Channel) KeyframesBefore(frame float64) ([]anim.Keyframe, error) {
	keys, err := c.Keyframes()
	if err != nil {
		return nil, err
	}
	var out []anim.Keyframe
	for _, k := range keys {
		if k.Frame < frame {
			out = append(out, k)
		}
	}
	return out, nil
}

// KeyframesAfter implements anim.Curve.
func (c *Channel) KeyframesAfter(frame float64) ([]anim.Keyframe, error) {
	keys, err := c.Keyframes()
	if err != nil {
		return nil, err
	}
	var out []anim.Keyframe
	for _, k := range keys {
		if k.Frame > frame {
			out = append(out, k)
		}
	}
	return out, nil
}

// KeyframeAt implements anim.Curve.
func (c *Channel) KeyframeAt(frame float64) (anim.Keyframe, bool, error) {
	keys, err := c.Keyframes()
	if err != nil {
		return anim.Keyframe{}, false, err
	}
	for _, k := range keys {
		if k.Frame == frame {
			return k, true, nil
		}
	}
	return anim.Keyframe{}, false, nil
}

// SetKeyframe implements anim.Curve.
func (c *Channel) SetKeyframe(k anim.Keyframe) error {
	if err := c.sess.journal(c.path, k.Frame, false); err != nil {
		return fmt.Errorf("set key on %s: %w", c.path, err)
	}
	if err := putKey(c.sess.ctx, c.sess.q(), c.path, k); err != nil {
		return fmt.Errorf("set key on %s: %w", c.path, err)
	}
	return nil
}

// DeleteKeyframeAt implements anim.Curve.
func (c *Channel) DeleteKeyframeAt(frame float64) error {
	if err := c.sess.journal(c.path, frame, true); err != nil {
		return fmt.Errorf("delete key on %s: %w", c.path, err)
	}
	if err := deleteKey(c.sess.ctx, c.sess.q(), c.path, frame); err != nil {
		return fmt.Errorf("delete key on %s: %w", c.path, err)
	}
	return nil
}

// ValueAt implements anim.Channel.
func (c *Channel) ValueAt(frame float64) (float64, error) {
	keys, err := c.Keyframes()
	if err != nil {
		return 0, err
	}
	return anim.Evaluate(keys, frame), nil
}
