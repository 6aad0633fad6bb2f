package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/keytar/internal/anim"
	"github.com/roach88/keytar/internal/scene"
)

const keyColumns = `frame, value, in_slope, out_slope, in_slope_auto, out_slope_auto, in_accel, out_accel, interp`

// readKeys returns a channel's keys in frame order with auto slopes
// derived from their neighbors.
func readKeys(ctx context.Context, q querier, channel string) ([]anim.Keyframe, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+keyColumns+`
		FROM keyframes
		WHERE channel = ?
		ORDER BY frame ASC
	`, channel)
	if err != nil {
		return nil, fmt.Errorf("query keyframes: %w", err)
	}
	defer rows.Close()

	var keys []anim.Keyframe
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keyframes: %w", err)
	}

	anim.RecomputeAutoSlopes(keys)
	return keys, nil
}

// readKeyAt returns the stored key at frame without deriving slopes.
func readKeyAt(ctx context.Context, q querier, channel string, frame float64) (anim.Keyframe, bool, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+keyColumns+`
		FROM keyframes
		WHERE channel = ? AND frame = ?
	`, channel, frame)
	k, err := scanKey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return anim.Keyframe{}, false, nil
	}
	if err != nil {
		return anim.Keyframe{}, false, err
	}
	return k, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKey(s scanner) (anim.Keyframe, error) {
	var k anim.Keyframe
	var interp string
	err := s.Scan(
		&k.Frame, &k.Value,
		&k.InSlope, &k.OutSlope,
		&k.InSlopeAuto, &k.OutSlopeAuto,
		&k.InAccel, &k.OutAccel,
		&interp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return k, err
		}
		return k, fmt.Errorf("scan keyframe: %w", err)
	}
	k.Interp, err = anim.ParseInterpolation(interp)
	if err != nil {
		return k, fmt.Errorf("scan keyframe: %w", err)
	}
	return k, nil
}

// channelExists reports whether path names a channel.
func channelExists(ctx context.Context, q querier, path string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM channels WHERE path = ?`, path).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query channel: %w", err)
	}
	return n > 0, nil
}

// channelPaths returns the channels under prefix in path order.
func channelPaths(ctx context.Context, q querier, prefix string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT path FROM channels
		WHERE substr(path, 1, length(?1)) = ?1
		ORDER BY path COLLATE BINARY ASC
	`, prefix)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}
	return paths, nil
}

// readCamera returns the camera at path, wrapping anim.ErrNotFound.
func readCamera(ctx context.Context, q querier, path string) (scene.CameraSpec, error) {
	var spec string
	err := q.QueryRowContext(ctx, `SELECT spec FROM cameras WHERE path = ?`, path).Scan(&spec)
	if errors.Is(err, sql.ErrNoRows) {
		return scene.CameraSpec{}, fmt.Errorf("camera %q: %w", path, anim.ErrNotFound)
	}
	if err != nil {
		return scene.CameraSpec{}, fmt.Errorf("query camera: %w", err)
	}
	return unmarshalCamera(spec)
}

// sceneState is the stored timeline state.
type sceneState struct {
	Frame   float64
	Playbar *scene.Range
}

func readState(ctx context.Context, q querier) (sceneState, error) {
	var st sceneState
	var start, end sql.NullFloat64
	err := q.QueryRowContext(ctx, `
		SELECT frame, playbar_start, playbar_end FROM scene_state WHERE id = 1
	`).Scan(&st.Frame, &start, &end)
	if err != nil {
		return st, fmt.Errorf("query scene state: %w", err)
	}
	if start.Valid && end.Valid {
		st.Playbar = &scene.Range{Start: start.Float64, End: end.Float64}
	}
	return st, nil
}

// keyedRange returns the first and last keyed frame across all channels.
func keyedRange(ctx context.Context, q querier) (start, end float64, ok bool, err error) {
	var lo, hi sql.NullFloat64
	err = q.QueryRowContext(ctx, `SELECT MIN(frame), MAX(frame) FROM keyframes`).Scan(&lo, &hi)
	if err != nil {
		return 0, 0, false, fmt.Errorf("query keyed range: %w", err)
	}
	return lo.Float64, hi.Float64, lo.Valid && hi.Valid, nil
}

// Export reads the whole scene as a document.
func (s *Store) Export(ctx context.Context) (*scene.Document, error) {
	st, err := readState(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	doc := &scene.Document{Frame: st.Frame, Playbar: st.Playbar}

	rows, err := s.db.QueryContext(ctx, `SELECT spec FROM cameras ORDER BY path COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("export: query cameras: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var spec string
		if err := rows.Scan(&spec); err != nil {
			return nil, fmt.Errorf("export: scan camera: %w", err)
		}
		cam, err := unmarshalCamera(spec)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		doc.Cameras = append(doc.Cameras, cam)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("export: iterate cameras: %w", err)
	}
	rows.Close()

	paths, err := channelPaths(ctx, s.db, "")
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	for _, p := range paths {
		keys, err := readKeys(ctx, s.db, p)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", p, err)
		}
		ch := scene.ChannelSpec{Path: p, Keys: []scene.KeySpec{}}
		for _, k := range keys {
			ch.Keys = append(ch.Keys, scene.KeySpecOf(k))
		}
		doc.Channels = append(doc.Channels, ch)
	}
	return doc, nil
}
