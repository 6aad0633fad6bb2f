package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/keytar/internal/anim"
	"github.com/roach88/keytar/internal/scene"
)

// marshalJSON encodes v as compact JSON TEXT with HTML escaping disabled.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// marshalPrior converts a journaled key to JSON TEXT. A missing key is
// stored as NULL.
func marshalPrior(k anim.Keyframe, ok bool) (sql.NullString, error) {
	if !ok {
		return sql.NullString{}, nil
	}
	data, err := marshalJSON(k)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal key: %w", err)
	}
	return sql.NullString{String: data, Valid: true}, nil
}

// unmarshalPrior parses a journaled key.
func unmarshalPrior(data sql.NullString) (anim.Keyframe, bool, error) {
	if !data.Valid {
		return anim.Keyframe{}, false, nil
	}
	var k anim.Keyframe
	if err := json.Unmarshal([]byte(data.String), &k); err != nil {
		return anim.Keyframe{}, false, fmt.Errorf("unmarshal key: %w", err)
	}
	return k, true, nil
}

// marshalCamera converts a camera description to JSON TEXT.
func marshalCamera(c scene.CameraSpec) (string, error) {
	data, err := marshalJSON(c)
	if err != nil {
		return "", fmt.Errorf("marshal camera: %w", err)
	}
	return data, nil
}

// unmarshalCamera parses a stored camera description.
func unmarshalCamera(data string) (scene.CameraSpec, error) {
	var c scene.CameraSpec
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return scene.CameraSpec{}, fmt.Errorf("unmarshal camera: %w", err)
	}
	return c, nil
}
