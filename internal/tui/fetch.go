package tui

import "encoding/json"

// decodeRows unmarshals a raw row list into typed values.
func decodeRows[T any](raw []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, row := range raw {
		var v T
		if err := json.Unmarshal(row, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
