package bucket

import (
	"encoding/json"
	"fmt"
	"time"
)

// wireState is the stored representation of a State. Timestamps are kept as
// integer Unix nanoseconds so the record round-trips exactly.
type wireState struct {
	Remaining  float64 `json:"remaining"`
	LastUpdate int64   `json:"last_update"`
}

// Encode serializes a State to its wire representation.
func Encode(s State) ([]byte, error) {
	buf, err := json.Marshal(wireState{
		Remaining:  s.Remaining,
		LastUpdate: s.LastUpdate.UnixNano(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode bucket state: %w", err)
	}
	return buf, nil
}

// Decode deserializes a State from its wire representation.
// Decode(Encode(s)) reproduces s exactly for all valid states.
func Decode(buf []byte) (State, error) {
	var w wireState
	if err := json.Unmarshal(buf, &w); err != nil {
		return State{}, fmt.Errorf("decode bucket state: %w", err)
	}
	return State{
		Remaining:  w.Remaining,
		LastUpdate: time.Unix(0, w.LastUpdate).UTC(),
	}, nil
}
