package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/reefcore/internal/canon"
)

// marshalVector converts a float vector to canonical JSON TEXT for storage.
func marshalVector(v []float64) (string, error) {
	if v == nil {
		v = []float64{}
	}
	data, err := canon.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal vector: %w", err)
	}
	return string(data), nil
}

func marshalNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := canon.MarshalCanonical(names)
	if err != nil {
		return "", fmt.Errorf("marshal names: %w", err)
	}
	return string(data), nil
}

func unmarshalVector(data string) ([]float64, error) {
	v := []float64{}
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("unmarshal vector: %w", err)
	}
	return v, nil
}

func unmarshalNames(data string) ([]string, error) {
	names := []string{}
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}
	return names, nil
}
