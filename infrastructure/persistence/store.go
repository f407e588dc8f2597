// Package persistence implements ports.DocumentStore over the supported
// backends. Every backend stores the board as one JSON document per key;
// an absent key loads as nil with no error.
package persistence

import (
	"encoding/json"
	"fmt"

	"flowboard/domain/core/aggregates"
)

// Driver names a storage backend
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverRedis    Driver = "redis"
	DriverDynamoDB Driver = "dynamodb"
)

// SupportedDrivers lists the drivers the factory can build
func SupportedDrivers() []Driver {
	return []Driver{DriverMemory, DriverFile, DriverSQLite, DriverRedis, DriverDynamoDB}
}

func encode(state aggregates.DocumentState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*aggregates.DocumentState, error) {
	var state aggregates.DocumentState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &state, nil
}
