package models

import "github.com/holiman/uint256"

// Checkpoint fixes a value from Key until superseded by a later checkpoint
type Checkpoint struct {
	Key   uint64       `json:"key"`
	Value *uint256.Int `json:"value"`
}
