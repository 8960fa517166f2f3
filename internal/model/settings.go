package model

import "time"

// Pref is one row of the local preference table. Value is sealed for
// secret keys and plain otherwise.
type Pref struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	Sealed    bool      `json:"sealed"`
	UpdatedAt time.Time `json:"updated_at"`
}
