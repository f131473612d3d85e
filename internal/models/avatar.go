package models

import "time"

// MaxAvatarsPerUser is the avatar quota enforced per user. Slots are numbered
// 1 through MaxAvatarsPerUser and are never reused or renumbered.
const MaxAvatarsPerUser = 5

// MorphTarget is a single named continuous weight applied to an avatar model.
type MorphTarget struct {
	// ID is the morph identifier (e.g. "jaw_width").
	ID string `json:"id"`

	// Value is the morph weight.
	Value float64 `json:"value"`
}

// Avatar represents one avatar configuration owned by a user.
type Avatar struct {
	// ID is the unique identifier for the avatar (UUID format).
	ID string `json:"id"`

	// UserID is the owning user. Immutable after creation.
	UserID string `json:"userId"`

	// Name is the display name, unique per user (case-sensitive).
	Name string `json:"name"`

	// Slot is the avatar's position in its owner's quota, in [1,5].
	// Assigned at creation as the lowest unused value; immutable.
	// Not part of the public JSON shape.
	Slot int `json:"-"`

	// BasicMeasurements maps basic measurement keys (height, weight class
	// scalars, ...) to numeric values.
	BasicMeasurements map[string]float64 `json:"basicMeasurements"`

	// BodyMeasurements maps body measurement keys to numeric values.
	// A distinct namespace from BasicMeasurements.
	BodyMeasurements map[string]float64 `json:"bodyMeasurements"`

	// MorphTargets is the canonical morph list: deduplicated by id and
	// sorted ascending by id.
	MorphTargets []MorphTarget `json:"morphTargets"`

	// CreatedAt is the server-assigned creation time (UTC). Immutable.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is refreshed on every mutation (UTC).
	UpdatedAt time.Time `json:"updatedAt"`
}

// AvatarDraft is the normalized payload accepted by create and update
// operations. Sub-collections fully replace whatever is stored.
type AvatarDraft struct {
	Name              string
	BasicMeasurements map[string]float64
	BodyMeasurements  map[string]float64
	MorphTargets      []MorphTarget
}

// AvatarList is the envelope returned by the list endpoint.
type AvatarList struct {
	UserID string   `json:"userId"`
	Limit  int      `json:"limit"`
	Count  int      `json:"count"`
	Total  int      `json:"total"`
	Items  []Avatar `json:"items"`
}
