package models

import "github.com/google/uuid"

// Image is a stored photo bound to a customer and optionally to one of its
// assets. Data holds the raw bytes; they never enter backup payloads and
// travel only through encrypted drive archives.
type Image struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	AssetID    string `json:"assetId,omitempty"`
	Data       []byte `json:"-"`
	CreatedAt  int64  `json:"createdAt"`
}

// NewImageID returns a fresh image identifier.
func NewImageID() string {
	return "img_" + uuid.NewString()
}
