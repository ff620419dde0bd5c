package models

import "github.com/google/uuid"

// Transfer is one sealed backup parked in a colleague's inbox until it is
// downloaded, deleted or expires. Timestamps are epoch milliseconds.
type Transfer struct {
	TransferID     string
	FromEmployeeID string
	FromName       string
	DeviceID       string
	ToEmployeeID   string
	Filename       string
	Cipher         string
	Size           int64
	Hash           string
	CreatedAt      int64
	ExpiresAt      int64
}

// NewTransferID returns a fresh transfer identifier.
func NewTransferID() string {
	return "tr_" + uuid.NewString()
}
