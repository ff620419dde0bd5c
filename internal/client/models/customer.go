// Package models defines the client-side data shapes: customer records with
// their encrypted fields, stored images, local backup records, and the
// backup payload exchanged through envelopes.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CustomerStatus tracks where a client stands in the lending flow.
type CustomerStatus string

const (
	StatusPending  CustomerStatus = "pending"
	StatusApproved CustomerStatus = "approved"
)

// Customer is a client record. Name, Phone, CCCD and Notes hold field-cipher
// values at rest and plaintext inside an open session; the service layer owns
// that boundary. Timestamps are epoch milliseconds.
type Customer struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Phone       string         `json:"phone"`
	CCCD        string         `json:"cccd"`
	Notes       string         `json:"notes,omitempty"`
	Status      CustomerStatus `json:"status"`
	CreditLimit float64        `json:"creditLimit"`
	Assets      []Asset        `json:"assets,omitempty"`
	DriveLink   string         `json:"driveLink,omitempty"`
	CreatedAt   int64          `json:"createdAt"`
	UpdatedAt   int64          `json:"updatedAt"`
}

// Asset is a collateral item attached to a customer. Everything except ID,
// CreatedAt and DriveLink follows the same encryption boundary as the
// customer fields; historical records may carry Name in plaintext, which the
// field cipher passes through unchanged. The descriptive fields are free-form
// strings as captured on the source device (typed or OCR'd).
type Asset struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Link      string `json:"link,omitempty"`
	Valuation string `json:"valuation,omitempty"`
	LoanValue string `json:"loanValue,omitempty"`
	Area      string `json:"area,omitempty"`
	Width     string `json:"width,omitempty"`
	OnLand    string `json:"onland,omitempty"`
	Year      string `json:"year,omitempty"`
	OCRData   string `json:"ocrData,omitempty"`
	DriveLink string `json:"driveLink,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// NewCustomerID returns a fresh record identifier.
func NewCustomerID() string {
	return "kh_" + uuid.NewString()
}

// NewAssetID returns a fresh collateral identifier.
func NewAssetID() string {
	return "as_" + uuid.NewString()
}

// NowMillis is the record-timestamp clock.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

func (c *Customer) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.ID)
}
