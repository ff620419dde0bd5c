package models

import "encoding/json"

// PayloadVersion is the backup payload schema version.
const PayloadVersion = 1.1

// Payload is the plaintext body of a backup envelope: decrypted customers
// with drive links stripped, and an images slot kept for shape
// compatibility (always empty, images travel separately).
type Payload struct {
	V         float64    `json:"v"`
	Customers []Customer `json:"customers"`
	Images    []Image    `json:"images"`
}

// NewPayload builds a backup payload from already-decrypted customers,
// stripping drive links from records and their assets.
func NewPayload(customers []Customer) *Payload {
	out := make([]Customer, len(customers))
	for i, c := range customers {
		c.DriveLink = ""
		if len(c.Assets) > 0 {
			assets := make([]Asset, len(c.Assets))
			for j, a := range c.Assets {
				a.DriveLink = ""
				assets[j] = a
			}
			c.Assets = assets
		}
		out[i] = c
	}
	return &Payload{V: PayloadVersion, Customers: out, Images: []Image{}}
}

// Marshal renders the payload as the canonical JSON body.
func (p *Payload) Marshal() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParsePayload decodes a decrypted backup body.
func ParsePayload(s string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
