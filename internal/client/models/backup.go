package models

import (
	"fmt"
	"time"
)

// BackupRecord is a locally stored backup: the sealed envelope plus the
// bookkeeping needed for listing, export and transfer.
type BackupRecord struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	CreatedAt int64  `json:"createdAt"`
	Size      int64  `json:"size"`
	DeviceID  string `json:"deviceId"`
	Hash      string `json:"hash"`
	Encrypted string `json:"-"`
	Kind      string `json:"kind"`
}

// Backup kinds.
const (
	BackupKindFull    = "backup"
	BackupKindPartial = "partial_customers"
)

// BackupFilename builds the export file name:
// CLIENTPRO_BK_<deviceId>_<yyyymmdd>_<hash12>.cpb
func BackupFilename(deviceID string, createdAt int64, hash string) string {
	day := time.UnixMilli(createdAt).Format("20060102")
	short := hash
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("CLIENTPRO_BK_%s_%s_%s.cpb", deviceID, day, short)
}
