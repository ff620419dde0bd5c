package metadata

import "context"

// Repository is a string-keyed blob store for client state: device id,
// activation flags, wrapped master keys and their salts, watcher hashes.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Well-known metadata keys.
const (
	KeyDeviceID      = "device_id"
	KeyEmployeeID    = "employee_id"
	KeyEmployeeName  = "employee_name"
	KeyActivated     = "activated"
	KeyDeviceSig     = "device_sig"
	KeyPinWrap       = "pin_wrap"
	KeyPinSalt       = "pin_salt"
	KeySecWrap       = "sec_wrap"
	KeySecSalt       = "sec_salt"
	KeyLastInboxHash = "last_inbox_hash"
	KeyAutoBackup    = "auto_backup_enabled"
	KeyAutoBackupRan = "auto_backup_last_run"
)
