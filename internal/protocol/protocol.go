// Package protocol pins the relay wire contract shared by the client and
// the server: action names, form/query parameter keys, response DTOs and
// transfer limits. Requests are GET query strings or form-urlencoded POSTs
// carrying an "action" parameter; responses are JSON.
package protocol

import "time"

// Actions.
const (
	ActionCheckStatus     = "check_status"
	ActionActivate        = "activate"
	ActionIssueKData      = "issue_kdata"
	ActionListUsers       = "list_users"
	ActionUploadBackup    = "upload_backup"
	ActionListInbox       = "list_inbox"
	ActionDownloadBackup  = "download_backup"
	ActionDeleteBackup    = "delete_backup"
	ActionPresignUpload   = "presign_upload"
	ActionPresignDownload = "presign_download"
)

// Response statuses. "locked" is a success-shaped response that tells the
// client its account was revoked: it must drop the local activation flag.
const (
	StatusSuccess = "success"
	StatusLocked  = "locked"
	StatusError   = "error"
)

// Request parameter keys.
const (
	ParamAction        = "action"
	ParamDeviceID      = "device_id"
	ParamDeviceInfo    = "device_info"
	ParamEmployeeID    = "employee_id"
	ParamActivationKey = "activation_key"
	ParamSig           = "sig"
	ParamTo            = "to"
	ParamFilename      = "filename"
	ParamCipher        = "cipher"
	ParamHash          = "hash"
	ParamTransferID    = "transfer_id"
	ParamObjectKey     = "object_key"
)

// MaxSendBytes caps inline transfer payloads; anything larger must be
// exported to a file instead.
const MaxSendBytes = 350 * 1024

// TransferTTL is how long an uploaded transfer stays downloadable.
const TransferTTL = 24 * time.Hour

// Response is the common JSON envelope.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports a plain success.
func (r *Response) OK() bool { return r.Status == StatusSuccess }

// Revoked reports the locked status.
func (r *Response) Revoked() bool { return r.Status == StatusLocked }

type CheckStatusResponse struct {
	Response
	EmployeeID string `json:"employeeId,omitempty"`
	Name       string `json:"name,omitempty"`
}

type ActivateResponse struct {
	Response
	EmployeeID string `json:"employeeId,omitempty"`
	Name       string `json:"name,omitempty"`
	Sig        string `json:"sig,omitempty"`
}

type KDataResponse struct {
	Response
	KData string `json:"kdata,omitempty"`
}

type User struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
}

type ListUsersResponse struct {
	Response
	Users []User `json:"users,omitempty"`
}

// InboxItem describes one pending transfer; timestamps are epoch ms.
type InboxItem struct {
	TransferID string `json:"transferId"`
	From       string `json:"from"`
	FromName   string `json:"fromName,omitempty"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	Hash       string `json:"hash"`
	CreatedAt  int64  `json:"createdAt"`
	ExpiresAt  int64  `json:"expiresAt"`
}

type ListInboxResponse struct {
	Response
	Items []InboxItem `json:"items,omitempty"`
}

type UploadBackupResponse struct {
	Response
	TransferID string `json:"transferId,omitempty"`
}

type DownloadBackupResponse struct {
	Response
	Filename string `json:"filename,omitempty"`
	Cipher   string `json:"cipher,omitempty"`
	Hash     string `json:"hash,omitempty"`
}

type PresignResponse struct {
	Response
	URL       string `json:"url,omitempty"`
	ObjectKey string `json:"objectKey,omitempty"`
}
