// Package relay implements the client side of the relay wire protocol:
// activation, status checks, key-material issuance, the user directory and
// the transfer inbox.
package relay

import (
	"context"

	"github.com/clientpro-app/clientpro/internal/protocol"
)

// Credentials identify this installation to the relay. Sig is empty until
// activation succeeds.
type Credentials struct {
	DeviceID string
	Sig      string
}

// CredentialsFunc supplies the current identity; it is called per request
// so a fresh signature picked up mid-session is used immediately.
type CredentialsFunc func(ctx context.Context) (Credentials, error)

// Client is the transport seam used by the services; tests substitute a
// fake.
type Client interface {
	// CheckStatus asks whether this device's account is still active.
	CheckStatus(ctx context.Context) (*protocol.CheckStatusResponse, error)

	// Activate redeems an activation key for this device and returns the
	// account identity plus a device signature for subsequent calls.
	Activate(ctx context.Context, activationKey, deviceInfo string) (*protocol.ActivateResponse, error)

	// IssueKData fetches the deployment key material for sealing backups.
	IssueKData(ctx context.Context) ([]byte, error)

	// ListUsers returns the directory of active accounts.
	ListUsers(ctx context.Context) ([]protocol.User, error)

	// UploadBackup places a sealed envelope in a colleague's inbox and
	// returns the transfer id.
	UploadBackup(ctx context.Context, to, filename, cipher, hash string) (string, error)

	// ListInbox returns pending transfers addressed to this account.
	ListInbox(ctx context.Context) ([]protocol.InboxItem, error)

	// DownloadBackup fetches one transfer's envelope.
	DownloadBackup(ctx context.Context, transferID string) (*protocol.DownloadBackupResponse, error)

	// DeleteBackup removes a transfer from the inbox.
	DeleteBackup(ctx context.Context, transferID string) error

	// PresignUpload returns a presigned PUT URL and the object key for an
	// image archive.
	PresignUpload(ctx context.Context) (url string, objectKey string, err error)

	// PresignDownload returns a presigned GET URL for a stored archive.
	PresignDownload(ctx context.Context, objectKey string) (string, error)
}
