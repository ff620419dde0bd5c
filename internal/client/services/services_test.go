package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/clientpro-app/clientpro/internal/client/storage"
	"github.com/clientpro-app/clientpro/internal/cryptox"
	"github.com/clientpro-app/clientpro/internal/logging"
	"github.com/clientpro-app/clientpro/internal/protocol"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type sentUpload struct {
	To, Filename, Cipher, Hash string
}

// fakeRelay is an in-memory relay double shared by the service tests.
type fakeRelay struct {
	kdata    []byte
	kdataErr error

	activateResp *protocol.ActivateResponse
	activateErr  error

	checkResp *protocol.CheckStatusResponse
	checkErr  error

	users []protocol.User

	inbox    []protocol.InboxItem
	inboxErr error

	uploads   []sentUpload
	uploadID  string
	uploadErr error

	downloads map[string]*protocol.DownloadBackupResponse
	deleted   []string

	presignPutURL, presignGetURL, presignKey string
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{
		kdata:     cryptox.NewKData(),
		uploadID:  "tr_1",
		downloads: map[string]*protocol.DownloadBackupResponse{},
	}
}

func (f *fakeRelay) CheckStatus(ctx context.Context) (*protocol.CheckStatusResponse, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	if f.checkResp != nil {
		return f.checkResp, nil
	}
	return &protocol.CheckStatusResponse{Response: protocol.Response{Status: protocol.StatusSuccess}}, nil
}

func (f *fakeRelay) Activate(ctx context.Context, activationKey, deviceInfo string) (*protocol.ActivateResponse, error) {
	if f.activateErr != nil {
		return nil, f.activateErr
	}
	return f.activateResp, nil
}

func (f *fakeRelay) IssueKData(ctx context.Context) ([]byte, error) {
	if f.kdataErr != nil {
		return nil, f.kdataErr
	}
	out := make([]byte, len(f.kdata))
	copy(out, f.kdata)
	return out, nil
}

func (f *fakeRelay) ListUsers(ctx context.Context) ([]protocol.User, error) {
	return f.users, nil
}

func (f *fakeRelay) UploadBackup(ctx context.Context, to, filename, cipher, hash string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, sentUpload{To: to, Filename: filename, Cipher: cipher, Hash: hash})
	return f.uploadID, nil
}

func (f *fakeRelay) ListInbox(ctx context.Context) ([]protocol.InboxItem, error) {
	if f.inboxErr != nil {
		return nil, f.inboxErr
	}
	return f.inbox, nil
}

func (f *fakeRelay) DownloadBackup(ctx context.Context, transferID string) (*protocol.DownloadBackupResponse, error) {
	if resp, ok := f.downloads[transferID]; ok {
		return resp, nil
	}
	return nil, f.inboxErr
}

func (f *fakeRelay) DeleteBackup(ctx context.Context, transferID string) error {
	f.deleted = append(f.deleted, transferID)
	return nil
}

func (f *fakeRelay) PresignUpload(ctx context.Context) (string, string, error) {
	return f.presignPutURL, f.presignKey, nil
}

func (f *fakeRelay) PresignDownload(ctx context.Context, objectKey string) (string, error) {
	return f.presignGetURL, nil
}

// env bundles a fully wired client service stack over an in-memory store.
type env struct {
	repos    *storage.Repositories
	relay    *fakeRelay
	keyring  *KeyringService
	records  *RecordService
	backups  *BackupService
	transfer *TransferService
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	repos, err := storage.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.DB.Close() })

	fr := newFakeRelay()
	log := testLogger()

	kr := NewKeyringService(repos.DB, repos.Metadata, fr, log)
	rs := NewRecordService(repos.DB, repos.Customers, repos.Images, kr, log)
	bs := NewBackupService(repos.DB, rs, repos.Backups, repos.Metadata, fr, kr, kr, "legacy-secret", log)
	ts := NewTransferService(bs, repos.Metadata, fr, kr, log)

	return &env{repos: repos, relay: fr, keyring: kr, records: rs, backups: bs, transfer: ts}
}

// activate walks the happy path: activation + PIN setup, leaving the
// session unlocked.
func (e *env) activate(t *testing.T, employeeID, pin string) {
	t.Helper()
	ctx := context.Background()
	e.relay.activateResp = &protocol.ActivateResponse{
		Response:   protocol.Response{Status: protocol.StatusSuccess},
		EmployeeID: employeeID,
		Name:       "Agent " + employeeID,
		Sig:        "sig-" + employeeID,
	}
	require.NoError(t, e.keyring.Activate(ctx, "AK-1", "test device", nil, nil))
	require.NoError(t, e.keyring.SetupPIN(ctx, pin))
}
