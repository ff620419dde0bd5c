package services

import (
	"context"
	"testing"

	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/cryptox"
	"github.com/clientpro-app/clientpro/internal/relay/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivate_BindsDeviceAndMintsSig(t *testing.T) {
	ctx := context.Background()
	rm := newFakeRepoManager()
	rm.addAccount("emp_1", "Alice", "key-1", models.AccountActive)
	svc := NewAuthService(nil, rm, testConfig(), testLogger())

	account, sig, err := svc.Activate(ctx, "key-1", "dev_1", "laptop")
	require.NoError(t, err)
	assert.Equal(t, "emp_1", account.EmployeeID)
	assert.Equal(t, "Alice", account.Name)
	assert.NotEmpty(t, sig)

	stored, err := rm.accounts.GetByEmployeeID(ctx, "emp_1")
	require.NoError(t, err)
	assert.Equal(t, "dev_1", stored.DeviceID)
	assert.Equal(t, "laptop", stored.DeviceInfo)
	assert.NotZero(t, stored.ActivatedAt)
}

func TestActivate_UnknownKeyDenied(t *testing.T) {
	rm := newFakeRepoManager()
	rm.addAccount("emp_1", "Alice", "key-1", models.AccountActive)
	svc := NewAuthService(nil, rm, testConfig(), testLogger())

	_, _, err := svc.Activate(context.Background(), "wrong-key", "dev_1", "")
	assert.ErrorIs(t, err, common.ErrActivationDenied)
}

func TestActivate_LockedAccount(t *testing.T) {
	rm := newFakeRepoManager()
	rm.addAccount("emp_1", "Alice", "key-1", models.AccountLocked)
	svc := NewAuthService(nil, rm, testConfig(), testLogger())

	_, _, err := svc.Activate(context.Background(), "key-1", "dev_1", "")
	assert.ErrorIs(t, err, common.ErrAccountLocked)
}

func TestAuthorize_AcceptsFreshSig(t *testing.T) {
	ctx := context.Background()
	rm := newFakeRepoManager()
	rm.addAccount("emp_1", "Alice", "key-1", models.AccountActive)
	svc := NewAuthService(nil, rm, testConfig(), testLogger())

	_, sig, err := svc.Activate(ctx, "key-1", "dev_1", "")
	require.NoError(t, err)

	account, err := svc.Authorize(ctx, "dev_1", sig)
	require.NoError(t, err)
	assert.Equal(t, "emp_1", account.EmployeeID)
}

func TestAuthorize_RejectsForeignDevice(t *testing.T) {
	ctx := context.Background()
	rm := newFakeRepoManager()
	rm.addAccount("emp_1", "Alice", "key-1", models.AccountActive)
	svc := NewAuthService(nil, rm, testConfig(), testLogger())

	_, sig, err := svc.Activate(ctx, "key-1", "dev_1", "")
	require.NoError(t, err)

	_, err = svc.Authorize(ctx, "dev_2", sig)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthorize_RebindInvalidatesOldSig(t *testing.T) {
	ctx := context.Background()
	rm := newFakeRepoManager()
	rm.addAccount("emp_1", "Alice", "key-1", models.AccountActive)
	svc := NewAuthService(nil, rm, testConfig(), testLogger())

	_, oldSig, err := svc.Activate(ctx, "key-1", "dev_old", "")
	require.NoError(t, err)
	_, _, err = svc.Activate(ctx, "key-1", "dev_new", "")
	require.NoError(t, err)

	_, err = svc.Authorize(ctx, "dev_old", oldSig)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthorize_LockedAccountAfterActivation(t *testing.T) {
	ctx := context.Background()
	rm := newFakeRepoManager()
	rm.addAccount("emp_1", "Alice", "key-1", models.AccountActive)
	svc := NewAuthService(nil, rm, testConfig(), testLogger())

	_, sig, err := svc.Activate(ctx, "key-1", "dev_1", "")
	require.NoError(t, err)

	rm.accounts.rows["emp_1"].Status = models.AccountLocked

	_, err = svc.Authorize(ctx, "dev_1", sig)
	assert.ErrorIs(t, err, common.ErrAccountLocked)
}

func TestAuthorize_MissingSig(t *testing.T) {
	rm := newFakeRepoManager()
	svc := NewAuthService(nil, rm, testConfig(), testLogger())

	_, err := svc.Authorize(context.Background(), "dev_1", "")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestIssueKData_StableAcrossCalls(t *testing.T) {
	ctx := context.Background()
	rm := newFakeRepoManager()
	svc := NewAuthService(nil, rm, testConfig(), testLogger())

	first, err := svc.IssueKData(ctx)
	require.NoError(t, err)

	raw, err := cryptox.DecodeKData(first)
	require.NoError(t, err)
	assert.Len(t, raw, cryptox.KDataLen)

	second, err := svc.IssueKData(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListUsers_OnlyActive(t *testing.T) {
	rm := newFakeRepoManager()
	rm.addAccount("emp_1", "Alice", "key-1", models.AccountActive)
	rm.addAccount("emp_2", "Bob", "key-2", models.AccountLocked)
	rm.addAccount("emp_3", "Carol", "key-3", models.AccountActive)
	svc := NewAuthService(nil, rm, testConfig(), testLogger())

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "emp_1", users[0].EmployeeID)
	assert.Equal(t, "Carol", users[1].Name)
}
