package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/clientpro-app/clientpro/internal/client/models"
	"github.com/clientpro-app/clientpro/internal/client/repositories/metadata"
	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyring_DeviceIDStable(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()

	id1, err := e.keyring.DeviceID(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id1, "dev_"))

	id2, err := e.keyring.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestKeyring_FreshActivationFlow(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()

	state, err := e.keyring.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateNotActivated, state)

	e.relay.activateResp = &protocol.ActivateResponse{
		Response:   protocol.Response{Status: protocol.StatusSuccess},
		EmployeeID: "NV001",
		Name:       "Binh",
		Sig:        "sig-1",
	}
	require.NoError(t, e.keyring.Activate(ctx, "AK-1", "test", nil, nil))

	// session key is open, PIN not yet set
	assert.True(t, e.keyring.Unlocked())
	assert.True(t, strings.HasPrefix(e.keyring.MasterKey(), "mk_"))

	e.keyring.Lock()
	state, err = e.keyring.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPinSetup, state)

	creds, err := e.keyring.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sig-1", creds.Sig)
}

func TestKeyring_PinSetupUnlockLock(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.activate(t, "NV001", "1234")

	master := e.keyring.MasterKey()
	e.keyring.Lock()
	assert.False(t, e.keyring.Unlocked())

	state, err := e.keyring.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateLocked, state)

	require.NoError(t, e.keyring.Unlock(ctx, "1234"))
	assert.Equal(t, master, e.keyring.MasterKey())

	state, err = e.keyring.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateUnlocked, state)
}

func TestKeyring_PinValidation(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.activate(t, "NV001", "1234")

	for _, pin := range []string{"", "12", "12345", "12a4", "abcd"} {
		assert.ErrorIs(t, e.keyring.SetupPIN(ctx, pin), common.ErrInvalidPIN, "pin %q", pin)
	}
}

func TestKeyring_WrongPinLeavesWrapIntact(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.activate(t, "NV001", "1234")
	master := e.keyring.MasterKey()
	e.keyring.Lock()

	wrapBefore, err := e.repos.Metadata.Get(ctx, metadata.KeyPinWrap)
	require.NoError(t, err)

	assert.ErrorIs(t, e.keyring.Unlock(ctx, "4321"), common.ErrWrongPIN)
	assert.False(t, e.keyring.Unlocked())

	wrapAfter, err := e.repos.Metadata.Get(ctx, metadata.KeyPinWrap)
	require.NoError(t, err)
	assert.Equal(t, wrapBefore, wrapAfter)

	// the right PIN still opens the same key
	require.NoError(t, e.keyring.Unlock(ctx, "1234"))
	assert.Equal(t, master, e.keyring.MasterKey())
}

func TestKeyring_RecoverWithEmployeeID(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.activate(t, "NV001", "1234")
	master := e.keyring.MasterKey()
	e.keyring.Lock()

	assert.ErrorIs(t, e.keyring.Recover(ctx, "NV999"), common.ErrWrongEmployeeID)
	assert.False(t, e.keyring.Unlocked())

	require.NoError(t, e.keyring.Recover(ctx, "NV001"))
	assert.Equal(t, master, e.keyring.MasterKey())

	// recovery is followed by a PIN re-arm
	require.NoError(t, e.keyring.SetupPIN(ctx, "9876"))
	e.keyring.Lock()
	assert.ErrorIs(t, e.keyring.Unlock(ctx, "1234"), common.ErrWrongPIN)
	require.NoError(t, e.keyring.Unlock(ctx, "9876"))
}

func TestKeyring_SameEmployeeReactivationKeepsKey(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.activate(t, "NV001", "1234")
	master := e.keyring.MasterKey()

	// record survives the round trip below
	require.NoError(t, e.records.Save(ctx, &models.Customer{Name: "A", Phone: "09", CCCD: "07"}))

	// simulate revocation + reactivation of the same account
	require.NoError(t, e.keyring.Demote(ctx))
	e.keyring.Lock()

	require.NoError(t, e.keyring.Activate(ctx, "AK-2", "test", nil, nil))
	assert.Equal(t, master, e.keyring.MasterKey())

	all, err := e.records.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "A", all[0].Name)
}

func TestKeyring_DifferentEmployeeNeedsConfirmedWipe(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.activate(t, "NV001", "1234")
	require.NoError(t, e.records.Save(ctx, &models.Customer{Name: "A", Phone: "09", CCCD: "07"}))
	oldMaster := e.keyring.MasterKey()

	e.relay.activateResp = &protocol.ActivateResponse{
		Response:   protocol.Response{Status: protocol.StatusSuccess},
		EmployeeID: "NV002",
		Name:       "Chi",
		Sig:        "sig-2",
	}

	// declined: nothing changes
	err := e.keyring.Activate(ctx, "AK-2", "test",
		func(existing, incoming string) bool { return false }, e.records.Wipe)
	assert.ErrorIs(t, err, common.ErrForeignData)
	id, err := e.keyring.EmployeeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "NV001", id)

	// confirmed: data is wiped, new key issued
	var sawExisting, sawIncoming string
	require.NoError(t, e.keyring.Activate(ctx, "AK-2", "test",
		func(existing, incoming string) bool {
			sawExisting, sawIncoming = existing, incoming
			return true
		}, e.records.Wipe))
	assert.Equal(t, "NV001", sawExisting)
	assert.Equal(t, "NV002", sawIncoming)
	assert.NotEqual(t, oldMaster, e.keyring.MasterKey())

	n, err := e.repos.Customers.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestKeyring_UnlockTriggersRelayStatusCheck(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.activate(t, "NV001", "1234")
	e.keyring.Lock()

	// the account was revoked while this device was offline; the local
	// unlock still succeeds, the background verdict then demotes it
	e.relay.checkErr = common.ErrAccountLocked
	require.NoError(t, e.keyring.Unlock(ctx, "1234"))

	assert.Eventually(t, func() bool {
		state, err := e.keyring.State(ctx)
		return err == nil && state == StateNotActivated
	}, time.Second, 10*time.Millisecond)

	// wraps survive for a later reactivation
	wrap, err := e.repos.Metadata.Get(ctx, metadata.KeyPinWrap)
	require.NoError(t, err)
	assert.NotEmpty(t, wrap)
}

func TestKeyring_CheckStatusLockedDemotes(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.activate(t, "NV001", "1234")

	e.relay.checkErr = common.ErrAccountLocked
	assert.ErrorIs(t, e.keyring.CheckStatus(ctx), common.ErrAccountLocked)

	assert.False(t, e.keyring.Unlocked())
	state, err := e.keyring.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateNotActivated, state)

	// wraps survive for a later reactivation
	wrap, err := e.repos.Metadata.Get(ctx, metadata.KeyPinWrap)
	require.NoError(t, err)
	assert.NotEmpty(t, wrap)
}
