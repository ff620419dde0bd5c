package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/clientpro-app/clientpro/internal/client/services"
	"github.com/clientpro-app/clientpro/internal/common"
)

// getSimpleText, getSecret and getConfirm are indirections used to
// facilitate testing. They point to the interactive input helpers and can
// be swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret
var getConfirm = GetConfirm

// Activate binds this installation to an employee using an activation key.
//
// If the key belongs to a different employee than the one the local data
// was recorded under, the user must explicitly confirm; confirmation wipes
// every local record before the new identity takes over.
func (a *App) Activate(ctx context.Context) error {
	key, err := getSecret(os.Stdout, "Enter activation key")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	deviceInfo, _ := os.Hostname()

	confirm := func(existing, incoming string) bool {
		prompt := fmt.Sprintf(
			"Local data belongs to %s, the key belongs to %s.\n"+
				"Continuing will ERASE all local records", existing, incoming)
		ok, err := getConfirm(a.reader, prompt, os.Stdout)
		if err != nil {
			return false
		}
		return ok
	}

	err = a.keyring.Activate(ctx, string(key), deviceInfo, confirm, a.records.Wipe)
	if err != nil {
		return err
	}

	fmt.Println("Activated.")
	if state, err := a.keyring.State(ctx); err == nil && state == services.StateAwaitingPinSetup {
		fmt.Println("Set a PIN with 'pin' to protect this device.")
	}
	return nil
}

// SetupPIN sets or replaces the 4-digit unlock PIN for this device.
// Requires an open session.
func (a *App) SetupPIN(ctx context.Context) error {
	pin, err := getSecret(os.Stdout, "Enter new PIN (4 digits)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	again, err := getSecret(os.Stdout, "Repeat PIN")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if string(pin) != string(again) {
		return fmt.Errorf("PINs do not match")
	}

	if err := a.keyring.SetupPIN(ctx, string(pin)); err != nil {
		return err
	}
	fmt.Println("PIN set.")
	return nil
}

// Unlock opens a session with the device PIN.
func (a *App) Unlock(ctx context.Context) error {
	pin, err := getSecret(os.Stdout, "Enter PIN")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	if err := a.keyring.Unlock(ctx, string(pin)); err != nil {
		return err
	}
	fmt.Println("Unlocked.")
	return nil
}

// Lock drops the session key. Stored data stays encrypted.
func (a *App) Lock(ctx context.Context) error {
	a.keyring.Lock()
	fmt.Println("Locked.")
	return nil
}

// Recover restores the session after a forgotten PIN. The user proves
// ownership by entering their employee ID; a new PIN must be set afterwards.
func (a *App) Recover(ctx context.Context) error {
	employeeID, err := getSimpleText(a.reader, "Enter your employee ID", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.keyring.Recover(ctx, employeeID); err != nil {
		return err
	}
	fmt.Println("Recovered. Set a new PIN with 'pin'.")
	return nil
}

// Status checks the account against the relay and prints the local state.
func (a *App) Status(ctx context.Context) error {
	if err := a.keyring.CheckStatus(ctx); err != nil {
		fmt.Println("relay:", err.Error())
	} else {
		fmt.Println("relay: ok")
	}

	state, err := a.keyring.State(ctx)
	if err != nil {
		return err
	}
	fmt.Println("state:", state)

	if id, err := a.keyring.EmployeeID(ctx); err == nil && id != "" {
		fmt.Println("employee:", id)
	}
	return nil
}
