// Package models defines the relay-side data shapes: loan-officer accounts
// and pending inbox transfers.
package models

// Account statuses.
const (
	AccountActive = "active"
	AccountLocked = "locked"
)

// Account is one loan officer known to the relay. ActivationKey is the
// secret handed out by the back office; a device binds to the account by
// presenting it. Timestamps are epoch milliseconds.
type Account struct {
	EmployeeID    string
	Name          string
	ActivationKey string
	Status        string
	DeviceID      string
	DeviceInfo    string
	ActivatedAt   int64
}

// Active reports whether the account may use the relay.
func (a *Account) Active() bool { return a.Status == AccountActive }
