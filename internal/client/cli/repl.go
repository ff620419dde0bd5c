package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isUnlocked() bool

	Activate(ctx context.Context) error
	SetupPIN(ctx context.Context) error
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	Recover(ctx context.Context) error
	Status(ctx context.Context) error

	Add(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Edit(ctx context.Context) error
	Delete(ctx context.Context) error
	Find(ctx context.Context) error
	AddImage(ctx context.Context) error

	Backup(ctx context.Context) error
	Backups(ctx context.Context) error
	Restore(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context) error
	AutoBackup(ctx context.Context, args []string) error

	Users(ctx context.Context) error
	Send(ctx context.Context) error
	SendRecords(ctx context.Context) error
	Inbox(ctx context.Context) error
	Receive(ctx context.Context) error
	DeleteTransfer(ctx context.Context) error
	DriveUpload(ctx context.Context) error
	DriveDownload(ctx context.Context) error
}

const helpLocked = "Available commands: activate, unlock, recover, status, import, exit"
const helpUnlocked = "Available commands: add, (l)ist, show, edit, delete, find, addimage, " +
	"backup, backups, restore, export, import, autobackup, " +
	"users, send, sendrecords, inbox, receive, deltransfer, driveup, drivedown, " +
	"pin, lock, status, exit"

// runREPL starts a read-eval-print loop over the command surface.
//
// It reads a line from the scanner, parses the first token as the command,
// and dispatches to methods on 'a'. Unknown commands are reported back to
// the user. The loop exits on scanner EOF or when the user types "exit" or
// "quit". Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	report := func(err error) {
		if err != nil {
			printlnFn("error:", err.Error())
		}
	}

	for {
		printlnFn(fmt.Sprintf("cp %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn(helpUnlocked)
			} else {
				printlnFn(helpLocked)
			}

		case "activate":
			report(a.Activate(ctx))
		case "pin":
			report(a.SetupPIN(ctx))
		case "unlock":
			report(a.Unlock(ctx))
		case "lock":
			report(a.Lock(ctx))
		case "recover":
			report(a.Recover(ctx))
		case "status":
			report(a.Status(ctx))

		case "add":
			report(a.Add(ctx))
		case "l", "list":
			report(a.List(ctx))
		case "show":
			report(a.Show(ctx))
		case "edit":
			report(a.Edit(ctx))
		case "delete":
			report(a.Delete(ctx))
		case "find":
			report(a.Find(ctx))
		case "addimage":
			report(a.AddImage(ctx))

		case "backup":
			report(a.Backup(ctx))
		case "backups":
			report(a.Backups(ctx))
		case "restore":
			report(a.Restore(ctx))
		case "export":
			report(a.Export(ctx))
		case "import":
			report(a.Import(ctx))
		case "autobackup":
			report(a.AutoBackup(ctx, args))

		case "users":
			report(a.Users(ctx))
		case "send":
			report(a.Send(ctx))
		case "sendrecords":
			report(a.SendRecords(ctx))
		case "inbox":
			report(a.Inbox(ctx))
		case "receive":
			report(a.Receive(ctx))
		case "deltransfer":
			report(a.DeleteTransfer(ctx))
		case "driveup":
			report(a.DriveUpload(ctx))
		case "drivedown":
			report(a.DriveDownload(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
