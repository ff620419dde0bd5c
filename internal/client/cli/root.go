package cli

import (
	"bufio"
	"context"
	"log"
	"os"
)

func (a *App) isUnlocked() bool {
	return a.keyring.Unlocked()
}

// Root runs the interactive loop until EOF, "exit" or context cancellation.
func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to ClientPro CLI (type 'help' for commands)")

	if err := a.keyring.CheckStatus(ctx); err != nil {
		a.log.Debug(ctx, "status check on startup failed", "error", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, func() string { return a.status(ctx) }, scanner)
}
