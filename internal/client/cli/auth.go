package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/coffyapp/coffy-client/internal/client/models"
)

// Login collects the identity tuple the external OAuth redirect would have
// delivered and hands it to the orchestrator. A dead backend never blocks
// login here; it only decides whether onboarding is shown next.
func (a *App) Login(ctx context.Context) error {
	userID, err := GetSimpleText(a.reader, "User id (from the auth callback)", os.Stdout)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Name (optional)", os.Stdout)
	if err != nil {
		return err
	}

	id, err := a.orchestrator.Login(ctx, models.AuthResult{UserID: userID, Email: email, Name: name})
	if err != nil {
		fmt.Println("Login failed:", err)
		return err
	}

	if id.NeedsProfileSetup {
		fmt.Println("Logged in. Profile setup required — run 'setup'.")
	} else {
		fmt.Println("Logged in. Profile is complete.")
	}
	return nil
}

// Restore replays the persisted session on startup.
func (a *App) Restore(ctx context.Context) error {
	state, err := a.store.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
		return err
	}
	if snap, ok := a.store.Snapshot(); ok {
		fmt.Printf("Welcome back, %s (%s)\n", snap.Name, state)
	}
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	if err := a.orchestrator.SignOut(ctx); err != nil {
		fmt.Println("Sign-out incomplete:", err)
		return err
	}
	fmt.Println("Signed out.")
	return nil
}
