package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/coffyapp/coffy-client/internal/client/models"
)

// Setup runs the onboarding flow: profile fields plus a comma-separated
// contact import. The save succeeds even fully offline.
func (a *App) Setup(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Your name", os.Stdout)
	if err != nil {
		return err
	}
	phone, err := GetSimpleText(a.reader, "Phone number (+1...)", os.Stdout)
	if err != nil {
		return err
	}
	raw, err := GetSimpleText(a.reader, "Contacts as name:phone, comma separated (optional)", os.Stdout)
	if err != nil {
		return err
	}

	var contacts []models.Contact
	for _, part := range strings.Split(raw, ",") {
		fields := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(fields) != 2 {
			continue
		}
		contacts = append(contacts, models.NewContact(fields[0], fields[1]))
	}

	profile := models.ProfileRecord{Name: name, PhoneNumber: phone}
	if err := a.orchestrator.CompleteOnboarding(ctx, profile, contacts); err != nil {
		fmt.Println("Could not save profile:", err)
		return err
	}
	fmt.Println("Profile and contacts saved. Will sync when the server is available.")
	return nil
}

// Sync runs the explicit pull-style reconciliation.
func (a *App) Sync(ctx context.Context) error {
	merged, err := a.orchestrator.SyncFromServer(ctx)
	if err != nil {
		fmt.Println("Sync failed:", err)
		return err
	}
	if merged {
		fmt.Println("Profile synced from server.")
	} else {
		fmt.Println("Nothing new on the server.")
	}
	return nil
}

// Status prints the current session snapshot.
func (a *App) Status(ctx context.Context) error {
	snap, ok := a.store.Snapshot()
	if !ok {
		fmt.Println("Not logged in.")
		return nil
	}
	availability, err := a.orchestrator.Availability(ctx)
	if err != nil {
		availability = models.AvailabilityAvailable
	}
	fmt.Printf("%s <%s>\n", snap.Name, snap.Email)
	fmt.Printf("  profile setup needed: %v\n", snap.NeedsProfileSetup)
	fmt.Printf("  contacts loaded:      %v\n", snap.ContactsLoaded)
	fmt.Printf("  availability:         %s\n", availability)
	return nil
}

// Availability cycles the availability status.
func (a *App) Availability(ctx context.Context) error {
	status, err := a.orchestrator.CycleAvailability(ctx)
	if err != nil {
		fmt.Println("Could not update availability:", err)
		return err
	}
	fmt.Println("Availability:", status)
	return nil
}

// Friends updates the pinned best-friend list.
func (a *App) Friends(ctx context.Context) error {
	raw, err := GetSimpleText(a.reader, "Best friend ids, comma separated", os.Stdout)
	if err != nil {
		return err
	}
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	if err := a.orchestrator.SaveBestFriends(ctx, ids); err != nil {
		fmt.Println("Could not save best friends:", err)
		return err
	}
	fmt.Println("Best friends saved.")
	return nil
}

// ForceSetup reopens onboarding. Debug-only escape hatch; nothing in the
// background ever does this.
func (a *App) ForceSetup(ctx context.Context) error {
	if err := a.orchestrator.ForceProfileSetup(ctx); err != nil {
		fmt.Println("Could not force setup:", err)
		return err
	}
	fmt.Println("Profile setup reopened — run 'setup'.")
	return nil
}
