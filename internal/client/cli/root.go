package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if snap, ok := a.store.Snapshot(); ok {
		s = snap.Email + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", strings.TrimSpace(s))
	}
	return s
}

func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to Coffy (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	_ = a.Restore(ctx)
	if a.isLoggedIn() {
		_ = a.Sync(ctx)
	}

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	for {
		fmt.Printf("coffy %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: status, setup, sync, friends, availability, force-setup, signout, exit")
			} else {
				fmt.Println("Available commands: login, exit")
			}
		case "login":
			_ = a.Login(ctx)
		case "status":
			_ = a.Status(ctx)
		case "setup":
			_ = a.Setup(ctx)
		case "sync":
			_ = a.Sync(ctx)
		case "friends":
			_ = a.Friends(ctx)
		case "availability":
			_ = a.Availability(ctx)
		case "force-setup":
			_ = a.ForceSetup(ctx)
		case "signout", "logout":
			_ = a.SignOut(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", parts[0])
		}
	}
}
