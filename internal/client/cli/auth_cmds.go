package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and runs the login sequence through the
// auth gateway.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.Login(ctx, email, password); err != nil {
		return err
	}

	snap := a.store.Get()
	printlnFn(fmt.Sprintf("Logged in as %s (%s)", snap.User.Email, snap.User.Role))
	return nil
}

// Register prompts for account details and creates the account. It does not
// sign the user in.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	msg, err := a.auth.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	printlnFn(msg)
	return nil
}

// Logout signs the user out. It never fails from the user's perspective.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}

// WhoAmI prints the signed-in user's profile.
func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.store.Get()
	if snap.User == nil {
		printlnFn("Not logged in.")
		return nil
	}
	printlnFn(fmt.Sprintf("%s <%s> role=%s", snap.User.Name, snap.User.Email, snap.User.Role))
	return nil
}
