package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"lifeweeks/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password and creates a new account.
// It does not sign in; the user runs 'login' afterwards.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.engine.Register(ctx, userName, string(password))
	if !res.OK {
		log.Printf("Registration failed: %s", res.Reason)
		return nil
	}

	fmt.Println("Success! Run 'login' to sign in.")
	return nil
}

// Login prompts for credentials and signs in. On success the first sign-in
// also lays down the empty remote document, so sync commands work right away.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.engine.SignIn(ctx, userName, string(password))
	if !res.OK {
		log.Printf("Login failed: %s", res.Reason)
		return nil
	}

	a.Mode = ModeOnline
	fmt.Println("Signed in.")
	return nil
}

// Logout drops the session. Local data stays untouched.
func (a *App) Logout(ctx context.Context) error {
	a.engine.SignOut()
	fmt.Println("Signed out.")
	return nil
}
