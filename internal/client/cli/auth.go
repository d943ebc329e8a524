package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Register prompts for a username and password and creates the account.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.auth.Register(ctx, userName, string(password)); err != nil {
		return err
	}

	a.println("Account created, you can log in now")
	return nil
}

// Login prompts for credentials, opens a session and shows today's entry.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer wipe(password)

	s, err := a.auth.Login(ctx, userName, string(password))
	if err != nil {
		a.log.Info(ctx, "Login unsuccessful", "username", userName, "error", err)
		return err
	}

	a.session = s
	a.setMode(ModeOnline)
	a.println(fmt.Sprintf("Welcome, %s!", s.UserName))
	return a.Today(ctx)
}

// Logout forgets the saved session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.session = nil
	a.println("Logged out")
	return nil
}
