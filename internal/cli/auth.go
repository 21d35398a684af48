package cli

import (
	"context"
	"fmt"

	"github.com/glycorisk/riskdash/internal/cryptox"
	"github.com/glycorisk/riskdash/internal/models"
)

const (
	loginFallback    = "Login failed. Please try again."
	registerFallback = "Registration failed. Please try again."
)

// Register prompts for the account details, creates the account and logs in
// with the same credentials. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	role, err := GetChoice(a.reader, "Role", []string{string(models.RolePatient), string(models.RoleDoctor)}, string(models.RolePatient), a.out)
	if err != nil {
		return a.fail(ctx, err, registerFallback)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	reg := models.Registration{Email: email, Password: string(password), FullName: fullName, Role: models.Role(role)}
	if _, err := a.auth.Register(ctx, nil, reg); err != nil {
		return a.fail(ctx, err, registerFallback)
	}

	a.userName = fullName
	fmt.Fprintln(a.out, "Registered and logged in.")
	return nil
}

// Login prompts for credentials and stores the returned token. The password
// is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	cred, err := a.auth.Login(ctx, nil, models.Credentials{Email: email, Password: string(password)})
	if err != nil {
		return a.fail(ctx, err, loginFallback)
	}

	a.userName = email
	if cred.ExpiresAt.IsZero() {
		fmt.Fprintln(a.out, "Login successful.")
	} else {
		fmt.Fprintf(a.out, "Login successful. Session valid until %s.\n", cred.ExpiresAt.Local().Format("Jan 2, 2006, 03:04 PM"))
	}
	return nil
}

// Logout removes the stored credential.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx, nil); err != nil {
		return a.fail(ctx, err, "Logout failed")
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// Me prints the signed-in user.
func (a *App) Me(ctx context.Context) error {
	u, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return a.fail(ctx, err, "Failed to load user")
	}
	a.setUser(u)
	fmt.Fprintf(a.out, "%s <%s>, %s\n", u.FullName, u.Email, u.Role)
	return nil
}
