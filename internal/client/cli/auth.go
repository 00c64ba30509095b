package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/client/api"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/spf13/cobra"
)

func (a *App) signUpCommand() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if name, err = a.valueOrPrompt(name, "Name"); err != nil {
				return err
			}
			if email, err = a.valueOrPrompt(email, "Email"); err != nil {
				return err
			}
			pw, err := GetPassword(a.out)
			if err != nil {
				return err
			}
			defer clear(pw)

			if _, err := a.client.SignUp(cmd.Context(), name, email, string(pw)); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Account created. Run `notekeeper login` to sign in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func (a *App) loginCommand() *cobra.Command {
	var email, code string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Request a sign-in code by email and exchange it for a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var err error
			if email, err = a.valueOrPrompt(email, "Email"); err != nil {
				return err
			}

			// --code skips the request step, for codes that already arrived.
			if code == "" {
				if err := a.client.RequestCode(ctx, email); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "A verification code was sent to %s.\n", email)
				if code, err = GetSimpleText(a.in, "Code", a.out); err != nil {
					return err
				}
			}

			u, err := a.client.VerifyCode(ctx, email, code)
			if err != nil {
				return err
			}
			if err := a.saveSession(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s <%s>.\n", u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&code, "code", "", "verification code already received")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.client.SignOut(cmd.Context())
			if serr := a.saveSession(); serr != nil {
				return serr
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out.")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client.WhoAmI(cmd.Context())
			if err != nil {
				return sessionHint(err)
			}
			fmt.Fprintf(a.out, "%s <%s> (%s)\n", u.Name, u.Email, u.ID)
			return nil
		},
	}
}

// sessionHint rewrites missing or rejected sessions into an actionable message.
func sessionHint(err error) error {
	if errors.Is(err, api.ErrNoSession) || errors.Is(err, common.ErrorUnauthorized) {
		return fmt.Errorf("%w: run `notekeeper login`", err)
	}
	return err
}
