package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/HealthDash/HealthDash/internal/rbac"
	"github.com/HealthDash/HealthDash/internal/session"
	"github.com/HealthDash/HealthDash/internal/web/navigation"
)

// EnvPassword supplies the login password without a prompt.
const EnvPassword = EnvPrefix + "_PASSWORD"

// ErrRequestFailed is returned by get for non-2xx responses.
var ErrRequestFailed = errors.New("request failed")

func newLoginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:          "login",
		Short:        "Sign in and store the session tokens",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeDB, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			creds, err := promptCredentials(cmd, username)
			if err != nil {
				return err
			}

			snap, err := client.Login(cmd.Context(), creds)
			if err != nil {
				return err //nolint: wrapcheck
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", snap.User.Username, snap.User.Role)

			return err //nolint: wrapcheck
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account to sign in with")
	addClientFlags(cmd)

	return cmd
}

// promptCredentials asks for whatever the flags and environment left out.
func promptCredentials(cmd *cobra.Command, username string) (session.Credentials, error) {
	in := bufio.NewReader(cmd.InOrStdin())

	ask := func(prompt string) (string, error) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), prompt)

		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err //nolint: wrapcheck
		}

		return strings.TrimRight(line, "\r\n"), nil
	}

	var err error

	if username == "" {
		if username, err = ask("Username: "); err != nil {
			return session.Credentials{}, err
		}
	}

	password := os.Getenv(EnvPassword)
	if password == "" {
		if password, err = ask("Password: "); err != nil {
			return session.Credentials{}, err
		}
	}

	return session.Credentials{Username: username, Password: password}, nil
}

func newLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "logout",
		Short:        "Revoke the session and forget the stored tokens",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeDB, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			if err = client.Logout(cmd.Context()); err != nil {
				return err //nolint: wrapcheck
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "logged out")

			return err //nolint: wrapcheck
		},
	}

	addClientFlags(cmd)

	return cmd
}

// whoami is printed by the whoami command.
type whoami struct {
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	Role        rbac.Role         `json:"role"`
	Permissions []rbac.Permission `json:"permissions"`
}

func newWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "whoami",
		Short:        "Restore the stored session and print the signed in user",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeDB, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			snap, err := client.RestoreSession(cmd.Context())
			if err != nil {
				return err //nolint: wrapcheck
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(whoami{ //nolint: wrapcheck
				Username:    snap.User.Username,
				Email:       snap.User.Email,
				Role:        snap.User.Role,
				Permissions: rbac.PermissionsFor(snap.User.Role).Sorted(),
			})
		},
	}

	addClientFlags(cmd)

	return cmd
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "GET an API path with the stored session",
		Long: `GET an API path relative to the API URL, for example "get /navigation".
An expired access token is refreshed once. When the refresh token is no
longer accepted the session is cleared and a login hint is printed.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeDB, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			return get(cmd.Context(), client, args[0], cmd.OutOrStdout())
		},
	}

	addClientFlags(cmd)

	return cmd
}

func get(ctx context.Context, client *session.Client, path string, out io.Writer) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := client.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err //nolint: wrapcheck
	}

	resp, err := client.Do(req)
	if err != nil {
		return err //nolint: wrapcheck
	}
	defer resp.Body.Close()

	if _, err = io.Copy(out, resp.Body); err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Wrapf(ErrRequestFailed, "GET %s: %s", path, resp.Status)
	}

	return nil
}

func newRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "routes",
		Short:        "Show which dashboard routes the stored session may open",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeDB, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			if _, err = client.RestoreSession(cmd.Context()); err != nil &&
				!errors.Is(err, session.ErrNotAuthenticated) {
				return err //nolint: wrapcheck
			}

			return printRoutes(client, cmd.OutOrStdout())
		},
	}

	addClientFlags(cmd)

	return cmd
}

func printRoutes(client *session.Client, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint: mnd

	_, _ = fmt.Fprintln(w, "PATH\tTITLE\tDECISION\tREDIRECT")

	for _, route := range navigation.Routes() {
		d := client.CanAccessRoute(route.RouteRule)

		redirect := d.Redirect
		if redirect == "" {
			redirect = "-"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", route.Path, route.Title, d.State, redirect)
	}

	return w.Flush() //nolint: wrapcheck
}
