package cli

import (
	"bufio"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/infrastructure/httpclient"
)

const loginPath = "/erp/auth/login"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (a *App) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Long: `Exchanges a username and password for an access token and stores it in
the configured token store (file, redis or memory).

The password is read from stdin when --password is not given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := a.open(ctx, runtimeOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()

			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			env, err := httpclient.Request[httpclient.Envelope[loginResponse]](ctx, rt.client,
				loginPath, http.MethodPost, "", loginRequest{Username: username, Password: password})
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if !env.Success || env.Data.AccessToken == "" {
				return fmt.Errorf("login failed: %s", env.Message)
			}

			tok := auth.Token{AccessToken: env.Data.AccessToken}
			if err := rt.tokens.Save(ctx, tok); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}
			rt.session.SetToken(tok)

			fmt.Fprintf(a.out, "Logged in as %s", username)
			if !env.Data.ExpiresAt.IsZero() {
				fmt.Fprintf(a.out, " (token expires %s)", env.Data.ExpiresAt.Local().Format(time.RFC1123))
			}
			fmt.Fprintln(a.out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "user name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.open(cmd.Context(), runtimeOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.tokens.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clearing token: %w", err)
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

type whoami struct {
	UserID    string   `json:"user_id"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
	ExpiresAt string   `json:"expires_at,omitempty"`
	Expired   bool     `json:"expired"`
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who the stored access token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.open(cmd.Context(), runtimeOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()

			token, err := rt.requireToken()
			if err != nil {
				return err
			}
			claims, err := auth.Inspect(token)
			if err != nil {
				return err
			}

			now := time.Now()
			info := whoami{
				UserID:   claims.UserID,
				Username: claims.Username,
				Roles:    claims.RoleIDs,
				Expired:  claims.Expired(now),
			}
			if claims.ExpiresAt != nil {
				info.ExpiresAt = claims.ExpiresAt.Format(time.RFC3339)
			}
			return render(a.out, a.output, info)
		},
	}
}
