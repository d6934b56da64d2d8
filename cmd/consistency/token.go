package main

import (
	"fmt"
	"time"

	"github.com/erp/consistency/internal/infrastructure/auth"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// IssuedToken is printed by the token command
type IssuedToken struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with the configured secret",
		Long: `Issue a bearer token for the HTTP API.

The user id is generated when --user-id is omitted. Roles gate the API:
ADMIN and MANAGER read reports, only ADMIN applies corrections, and
SELLER may register returns.`,
		Example: `  consistency token --username ops --roles ADMIN --ttl 1h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rawID, _ := cmd.Flags().GetString("user-id")
			username, _ := cmd.Flags().GetString("username")
			roles, _ := cmd.Flags().GetStringSlice("roles")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			userID := uuid.New()
			if rawID != "" {
				id, err := uuid.Parse(rawID)
				if err != nil {
					return fmt.Errorf("--user-id: %w", err)
				}
				userID = id
			}
			token, expiresAt, err := auth.NewJWTService(a.cfg.JWT).Issue(userID, username, roles, ttl)
			if err != nil {
				return err
			}
			return a.printJSON(IssuedToken{Token: token, UserID: userID, ExpiresAt: expiresAt})
		},
	}
	cmd.Flags().String("user-id", "", "subject of the token (uuid)")
	cmd.Flags().String("username", "operator", "username claim")
	cmd.Flags().StringSlice("roles", []string{auth.RoleAdmin}, "comma separated roles")
	cmd.Flags().Duration("ttl", 0, "token lifetime, 0 uses jwt.token_expiration")
	return cmd
}
