package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/pkg/jwt"
)

func tokenCmd() *cobra.Command {
	var (
		email      string
		name       string
		admin      bool
		expMins    int
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local development",
		Long: `Issue a bearer token signed with the configured JWT key or secret.

The admin flag only adds a role claim for display. Admin routes always check
the role stored on the user record, so promote the user (or seed it with
admin: true) as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !model.IsValidEmail(email) {
				return fmt.Errorf("invalid email %q", email)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if expMins <= 0 {
				expMins = cfg.JWT.ExpirationMins
			}

			svc, err := jwt.NewService(jwt.Config{
				PrivateKeyPath: cfg.JWT.PrivateKeyPath,
				Secret:         cfg.JWT.Secret,
				Issuer:         cfg.JWT.Issuer,
				ExpirationMins: expMins,
			})
			if err != nil {
				return fmt.Errorf("create JWT service: %w (run 'petzadopt keys generate' first)", err)
			}

			claims := jwt.Claims{Subject: email, Email: email, Name: name}
			if admin {
				claims.Role = string(model.UserRoleAdmin)
			}
			token, err := svc.Sign(claims)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			return printToken(cmd.OutOrStdout(), token, claims, expMins, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "admin@petzadopt.dev", "Email the token identifies")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name claim")
	cmd.Flags().BoolVar(&admin, "admin", false, "Add an admin role claim")
	cmd.Flags().IntVar(&expMins, "exp", 0, "Lifetime in minutes (default: JWT_EXPIRATION_MINS)")
	cmd.Flags().BoolVarP(&outputJSON, "json", "j", false, "Output as JSON")

	return cmd
}

func printToken(w io.Writer, token string, claims jwt.Claims, expMins int, asJSON bool) error {
	role := claims.Role
	if role == "" {
		role = string(model.UserRoleUser)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"token":      token,
			"token_type": "Bearer",
			"expires_in": expMins * 60,
			"email":      claims.Email,
			"role":       role,
		})
	}

	expTime := time.Now().Add(time.Duration(expMins) * time.Minute)
	fmt.Fprintln(w, "Token Generated")
	fmt.Fprintln(w, "===============")
	fmt.Fprintf(w, "Email:    %s\n", claims.Email)
	fmt.Fprintf(w, "Role:     %s\n", role)
	fmt.Fprintf(w, "Expires:  %s\n", expTime.Format(time.RFC3339))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Token:")
	fmt.Fprintln(w, token)
	return nil
}
