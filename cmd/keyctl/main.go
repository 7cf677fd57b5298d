package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/poyrazK/keyportal/internal/adapters/repository"
	"github.com/poyrazK/keyportal/internal/adapters/session"
	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/poyrazK/keyportal/internal/core/ports"
	"github.com/poyrazK/keyportal/internal/core/services"
	"github.com/poyrazK/keyportal/internal/infrastructure/config"
	"github.com/poyrazK/keyportal/internal/infrastructure/logging"
	"github.com/poyrazK/keyportal/internal/infrastructure/secret"
	"github.com/spf13/cobra"
)

// backend is what the subcommands operate on.
type backend struct {
	creds  ports.CredentialService
	admins ports.AdminService
}

// openBackend is replaced in tests.
var openBackend = func(ctx context.Context, cfg *config.Config) (*backend, func(), error) {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	vault, err := secret.NewBcryptVault(cfg.Password.Cost)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	repo := repository.NewPostgresRepository(db)
	tokens := secret.NewGenerator()
	registry := services.NewSessionRegistry(session.NewMemoryStore(), tokens, 0)
	return &backend{
		creds:  services.NewCredentialService(repo, tokens, cfg.Credential.TTL, logger),
		admins: services.NewAdminService(repo, vault, registry, logger),
	}, closeDB, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          "keyctl",
		Short:        "Manage keyportal credentials and administrators from the shell",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a keyportal.yaml config file")
	root.PersistentFlags().String("database-url", "", "PostgreSQL connection URL")
	root.PersistentFlags().Bool("migrate", true, "apply schema migrations before running")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")

	// withBackend loads config, opens the store and hands it to fn.
	withBackend := func(fn func(cmd *cobra.Command, args []string, b *backend) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), cfgFile)
			if err != nil {
				return err
			}
			b, closeFn, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			return fn(cmd, args, b)
		}
	}

	root.AddCommand(
		newGenerateCmd(withBackend),
		newIssueCmd(withBackend),
		newListCmd(withBackend),
		newRevokeCmd(withBackend),
		newAdminCmd(withBackend),
	)
	return root
}

type backendRunner func(fn func(cmd *cobra.Command, args []string, b *backend) error) func(*cobra.Command, []string) error

func newGenerateCmd(with backendRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Print a fresh API key without storing it",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, _ []string, b *backend) error {
			key, err := b.creds.GenerateAPIKey(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to generate key: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		}),
	}
}

func newIssueCmd(with backendRunner) *cobra.Command {
	var first, last, email string
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Generate a key and store it for a new user",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, _ []string, b *backend) error {
			key, err := b.creds.GenerateAPIKey(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to generate key: %w", err)
			}
			user, err := b.creds.SubmitUser(cmd.Context(), domain.UserSubmission{
				FirstName: first,
				LastName:  last,
				Email:     email,
				APIKey:    key,
			})
			if err != nil {
				return fmt.Errorf("failed to save user: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API Key Issued Successfully!\n")
			fmt.Fprintf(out, "---------------------------\n")
			fmt.Fprintf(out, "User ID:    %d\n", user.UserID)
			fmt.Fprintf(out, "Key ID:     %d\n", user.KeyID)
			fmt.Fprintf(out, "Email:      %s\n", user.Email)
			fmt.Fprintf(out, "VALUE:      %s\n", key)
			fmt.Fprintf(out, "---------------------------\n")
			return nil
		}),
	}
	cmd.Flags().StringVar(&first, "first", "", "first name")
	cmd.Flags().StringVar(&last, "last", "", "last name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newListCmd(with backendRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users with their keys and status",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, _ []string, b *backend) error {
			rows, err := b.creds.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			if len(rows) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tKEY\tEXPIRES\tSTATUS")
			for _, r := range rows {
				fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\t%s\t%s\n",
					r.UserID, r.FirstName, r.LastName, r.Email, keyPrefix(r.APIKey),
					r.ExpiresAt.Format(time.RFC3339), r.Status)
			}
			return w.Flush()
		}),
	}
}

func keyPrefix(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8] + "…"
}

func newRevokeCmd(with backendRunner) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Delete a user and its API key",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, _ []string, b *backend) error {
			if id == "" {
				return fmt.Errorf("--id is required for revocation")
			}
			userID, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", id)
			}
			if err := b.creds.DeleteUser(cmd.Context(), userID); err != nil {
				return fmt.Errorf("failed to revoke: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "User %d revoked (deleted)\n", userID)
			return err
		}),
	}
	cmd.Flags().StringVar(&id, "id", "", "user id to revoke")
	return cmd
}

func newAdminCmd(with backendRunner) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	var email, password string
	register := &cobra.Command{
		Use:   "register",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, _ []string, b *backend) error {
			if password == "" {
				pw, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = pw
			}
			a, err := b.admins.Register(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("failed to register admin: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Admin %d registered for %s\n", a.AdminID, a.Email)
			return err
		}),
	}
	register.Flags().StringVar(&email, "email", "", "admin email")
	register.Flags().StringVar(&password, "password", "", "admin password, read from stdin when empty")

	admin.AddCommand(register)
	return admin
}

// readPassword takes the first line of r.
func readPassword(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", fmt.Errorf("read password: no input")
	}
	return sc.Text(), nil
}
