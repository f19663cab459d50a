package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"branflu/cmd/branflu/auth"
	"branflu/internal/api"
	"branflu/internal/config"
	"branflu/internal/legal"
	"branflu/internal/logging"
	"branflu/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiURL     string

	cfg *config.Config
)

// rootCmd launches the interactive login/signup surface.
var rootCmd = &cobra.Command{
	Use:   "branflu",
	Short: "Branflu - creator/brand collaboration marketplace client",
	Long: `Branflu bridges the gap between creators and brands. Influencers
showcase their talent and get discovered, while brands find the perfect
match to amplify their marketing.

Run without arguments to open the interactive login/signup surface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if apiURL != "" {
			cfg.API.BaseURL = apiURL
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		return logging.Init(level, cfg.Logging.File)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := session.NewStore()
		if err != nil {
			return err
		}
		client := api.New(cfg.API.BaseURL, api.WithLogger(logging.L()))
		return auth.Run(cfg, client, sessions)
	},
}

// loginCmd performs a headless brand login for scripting.
var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in with email and password (brand accounts)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]

		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		client := api.New(cfg.API.BaseURL, api.WithLogger(logging.L()))
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout())
		defer cancel()

		res, err := client.Login(ctx, email, string(raw))
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		sessions, err := session.NewStore()
		if err != nil {
			return err
		}
		if res.Token != "" {
			if err := sessions.Set(session.Session{Token: res.Token, Email: email}); err != nil {
				return fmt.Errorf("persisting session: %w", err)
			}
		}
		logging.L().Info("login succeeded", zap.String("email", email))
		fmt.Println("Logged in.")
		return nil
	},
}

// logoutCmd clears the cached session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the cached session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := session.NewStore()
		if err != nil {
			return err
		}
		if err := sessions.Clear(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

// whoamiCmd shows the cached session, if any.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := session.NewStore()
		if err != nil {
			return err
		}
		sess := sessions.Current()
		if sess == nil {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s (%s), logged in %s\n",
			sess.Email, strings.ToLower(sess.Role), sess.CreatedAt.Format("2006-01-02 15:04"))
		return nil
	},
}

// legalCmd prints a legal page rendered for the terminal.
var legalCmd = &cobra.Command{
	Use:       "legal [terms|privacy]",
	Short:     "Show the Terms of Service or Privacy Policy",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{legal.PageTerms, legal.PagePrivacy},
	RunE: func(cmd *cobra.Command, args []string) error {
		width := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < 100 {
			width = w
		}
		out, err := legal.Render(args[0], width)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.branflu/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "override the API origin")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(legalCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
