package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/remote"
	"github.com/existflow/toedo/internal/session"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage your account on the toedo server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the toedo server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the toedo server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the toedo server",
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().String("email", "", "Login using magic link for this email")
	loginCmd.Flags().String("token", "", "Verify magic link token")
}

// begin persists a fresh session for res
func begin(res *remote.AuthResult) error {
	path, err := session.DefaultPath()
	if err != nil {
		return err
	}
	if _, err := session.Begin(path, cfg.ServerURL, res.UserID, res.Email, res.Token, res.ExpiresAt); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	logger.Info("Signed in", logger.F("user_id", res.UserID))
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := remote.New(cfg.ServerURL)

	// Check for magic link flags
	email, _ := cmd.Flags().GetString("email")
	token, _ := cmd.Flags().GetString("token")

	if token != "" {
		fmt.Printf("🔄 Verifying magic link token...\n")
		res, err := client.VerifyMagicLink(ctx, token)
		if err != nil {
			return err
		}
		if err := begin(res); err != nil {
			return err
		}
		fmt.Printf("✅ Logged in as %s\n", res.Email)
		return nil
	}

	if email != "" {
		fmt.Printf("🔄 Requesting magic link for %s...\n", email)
		devToken, err := client.RequestMagicLink(ctx, email)
		if err != nil {
			return err
		}
		fmt.Println("📬 Magic link requested! Check your email (or server logs in dev).")
		if devToken != "" {
			fmt.Printf("🔑 Development Token: %s\n", devToken)
		}

		inputToken := prompt("Enter Magic Link Token: ")
		if inputToken == "" {
			fmt.Println("❌ Token required.")
			return nil
		}

		fmt.Printf("🔄 Verifying magic link...\n")
		res, err := client.VerifyMagicLink(ctx, inputToken)
		if err != nil {
			return err
		}
		if err := begin(res); err != nil {
			return err
		}
		fmt.Printf("✅ Logged in as %s\n", res.Email)
		return nil
	}

	// Normal password login
	email = prompt("Email: ")
	password := promptSecret("Password: ")

	fmt.Println("🔄 Logging in...")
	res, err := client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := begin(res); err != nil {
		return err
	}

	fmt.Printf("✅ Logged in as %s\n", res.Email)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	email := prompt("Email: ")
	password := promptSecret("Password: ")
	if confirmPw := promptSecret("Confirm password: "); confirmPw != password {
		return errors.New("passwords do not match")
	}

	fmt.Println("🔄 Creating account...")
	res, err := remote.New(cfg.ServerURL).Register(cmd.Context(), strings.TrimSpace(email), password)
	if err != nil {
		return err
	}
	if err := begin(res); err != nil {
		return err
	}

	fmt.Printf("✅ Account created, logged in as %s\n", res.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	sess, client, err := a.signedIn()
	if errors.Is(err, session.ErrNoSession) {
		fmt.Println("Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}

	sess.OnEnd(func() {
		if err := a.db.Delete(ctx, selectedWorkspaceKey); err != nil {
			logger.Warn("Failed to clear workspace selection", logger.F("error", err))
		}
	})

	if err := client.Logout(ctx); err != nil {
		logger.Warn("Server logout failed", logger.F("error", err))
	}
	if err := sess.End(); err != nil {
		return err
	}

	fmt.Println("👋 Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	_, client, err := a.signedIn()
	if err != nil {
		return err
	}
	user, err := client.Me(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", user.Email, user.ID)
	return nil
}
