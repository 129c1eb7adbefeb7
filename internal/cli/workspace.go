package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/workspace"
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Manage workspaces",
	Long: `Create, rename, share and select workspaces.

Without a subcommand the selected workspace is shown.

Examples:
  toedo ws                      # Show selected workspace
  toedo ws ls                   # List workspaces
  toedo ws new Groceries        # Create and select a workspace
  toedo ws use 4                # Select workspace 4
  toedo ws public 4             # Make workspace 4 reachable by link
  toedo ws share 4 --secure     # Print a 30 minute link carrying the password`,
	RunE: runWorkspaceShow,
}

var workspaceLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List your workspaces",
	RunE:    runWorkspaceList,
}

var workspaceNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a workspace and select it",
	RunE:  runWorkspaceNew,
}

var workspaceRenameCmd = &cobra.Command{
	Use:   "rename [id] [name]",
	Short: "Rename a workspace",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWorkspaceRename,
}

var workspaceRmCmd = &cobra.Command{
	Use:     "rm [id]",
	Aliases: []string{"delete"},
	Short:   "Delete a workspace and its todos",
	Args:    cobra.ExactArgs(1),
	RunE:    runWorkspaceDelete,
}

var workspaceUseCmd = &cobra.Command{
	Use:   "use [id]",
	Short: "Select a workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceUse,
}

var workspacePublicCmd = &cobra.Command{
	Use:   "public [id]",
	Short: "Make a workspace reachable by link",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runSetPublic(cmd, args, true) },
}

var workspacePrivateCmd = &cobra.Command{
	Use:   "private [id]",
	Short: "Make a workspace private",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runSetPublic(cmd, args, false) },
}

var workspacePasswordCmd = &cobra.Command{
	Use:   "password [id]",
	Short: "Set or clear the password of a public workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspacePassword,
}

var workspaceShareCmd = &cobra.Command{
	Use:   "share [id]",
	Short: "Print the share link of a workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceShare,
}

var (
	rmForce       bool
	passwordClear bool
	shareSecure   bool
)

func init() {
	workspaceCmd.AddCommand(workspaceLsCmd)
	workspaceCmd.AddCommand(workspaceNewCmd)
	workspaceCmd.AddCommand(workspaceRenameCmd)
	workspaceCmd.AddCommand(workspaceRmCmd)
	workspaceCmd.AddCommand(workspaceUseCmd)
	workspaceCmd.AddCommand(workspacePublicCmd)
	workspaceCmd.AddCommand(workspacePrivateCmd)
	workspaceCmd.AddCommand(workspacePasswordCmd)
	workspaceCmd.AddCommand(workspaceShareCmd)

	workspaceRmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "Do not ask for confirmation")
	workspacePasswordCmd.Flags().BoolVar(&passwordClear, "clear", false, "Remove the password")
	workspaceShareCmd.Flags().BoolVar(&shareSecure, "secure", false, "Embed the password in a link valid for 30 minutes")
}

// withWorkspaces runs fn with the signed-in user's workspace manager
func withWorkspaces(cmd *cobra.Command, fn func(m *workspace.Manager) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	m, _, _, err := a.workspaces(cmd.Context())
	if err != nil {
		return err
	}
	return fn(m)
}

func runWorkspaceShow(cmd *cobra.Command, args []string) error {
	return withWorkspaces(cmd, func(m *workspace.Manager) error {
		ws := m.Selected()
		if ws == nil {
			fmt.Println("No workspace selected.")
			return nil
		}
		fmt.Printf("Current workspace: %s (%d)\n", ws.DisplayName(), ws.ID)
		fmt.Printf("Sharing: %s\n", sharing(*ws))
		return nil
	})
}

func runWorkspaceList(cmd *cobra.Command, args []string) error {
	return withWorkspaces(cmd, func(m *workspace.Manager) error {
		selected := m.Selected()
		fmt.Println("\n📁 Workspaces")
		fmt.Println(strings.Repeat("─", 60))
		for _, ws := range m.Workspaces() {
			marker := "  "
			if selected != nil && selected.ID == ws.ID {
				marker = "▶ "
			}
			fmt.Printf("%s%-6d %-30s %s\n", marker, ws.ID, truncate(ws.DisplayName(), 30), sharing(ws))
		}
		fmt.Println()
		return nil
	})
}

func runWorkspaceNew(cmd *cobra.Command, args []string) error {
	return withWorkspaces(cmd, func(m *workspace.Manager) error {
		ws, err := m.Create(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("Created and selected: %s (%d)\n", ws.DisplayName(), ws.ID)
		return nil
	})
}

func runWorkspaceRename(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "workspace")
	if err != nil {
		return err
	}
	return withWorkspaces(cmd, func(m *workspace.Manager) error {
		_, err := m.Rename(cmd.Context(), id, strings.Join(args[1:], " "))
		return err
	})
}

func runWorkspaceDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "workspace")
	if err != nil {
		return err
	}
	return withWorkspaces(cmd, func(m *workspace.Manager) error {
		if !rmForce && !confirm(fmt.Sprintf("Delete workspace %d and all its todos?", id)) {
			fmt.Println("Aborted.")
			return nil
		}
		return m.Delete(cmd.Context(), id)
	})
}

func runWorkspaceUse(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "workspace")
	if err != nil {
		return err
	}
	return withWorkspaces(cmd, func(m *workspace.Manager) error {
		if err := m.Select(id); err != nil {
			return err
		}
		fmt.Printf("✓ Workspace set to: %s\n", m.Selected().DisplayName())
		return nil
	})
}

func runSetPublic(cmd *cobra.Command, args []string, public bool) error {
	id, err := parseID(args[0], "workspace")
	if err != nil {
		return err
	}
	return withWorkspaces(cmd, func(m *workspace.Manager) error {
		_, err := m.SetPublic(cmd.Context(), id, public)
		return err
	})
}

func runWorkspacePassword(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "workspace")
	if err != nil {
		return err
	}
	return withWorkspaces(cmd, func(m *workspace.Manager) error {
		if passwordClear {
			_, err := m.RemovePassword(cmd.Context(), id)
			return err
		}
		_, err := m.SetPassword(cmd.Context(), id, promptSecret("New password (empty to clear): "))
		return err
	})
}

func runWorkspaceShare(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "workspace")
	if err != nil {
		return err
	}
	return withWorkspaces(cmd, func(m *workspace.Manager) error {
		var link string
		var err error
		if shareSecure {
			link, err = m.SecureShareLink(cmd.Context(), id, cfg.Origin, time.Now())
		} else {
			link, err = m.ShareLink(cmd.Context(), id, cfg.Origin)
		}
		if err != nil {
			return err
		}
		fmt.Println(link)
		return nil
	})
}

func sharing(ws model.Workspace) string {
	switch {
	case !ws.Public():
		return "private"
	case ws.HasPassword():
		return "public, password protected"
	default:
		return "public"
	}
}

// truncate shortens a string to max runes with ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
