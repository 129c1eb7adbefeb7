package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var forgetCmd = &cobra.Command{
	Use:   "forget [workspace-id]",
	Short: "Forget remembered workspace passwords",
	Long: `Forget the passwords remembered on this machine for shared workspaces.
The next visit asks for the password again.

Examples:
  toedo forget 4
  toedo forget --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runForget,
}

var forgetAll bool

func init() {
	forgetCmd.Flags().BoolVar(&forgetAll, "all", false, "Forget every remembered password")
}

func runForget(cmd *cobra.Command, args []string) error {
	if !forgetAll && len(args) == 0 {
		return fmt.Errorf("give a workspace id or --all")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	var ids []int64
	if forgetAll {
		ids, err = a.creds.Workspaces(ctx)
		if err != nil {
			return err
		}
	} else {
		id, err := parseID(args[0], "workspace")
		if err != nil {
			return err
		}
		ids = []int64{id}
	}

	for _, id := range ids {
		if err := a.creds.Forget(ctx, id); err != nil {
			return fmt.Errorf("failed to forget workspace %d: %w", id, err)
		}
	}
	fmt.Printf("🧹 Forgot %d remembered password(s).\n", len(ids))
	return nil
}
