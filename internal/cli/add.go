package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/todo"
)

var addCmd = &cobra.Command{
	Use:   "add [todo]",
	Short: "Add a todo",
	Long: `Add a todo to the selected workspace.

Examples:
  toedo add "Buy groceries"
  toedo add "Review PR" --workspace 4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var addWorkspace int64

func init() {
	addCmd.Flags().Int64VarP(&addWorkspace, "workspace", "w", 0, "Workspace id (default: selected)")
}

// todoCommand holds what the todo commands share
type todoCommand struct {
	workspace model.Workspace
	todos     *todo.Manager
}

// withTodos resolves the target workspace and runs fn with an owner scoped
// todo manager
func withTodos(cmd *cobra.Command, workspaceFlag int64, fn func(tc todoCommand) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	wm, sess, client, err := a.workspaces(cmd.Context())
	if err != nil {
		return err
	}
	ws, err := target(wm, workspaceFlag)
	if err != nil {
		return err
	}
	return fn(todoCommand{
		workspace: *ws,
		todos:     todo.NewOwned(client, sess.OwnerID(), a.notifier),
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	return withTodos(cmd, addWorkspace, func(tc todoCommand) error {
		t, err := tc.todos.Add(cmd.Context(), tc.workspace.ID, text)
		if err != nil {
			return err
		}
		if t == nil {
			fmt.Println("Nothing to add.")
			return nil
		}
		fmt.Printf("Added to %s: %s (%d)\n", tc.workspace.DisplayName(), t.Text, t.ID)
		return nil
	})
}
