package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [todo-id]",
	Short: "Toggle a todo between done and open",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var doneWorkspace int64

func init() {
	doneCmd.Flags().Int64VarP(&doneWorkspace, "workspace", "w", 0, "Workspace id (default: selected)")
}

func runDone(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "todo")
	if err != nil {
		return err
	}
	return withTodos(cmd, doneWorkspace, func(tc todoCommand) error {
		ctx := cmd.Context()
		todos, err := tc.todos.List(ctx, tc.workspace.ID)
		if err != nil {
			return err
		}
		for _, t := range todos {
			if t.ID == id {
				return tc.todos.Toggle(ctx, t.ID, t.WorkspaceID, t.Completed)
			}
		}
		return fmt.Errorf("todo %d not found in %s", id, tc.workspace.DisplayName())
	})
}
