package cli

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "rm [todo-id]",
	Aliases: []string{"delete"},
	Short:   "Delete a todo",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var deleteWorkspace int64

func init() {
	deleteCmd.Flags().Int64VarP(&deleteWorkspace, "workspace", "w", 0, "Workspace id (default: selected)")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "todo")
	if err != nil {
		return err
	}
	return withTodos(cmd, deleteWorkspace, func(tc todoCommand) error {
		return tc.todos.Remove(cmd.Context(), id, tc.workspace.ID)
	})
}
