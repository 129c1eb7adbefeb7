package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/toedo/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List todos",
	Long: `List the todos of the selected workspace, newest first.

Examples:
  toedo list
  toedo list --workspace 4`,
	RunE: runList,
}

var listWorkspace int64

func init() {
	listCmd.Flags().Int64VarP(&listWorkspace, "workspace", "w", 0, "Workspace id (default: selected)")
}

func runList(cmd *cobra.Command, args []string) error {
	return withTodos(cmd, listWorkspace, func(tc todoCommand) error {
		todos, err := tc.todos.List(cmd.Context(), tc.workspace.ID)
		if err != nil {
			return fmt.Errorf("failed to list todos: %w", err)
		}
		if len(todos) == 0 {
			fmt.Println("No todos found. Add one with: toedo add \"Your todo\"")
			return nil
		}
		printTodos(tc.workspace.DisplayName(), todos)
		return nil
	})
}

func printTodos(name string, todos []model.Todo) {
	pending := len(todos) - model.CountCompleted(todos)

	fmt.Printf("\n📁 %s (%d pending)\n", name, pending)
	fmt.Println(strings.Repeat("─", 60))

	for _, t := range todos {
		printTodo(t)
	}
	fmt.Println()
}

func printTodo(t model.Todo) {
	icon := "[ ]"
	if t.Completed {
		icon = "[x]"
	}
	fmt.Printf("  %s %-6d %s\n", icon, t.ID, truncate(t.Text, 50))
}
