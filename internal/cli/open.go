package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/existflow/toedo/internal/gate"
	"github.com/existflow/toedo/internal/poll"
	"github.com/existflow/toedo/internal/todo"
	"github.com/existflow/toedo/internal/tui"
)

var openCmd = &cobra.Command{
	Use:   "open [link]",
	Short: "Open a shared workspace",
	Long: `Open a workspace through its public link.

The link may be a full share link, a /workspace/{id} path or a bare id.
Password protected workspaces ask for the password once; it is remembered
on this machine. A secure link skips the prompt while it is valid.

Examples:
  toedo open http://localhost:3000/workspace/4
  toedo open "http://localhost:3000/workspace/4?token=..."
  toedo open 4 --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

var openWatch bool

func init() {
	openCmd.Flags().BoolVar(&openWatch, "watch", false, "Keep the list open and refreshing")
}

func runOpen(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	// Signed-in visitors keep their identity; anyone else is anonymous
	token := ""
	if sess, err := a.session(); err == nil {
		token = sess.Token
	}
	client := a.client(token)

	v := visitor{client: client, creds: a.creds, notifier: a.notifier, ask: promptSecret}
	out, todos, err := v.open(ctx, args[0])
	if err != nil {
		if out.State == gate.Granted {
			a.notifier.Notify(notifyLoadFailed)
		}
		return err
	}
	if out.State != gate.Granted {
		fmt.Println("Left without access.")
		return nil
	}

	if out.StripToken {
		fmt.Fprintf(os.Stderr, "Link accepted. Next time open: %s\n", out.Address)
	}

	ws := out.Workspace
	if openWatch {
		notices := tui.NewNotices()
		return runTUI(tui.NewModel(tui.Options{
			Workspace: *ws,
			Todos:     todo.NewPublic(client, notices),
			Scheduler: poll.NewTicker(cfg.PollInterval),
			Notices:   notices,
			Public:    true,
		}))
	}

	if len(todos) == 0 {
		fmt.Printf("%s has no todos.\n", ws.DisplayName())
		return nil
	}
	printTodos(ws.DisplayName(), todos)
	return nil
}
