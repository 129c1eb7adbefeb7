package cli

import (
	"fmt"
	"os"

	"github.com/existflow/toedo/internal/notify"
	"github.com/existflow/toedo/internal/tui"
)

// printer shows notices on stderr so stdout stays scriptable
type printer struct{}

func (printer) Notify(n notify.Notice) {
	fmt.Fprintln(os.Stderr, tui.RenderNotice(n))
}

var notifyLoadFailed = notify.Errorf("Error", "Could not load todos")
