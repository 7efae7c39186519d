// clipboard-history: a local clipboard history daemon and its CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.design/x/hotkey/mainthread"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	code := 0
	// Global hotkeys on macOS must be serviced from the main thread.
	mainthread.Init(func() { code = execute() })
	os.Exit(code)
}

func execute() int {
	root := &cobra.Command{
		Use:   "clipboard-history",
		Short: "Clipboard history daemon",
		Long: `clipboard-history records everything copied to the system clipboard,
text and images, in a local SQLite database and serves it over a local HTTP API.

Run "clipboard-history run" to start the daemon. The other commands talk to a
running daemon over its API.

Config file search order (first found wins):
  $HOME/.config/clipboard-history/clipboard-history.toml
  path supplied via --config

All flags can be set via CLIPBOARD_HISTORY_<FLAG> env vars or config-file keys.
History size, hotkey and theme live in the database; change them with
"clipboard-history config set".`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newListCmd(),
		newShowCmd(),
		newCopyCmd(),
		newPinCmd(),
		newDeleteCmd(),
		newClearCmd(),
		newConfigCmd(),
		newStatusCmd(),
		newStopCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipboard-history %s\n", Version)
		},
	}
}
