package main

import (
	"clipboard-history/internal/server"
	"clipboard-history/internal/tui"
	"clipboard-history/pkg/types"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type clientRunFunc func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error

// clientCmd builds a command that talks to the daemon at --addr.
func clientCmd(use, short string, args cobra.PositionalArgs, run clientRunFunc) (*cobra.Command, *viper.Viper) {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    args,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), newAPIClient(v.GetString("addr")), cmd, args)
		},
	}
	addClientFlags(cmd)
	return cmd, v
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}

func newListCmd() *cobra.Command {
	var v *viper.Viper
	cmd, v := clientCmd("list", "List clipboard history, pinned first", cobra.NoArgs,
		func(ctx context.Context, c *apiClient, cmd *cobra.Command, _ []string) error {
			entries, err := c.List(ctx, v.GetInt("limit"))
			if err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			printEntries(cmd.OutOrStdout(), entries, time.Now())
			return nil
		})
	cmd.Flags().Int("limit", 0, "maximum entries (default: the history size)")
	cmd.Flags().Bool("json", false, "output raw JSON")
	return cmd
}

func newShowCmd() *cobra.Command {
	var v *viper.Viper
	cmd, v := clientCmd("show <id>", "Print an entry's content", cobra.ExactArgs(1),
		func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := c.Get(ctx, id)
			if err != nil {
				return err
			}
			return writeEntry(cmd.OutOrStdout(), e, v.GetString("out"))
		})
	cmd.Flags().String("out", "", "write the content to this file instead of stdout")
	return cmd
}

// writeEntry writes text as-is and images as decoded PNG bytes.
func writeEntry(stdout io.Writer, e types.Entry, out string) error {
	payload, err := types.DecodePayload(e.Content, e.Kind)
	if err != nil {
		return err
	}

	var data []byte
	switch p := payload.(type) {
	case types.TextPayload:
		data = []byte(p)
	case types.ImagePayload:
		data = p
	}

	if out != "" {
		return os.WriteFile(out, data, 0644)
	}
	if e.Kind == types.KindImage {
		return fmt.Errorf("entry %d is an image; use --out", e.ID)
	}
	_, err = stdout.Write(data)
	return err
}

func newCopyCmd() *cobra.Command {
	cmd, _ := clientCmd("copy [id]", "Copy an entry, or stdin, to the system clipboard", cobra.MaximumNArgs(1),
		func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return c.Copy(ctx, id)
			}

			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			if len(data) == 0 {
				return fmt.Errorf("nothing to copy on stdin")
			}
			return c.WriteClipboard(ctx, string(data), types.KindText)
		})
	return cmd
}

func newPinCmd() *cobra.Command {
	cmd, _ := clientCmd("pin <id>", "Toggle an entry's pin", cobra.ExactArgs(1),
		func(ctx context.Context, c *apiClient, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.Pin(ctx, id)
		})
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd, _ := clientCmd("delete <id>...", "Delete entries", cobra.MinimumNArgs(1),
		func(ctx context.Context, c *apiClient, _ *cobra.Command, args []string) error {
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				if err := c.Delete(ctx, id); err != nil {
					return err
				}
			}
			return nil
		})
	return cmd
}

func newClearCmd() *cobra.Command {
	cmd, _ := clientCmd("clear", "Delete every unpinned entry", cobra.NoArgs,
		func(ctx context.Context, c *apiClient, _ *cobra.Command, _ []string) error {
			return c.Clear(ctx)
		})
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change history size, hotkey and theme",
	}

	get, _ := clientCmd("get", "Print the current settings", cobra.NoArgs,
		func(ctx context.Context, c *apiClient, cmd *cobra.Command, _ []string) error {
			cfg, err := c.Config(ctx)
			if err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		})

	set, _ := clientCmd("set <key>=<value>...", "Change settings: max_history_count, hotkey, theme", cobra.MinimumNArgs(1),
		func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
			fields, err := parseConfigArgs(args)
			if err != nil {
				return err
			}
			cfg, err := c.UpdateConfig(ctx, fields)
			if err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		})

	cmd.AddCommand(get, set)
	return cmd
}

// parseConfigArgs turns key=value pairs into a partial config update.
func parseConfigArgs(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		switch strings.ReplaceAll(strings.TrimSpace(key), "-", "_") {
		case "max_history_count", "history", "max":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("max_history_count must be a number, got %q", value)
			}
			fields["max_history_count"] = n
		case "hotkey":
			fields["hotkey"] = value
		case "theme", "theme_preset":
			fields["theme"] = value
		default:
			return nil, fmt.Errorf("unknown setting %q", key)
		}
	}
	return fields, nil
}

func newStatusCmd() *cobra.Command {
	var v *viper.Viper
	cmd, v := clientCmd("status", "Show daemon status", cobra.NoArgs,
		func(ctx context.Context, c *apiClient, cmd *cobra.Command, _ []string) error {
			st, err := c.Status(ctx)
			if err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), st)
			}

			hotkey := st.Hotkey
			if !st.HotkeyActive {
				hotkey = "inactive"
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Status:\t%s\n", st.Status)
			fmt.Fprintf(w, "Address:\t%s\n", st.Addr)
			fmt.Fprintf(w, "Backend:\t%s\n", st.Backend)
			fmt.Fprintf(w, "Hotkey:\t%s\n", hotkey)
			return w.Flush()
		})
	cmd.Flags().Bool("json", false, "output raw JSON")
	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := dataDir()
			if err != nil {
				return err
			}
			pid, err := server.OpenPIDFile(dir).Terminate()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stopped daemon (pid %d)\n", pid)
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEntries(out io.Writer, entries []types.Entry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tPIN\tAGE\tPREVIEW")
	fmt.Fprintln(w, "--\t----\t---\t---\t-------")
	for _, e := range entries {
		pin := ""
		if e.Pinned {
			pin = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Kind, pin, fmtAge(now.Sub(e.CreatedAt)), tui.Preview(e, 60))
	}
	_ = w.Flush()
}

func printConfig(out io.Writer, cfg types.AppConfig) {
	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "max_history_count:\t%d\n", cfg.MaxHistoryCount)
	fmt.Fprintf(w, "hotkey:\t%s\n", cfg.Hotkey)
	fmt.Fprintf(w, "theme:\t%s\n", cfg.Theme)
	_ = w.Flush()
}

func fmtAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
