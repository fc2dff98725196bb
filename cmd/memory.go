package cmd

import (
	"context"
	"fmt"
	"os"

	"hotel_concierge/internal/concierge"
	"hotel_concierge/src/learning"
	"hotel_concierge/src/model"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func newMemoryCommand(opts *rootOptions) *cobra.Command {
	var userID string

	withMemory := func(cmd *cobra.Command, fn func(ctx context.Context, memory *learning.Store) error) error {
		ctx := cmd.Context()
		a, err := opts.open(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)
		return fn(ctx, a.registry.Memory(ctx, userID))
	}

	memoryCmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and manage what Huda remembers about a guest",
	}
	memoryCmd.PersistentFlags().StringVar(&userID, "user", concierge.AnonymousUser, "guest id")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print preferences, stats and analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMemory(cmd, func(ctx context.Context, memory *learning.Store) error {
				return printJSON(cmd, map[string]any{
					"user_id":     memory.UserID(),
					"preferences": memory.Preferences(),
					"stats":       memory.MemoryStats(),
					"analytics":   memory.Analytics(),
				})
			})
		},
	}

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the memory snapshot to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMemory(cmd, func(ctx context.Context, memory *learning.Store) error {
				snap := memory.ExportSnapshot()
				if out == "-" {
					return printJSON(cmd, snap)
				}
				path := out
				if path == "" {
					path = snap.FileName()
				}
				data, err := sonic.ConfigStd.MarshalIndent(snap, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("failed to write snapshot: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
				return nil
			})
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default huda-memory-export-<date>.json)`)

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a memory snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}
			var snap model.Snapshot
			if err := sonic.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("invalid snapshot: %w", err)
			}
			return withMemory(cmd, func(ctx context.Context, memory *learning.Store) error {
				memory.ImportSnapshot(ctx, snap)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d interactions for %s\n", memory.TotalInteractions(), memory.UserID())
				return nil
			})
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget everything learned about the guest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMemory(cmd, func(ctx context.Context, memory *learning.Store) error {
				memory.Reset(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "Memory reset for %s\n", memory.UserID())
				return nil
			})
		},
	}

	styleCmd := &cobra.Command{
		Use:       "style <friendly|professional|casual>",
		Short:     "Set how Huda greets the guest",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.StyleFriendly), string(model.StyleProfessional), string(model.StyleCasual)},
		RunE: func(cmd *cobra.Command, args []string) error {
			style, ok := model.ParseCommunicationStyle(args[0])
			if !ok {
				return fmt.Errorf("unknown communication style %q", args[0])
			}
			return withMemory(cmd, func(ctx context.Context, memory *learning.Store) error {
				memory.SetCommunicationStyle(ctx, style)
				fmt.Fprintf(cmd.OutOrStdout(), "Communication style for %s set to %s\n", memory.UserID(), style)
				return nil
			})
		},
	}

	memoryCmd.AddCommand(showCmd, exportCmd, importCmd, resetCmd, styleCmd)
	return memoryCmd
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
