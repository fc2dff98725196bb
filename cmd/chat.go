package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"hotel_concierge/src/model"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func newChatCommand(opts *rootOptions) *cobra.Command {
	var userID, conversationID, exportDir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with Huda on the terminal",
		Long: `Start an interactive conversation. Type "exit" to leave.
"export memory" writes the snapshot to huda-memory-export-<date>.json.

Commands:
  /lang <tag>        reply language
  /route <path>      page the guest is on
  /style <style>     friendly, professional or casual greetings
  /history [n]       last n transcript messages
  /predict <text>    intent learned for a partial utterance`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			engine := a.registry.Engine(ctx, conversationID, userID)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Huda is ready (conversation %s). Type \"exit\" to quit.\n", engine.ID())

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "":
					continue
				case line == "exit" || line == "quit":
					return nil
				case strings.HasPrefix(line, "/lang "):
					fmt.Fprintf(out, "Language set to %s\n", engine.SetLanguage(strings.TrimPrefix(line, "/lang ")))
					continue
				case strings.HasPrefix(line, "/route "):
					engine.SetRoute(strings.TrimPrefix(line, "/route "))
					continue
				case strings.HasPrefix(line, "/style "):
					style, ok := model.ParseCommunicationStyle(strings.TrimPrefix(line, "/style "))
					if !ok {
						fmt.Fprintln(out, "Style must be friendly, professional or casual")
						continue
					}
					engine.SetCommunicationStyle(ctx, style)
					fmt.Fprintf(out, "Style set to %s\n", style)
					continue
				case line == "/history" || strings.HasPrefix(line, "/history "):
					n, _ := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/history")))
					transcript, err := engine.Transcript(ctx, n)
					if err != nil {
						fmt.Fprintf(out, "Error: %v\n", err)
						continue
					}
					fmt.Fprintln(out, transcript)
					continue
				case strings.HasPrefix(line, "/predict "):
					if p, ok := engine.PredictIntent(strings.TrimPrefix(line, "/predict ")); ok {
						fmt.Fprintf(out, "Likely %s: %q (%.2f)\n", p.Intent, p.Pattern, p.Confidence)
					} else {
						fmt.Fprintln(out, "No prediction yet")
					}
					continue
				}

				res, err := engine.Respond(ctx, line)
				if err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
					continue
				}
				fmt.Fprintf(out, "Huda: %s\n", res.Reply)
				if res.Export != nil {
					path, err := writeSnapshot(*res.Export, exportDir)
					if err != nil {
						fmt.Fprintf(out, "Export failed: %v\n", err)
						continue
					}
					fmt.Fprintf(out, "Saved %s\n", path)
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "guest id whose memory is used")
	cmd.Flags().StringVar(&conversationID, "conversation", "", "resume a conversation id")
	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "directory for memory exports")
	return cmd
}

func writeSnapshot(snap model.Snapshot, dir string) (string, error) {
	data, err := sonic.ConfigStd.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	path := filepath.Join(dir, snap.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}
