package main

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sourcetalk/cmd/sourcetalk/ui"
	"sourcetalk/internal/chat"
)

var (
	chatMessage string
	chatJSON    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant",
	Long: `Opens an interactive chat with the assistant webhook. With --message,
sends a single message and prints the reply.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{interactiveAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newRelayClient()
		if err != nil {
			return err
		}
		session := chat.NewSession(client)

		ctx, cancel := signalContext()
		defer cancel()

		if strings.TrimSpace(chatMessage) == "" {
			page := ui.NewChatPage(ctx, session, timeout, ui.DefaultStyles())
			if _, err := tea.NewProgram(page, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			return nil
		}

		ctx, cancelTurn := withTimeout(ctx, cfg.GetRelayTimeout())
		defer cancelTurn()

		resp, err := session.Send(ctx, chatMessage)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if chatJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		msgs := session.Messages()
		fmt.Fprintln(out, msgs[len(msgs)-1].Content)
		if !resp.Success {
			return fmt.Errorf("chat failed: %s", session.Err())
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send one message and print the reply")
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "Print the relay response as JSON (with --message)")
}
