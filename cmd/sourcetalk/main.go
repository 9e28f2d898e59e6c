// Command sourcetalk browses the catalog, material and supplier listings of
// a content API and relays chat messages to the assistant webhook.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sourcetalk/internal/config"
	"sourcetalk/internal/content"
	"sourcetalk/internal/logging"
	"sourcetalk/internal/relay"
)

// interactiveAnnotation marks commands that own the terminal. They log only
// when a log file is configured.
const interactiveAnnotation = "interactive"

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration

	// cfg is loaded once per invocation by the root command.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sourcetalk",
	Short: "SourceTalk - catalog, material and supplier lookup with an assistant chat",
	Long: `SourceTalk reads product catalogs, construction materials and suppliers
from a Strapi-style content API and relays questions to an assistant webhook.

Use the listing commands for one-shot queries, browse for the interactive
listing, chat for the assistant and serve to expose both as a JSON backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Logging.Level = "debug"
		}
		cfg = loaded

		if cmd.Annotations[interactiveAnnotation] == "true" && cfg.Logging.File == "" {
			logging.Reset()
			return nil
		}
		if err := logging.Initialize(cfg.LoggingOptions()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.BootDebug("config loaded from %s", configPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Operation timeout (default: from config)")

	rootCmd.AddCommand(
		newListCmd(listCatalogs),
		newListCmd(listMaterials),
		newListCmd(listSuppliers),
		browseCmd,
		chatCmd,
		overviewCmd,
		serveCmd,
		configCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// withTimeout bounds ctx by --timeout, or by fallback when the flag is unset.
func withTimeout(ctx context.Context, fallback time.Duration) (context.Context, context.CancelFunc) {
	d := timeout
	if d <= 0 {
		d = fallback
	}
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func newContentClient() (*content.Client, error) {
	if err := cfg.ValidateContent(); err != nil {
		return nil, err
	}
	return content.NewClient(content.Config{
		BaseURL: cfg.Content.BaseURL,
		Token:   cfg.Content.Token,
		Timeout: cfg.GetContentTimeout(),
	}), nil
}

func newRelayClient() (*relay.Client, error) {
	if err := cfg.ValidateRelay(); err != nil {
		return nil, err
	}
	return relay.NewClient(relay.Config{
		WebhookURL: cfg.Relay.WebhookURL,
		Timeout:    cfg.GetRelayTimeout(),
	}), nil
}
