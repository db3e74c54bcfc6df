// Package cli implements the chatclient command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/chatclient/internal/config"
)

const version = "0.1.0"

// Execute runs the CLI
func Execute() error {
	return NewRootCommand().Execute()
}

// runtime is shared by all subcommands; it is populated before a
// subcommand runs and closed after.
type runtime struct {
	configFile string
	cfg        *config.Config
	app        *app
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	cmd := &cobra.Command{
		Use:   "chatclient",
		Short: "Streaming chat client with a built-in mock backend",
		Long: `chatclient talks to the assistant chat API.

In development (CHATCLIENT_ENV=development, the default) API calls are
answered by the mock layer and chat replies are replayed from a scripted
transcript. In production every call goes to CHATCLIENT_BASE_URL.

Examples:
  chatclient chat "hello" --session 1
  chatclient sessions list
  chatclient messages 1 --page 1 --size 10
  chatclient serve-mock --port 8080`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(rt.configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			rt.cfg = cfg
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if rt.app == nil {
				return nil
			}
			err := rt.app.Close()
			rt.app = nil
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&rt.configFile, "config", "", "YAML config file overlaying CHATCLIENT_* environment settings")

	cmd.AddCommand(
		newChatCommand(rt),
		newSessionsCommand(rt),
		newMessagesCommand(rt),
		newLoginCommand(rt),
		newRegisterCommand(rt),
		newLogoutCommand(rt),
		newAdminCommand(rt),
		newServeMockCommand(rt),
		newVersionCommand(),
	)
	return cmd
}

// wire builds the application components on first use.
func (rt *runtime) wire(cmd *cobra.Command) (*app, error) {
	if rt.app != nil {
		return rt.app, nil
	}
	a, err := newApp(cmd.Context(), rt.cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	rt.app = a
	return a, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "chatclient version "+version)
			return err
		},
	}
}
