package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/stream"
)

type chatFlags struct {
	sessionID string
	online    bool
}

func newChatCommand(rt *runtime) *cobra.Command {
	flags := &chatFlags{}

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a message and stream the reply",
		Long:  `Send a message to a chat session and print the reply as it arrives. Ctrl-C stops the reply.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, rt, flags, args[0])
		},
	}

	cmd.Flags().StringVarP(&flags.sessionID, "session", "s", "1", "Session to send the message to")
	cmd.Flags().BoolVar(&flags.online, "online", false, "Use ONLINE mode instead of LOCAL")
	return cmd
}

func runChat(cmd *cobra.Command, rt *runtime, flags *chatFlags, message string) error {
	a, err := rt.wire(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	var streamErr error
	h, err := a.svc.SendMessage(context.WithoutCancel(ctx), stream.Params{
		Message:   message,
		SessionID: flags.sessionID,
		Mode:      domain.ModeFor(flags.online),
		OnChunk: func(chunk string) {
			fmt.Fprint(out, chunk)
		},
		OnFinish: func() {
			fmt.Fprintln(out)
		},
		OnError: func(err error) {
			streamErr = err
		},
	})
	if err != nil {
		return err
	}

	select {
	case <-h.Done():
	case <-ctx.Done():
		h.Cancel()
		<-h.Done()
		fmt.Fprintln(out)
		fmt.Fprintln(cmd.ErrOrStderr(), "stopped")
		return nil
	}
	return streamErr
}
