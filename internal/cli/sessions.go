package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSessionsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage chat sessions",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List chat sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.wire(cmd)
			if err != nil {
				return err
			}
			sessions, err := a.svc.History(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sessions)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tUPDATED\tLAST MESSAGE")
			for _, s := range sessions {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Title, s.UpdateTime, s.LastMessage)
			}
			return w.Flush()
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	create := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a chat session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.wire(cmd)
			if err != nil {
				return err
			}
			title := ""
			if len(args) == 1 {
				title = args[0]
			}
			id, err := a.svc.CreateSession(cmd.Context(), title)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a chat session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := rt.wire(cmd)
			if err != nil {
				return err
			}
			return a.svc.RenameSession(cmd.Context(), id, args[1])
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chat session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := rt.wire(cmd)
			if err != nil {
				return err
			}
			return a.svc.DeleteSession(cmd.Context(), id)
		},
	}

	cmd.AddCommand(list, create, rename, del)
	return cmd
}

type messagesFlags struct {
	page int
	size int
}

func newMessagesCommand(rt *runtime) *cobra.Command {
	flags := &messagesFlags{}

	cmd := &cobra.Command{
		Use:   "messages <chatId>",
		Short: "Show a page of a session's messages, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.wire(cmd)
			if err != nil {
				return err
			}
			page, err := a.svc.MessagesPage(cmd.Context(), args[0], flags.page, flags.size)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range page.Records {
				fmt.Fprintf(out, "[%s] %s: %s\n", m.CreateTime, m.SenderType, m.Contents)
			}
			_, err = fmt.Fprintf(out, "-- page %d, %d of %d messages\n", page.PageNum, len(page.Records), page.Total)
			return err
		},
	}

	cmd.Flags().IntVar(&flags.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&flags.size, "size", 10, "Page size")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid session id %q", s)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
