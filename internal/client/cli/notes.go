package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *App) notesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage your notes",
		Long: `Note commands. All of them require a session (see login).

Examples:
  notekeeper notes list
  notekeeper notes add --title "Groceries" --content "milk"
  notekeeper notes show <id>
  notekeeper notes edit <id> --title "Groceries (weekend)"
  notekeeper notes rm <id>`,
	}
	cmd.AddCommand(
		a.notesListCommand(),
		a.notesAddCommand(),
		a.notesShowCommand(),
		a.notesEditCommand(),
		a.notesRemoveCommand(),
	)
	return cmd
}

func (a *App) notesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := a.client.ListNotes(cmd.Context())
			if err != nil {
				return sessionHint(err)
			}
			if len(notes) == 0 {
				fmt.Fprintln(a.out, "No notes yet.")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUPDATED\tTITLE")
			for _, n := range notes {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", n.ID, n.UpdatedAt.Local().Format(time.DateTime), n.Title)
			}
			return tw.Flush()
		},
	}
}

func (a *App) notesAddCommand() *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if title, err = a.valueOrPrompt(title, "Title"); err != nil {
				return err
			}
			if content == "" {
				if content, err = GetMultiline(a.in, "Content", a.out); err != nil {
					return err
				}
			}
			id, err := a.client.CreateNote(cmd.Context(), title, content)
			if err != nil {
				return sessionHint(err)
			}
			fmt.Fprintf(a.out, "Note created: %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&content, "content", "", "note content")
	return cmd
}

func (a *App) notesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.client.GetNote(cmd.Context(), args[0])
			if err != nil {
				return sessionHint(err)
			}
			fmt.Fprintf(a.out, "%s\n\n%s\n\ncreated %s, updated %s\n",
				n.Title, n.Content,
				n.CreatedAt.Local().Format(time.DateTime), n.UpdatedAt.Local().Format(time.DateTime))
			return nil
		},
	}
}

func (a *App) notesEditCommand() *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a note's title and/or content",
		Long:  "Fields not given as flags keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if title == "" || content == "" {
				cur, err := a.client.GetNote(ctx, args[0])
				if err != nil {
					return sessionHint(err)
				}
				if title == "" {
					title = cur.Title
				}
				if content == "" {
					content = cur.Content
				}
			}
			if err := a.client.UpdateNote(ctx, args[0], title, content); err != nil {
				return sessionHint(err)
			}
			fmt.Fprintln(a.out, "Note updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new content")
	return cmd
}

func (a *App) notesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteNote(cmd.Context(), args[0]); err != nil {
				return sessionHint(err)
			}
			fmt.Fprintln(a.out, "Note deleted.")
			return nil
		},
	}
}
