package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTextCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "text <prompt>",
		Short: "Generate text from a prompt (/generate-text)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.client().GenerateText(cmd.Context(), strings.Join(args, " "))
			return printResult(cmd, out, err)
		},
	}
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a chat message (/api/chat)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.client().Chat(cmd.Context(), strings.Join(args, " "))
			return printResult(cmd, out, err)
		},
	}
}

func newFileCmd(opts *rootOptions, kind string) *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   kind + " <file>",
		Short: fmt.Sprintf("Describe an uploaded %s (/generate-from-%s)", kind, kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.client().GenerateFromFile(cmd.Context(), kind, args[0], prompt)
			return printResult(cmd, out, err)
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "prompt sent with the file (server default when empty)")
	return cmd
}

func printResult(cmd *cobra.Command, out string, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
