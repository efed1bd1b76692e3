package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:3000"

type rootOptions struct {
	server  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "relayctl",
		Short:        "Command-line client for the gemini relay",
		SilenceUsage: true,
	}
	root.SetErrPrefix("relayctl:")

	server := os.Getenv("RELAY_SERVER")
	if strings.TrimSpace(server) == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&opts.server, "server", server, "relay base URL (env RELAY_SERVER)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "overall request timeout (0 waits indefinitely)")

	root.AddCommand(newTextCmd(opts), newChatCmd(opts))
	for _, kind := range []string{"image", "document", "audio"} {
		root.AddCommand(newFileCmd(opts, kind))
	}
	return root
}

func (o *rootOptions) client() *Client {
	return NewClient(o.server, o.timeout)
}
