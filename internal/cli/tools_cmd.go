package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/soyeahso/reactor/internal/agent"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools available to the agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(context.Background(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			printTools(cmd.OutOrStdout(), a.tools.Describe())
			return nil
		},
	}
}

func printTools(out io.Writer, defs []agent.ToolDescriptor) {
	if len(defs) == 0 {
		fmt.Fprintln(out, warningStyle.Render("No tools configured. Add API keys under tools: in the config file."))
		return
	}
	for _, d := range defs {
		fmt.Fprintln(out, toolNameStyle.Render(d.Signature()))
		fmt.Fprintln(out, "  "+dimStyle.Render(d.Description))
	}
}
