package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	permmcp "github.com/kdrag0n/platform-packages-modules-Permission/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server over stdio",
	Long: "Runs permctl as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes tools: permctl_groups, permctl_role_status, permctl_role_assign, permctl_role_remove.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(os.Stderr, "permctl MCP server running on stdio")
	return permmcp.New(e, version).Run(ctx)
}
