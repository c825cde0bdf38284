package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cortex-refactor/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server exposing the refactoring tools",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
run the refactoring engine on buffers they hold.

The MCP server:
- Exposes resolve, members, navigate, move, sort and extract as tools
- Takes the full buffer text with every call and keeps no state
- Communicates via stdio (standard MCP transport)

Example:
  cortex-refactor mcp`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()

	matcher, err := cfg.NewDialectMatcher()
	if err != nil {
		return fmt.Errorf("failed to build dialect matcher: %w", err)
	}

	server, err := mcp.NewServer(newEngine(), matcher, currentLogger())
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Serve (blocks until shutdown)
	if err := server.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
