package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gitsleuth-cli/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can build
queries, extract and classify snippets, and browse past findings.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead, e.g. for the MCP Inspector.

Examples:
  # Stdio mode (default)
  gitsleuth mcp serve

  # HTTP mode
  gitsleuth mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "gitsleuth": {
        "command": "/path/to/gitsleuth",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Classifier:   a.Classifier,
		WindowRadius: a.Engine.Settings.Scan.WindowRadius,
	}
	if a.Engine.Findings != nil {
		ports.Findings = a.Engine.Findings
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
