// Package mcp exposes permission groups and role operations as MCP tools.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/engine"
)

// Server wraps the MCP SDK server around an engine.
type Server struct {
	mcpServer *mcpsdk.Server
	engine    *engine.Engine
}

// New creates an MCP server serving e. The caller owns e.
func New(e *engine.Engine, version string) *Server {
	s := &Server{engine: e}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "permctl",
			Version: version,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves on stdio. Blocks until ctx is cancelled or the client leaves.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "permctl_groups",
		Description: "Group the permissions requested by an installed package the way the permission UI shows them.",
	}, s.handleGroups)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "permctl_role_status",
		Description: "Show availability, visibility, holders and candidates of a role for a user.",
	}, s.handleRoleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "permctl_role_assign",
		Description: "Make a package the holder of a role, revoking previous holders of exclusive roles.",
	}, s.handleRoleAssign)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "permctl_role_remove",
		Description: "Remove a package from the holders of a role.",
	}, s.handleRoleRemove)
}
