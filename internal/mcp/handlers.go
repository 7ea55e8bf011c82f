package mcp

import (
	"context"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/role"
)

// GroupsInput defines parameters for permctl_groups.
type GroupsInput struct {
	Package string `json:"package" jsonschema:"package name"`
	User    int    `json:"user,omitempty" jsonschema:"user id (default 0)"`
}

// Group is one permission group in request order.
type Group struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// GroupsOutput lists the groups of a package.
type GroupsOutput struct {
	Package string  `json:"package"`
	User    int     `json:"user"`
	Present bool    `json:"present"`
	Groups  []Group `json:"groups,omitempty"`
}

// RoleInput names a role for a user.
type RoleInput struct {
	Role string `json:"role" jsonschema:"role name, e.g. android.app.role.DIALER"`
	User int    `json:"user,omitempty" jsonschema:"user id (default 0)"`
}

// Candidate is an installed package as offered for a role.
type Candidate struct {
	Package      string `json:"package"`
	Summary      string `json:"summary,omitempty"`
	Confirmation string `json:"confirmation,omitempty"`
	Holder       bool   `json:"holder"`
}

// RoleStatusOutput describes a role for one user.
type RoleStatusOutput struct {
	Role       string      `json:"role"`
	User       int         `json:"user"`
	Available  bool        `json:"available"`
	Visible    bool        `json:"visible"`
	Exclusive  bool        `json:"exclusive"`
	Holders    []string    `json:"holders"`
	Fallback   string      `json:"fallback,omitempty"`
	Candidates []Candidate `json:"candidates"`
	Error      string      `json:"error,omitempty"`
}

// RoleChangeInput names a role, package and user.
type RoleChangeInput struct {
	Role    string `json:"role" jsonschema:"role name"`
	Package string `json:"package" jsonschema:"package name"`
	User    int    `json:"user,omitempty" jsonschema:"user id (default 0)"`
}

// RoleChangeOutput reports the holders after a change.
type RoleChangeOutput struct {
	Role    string   `json:"role"`
	Holders []string `json:"holders"`
	Error   string   `json:"error,omitempty"`
}

func (s *Server) handleGroups(ctx context.Context, req *mcpsdk.CallToolRequest, input GroupsInput) (*mcpsdk.CallToolResult, GroupsOutput, error) {
	out := GroupsOutput{Package: input.Package, User: input.User}

	groups, ok := s.engine.Groups(input.Package, model.UserID(input.User))
	if !ok {
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	out.Present = true
	for _, name := range groups.Names() {
		out.Groups = append(out.Groups, Group{Name: name, Permissions: groups[name]})
	}
	return nil, out, nil
}

func (s *Server) handleRoleStatus(ctx context.Context, req *mcpsdk.CallToolRequest, input RoleInput) (*mcpsdk.CallToolResult, RoleStatusOutput, error) {
	st, err := s.engine.Roles.Status(input.Role, model.UserID(input.User))
	if err != nil {
		if errors.Is(err, role.ErrUnknownRole) {
			out := RoleStatusOutput{Role: input.Role, User: input.User, Holders: []string{}, Candidates: []Candidate{}, Error: err.Error()}
			return &mcpsdk.CallToolResult{IsError: true}, out, nil
		}
		return nil, RoleStatusOutput{}, err
	}

	out := RoleStatusOutput{
		Role:       st.Role,
		User:       int(st.User),
		Available:  st.Available,
		Visible:    st.Visible,
		Exclusive:  st.Exclusive,
		Holders:    append([]string{}, st.Holders...),
		Fallback:   st.Fallback,
		Candidates: make([]Candidate, 0, len(st.Candidates)),
	}
	for _, c := range st.Candidates {
		out.Candidates = append(out.Candidates, Candidate{
			Package:      c.Package,
			Summary:      c.Summary,
			Confirmation: c.Confirmation,
			Holder:       c.Holder,
		})
	}
	return nil, out, nil
}

func (s *Server) handleRoleAssign(ctx context.Context, req *mcpsdk.CallToolRequest, input RoleChangeInput) (*mcpsdk.CallToolResult, RoleChangeOutput, error) {
	err := s.engine.Roles.Assign(input.Role, input.Package, model.UserID(input.User))
	return s.roleChangeResult(input, err)
}

func (s *Server) handleRoleRemove(ctx context.Context, req *mcpsdk.CallToolRequest, input RoleChangeInput) (*mcpsdk.CallToolResult, RoleChangeOutput, error) {
	err := s.engine.Roles.Remove(input.Role, input.Package, model.UserID(input.User))
	return s.roleChangeResult(input, err)
}

// roleChangeResult turns policy refusals into error results and passes
// other failures through.
func (s *Server) roleChangeResult(input RoleChangeInput, err error) (*mcpsdk.CallToolResult, RoleChangeOutput, error) {
	out := RoleChangeOutput{Role: input.Role, Holders: []string{}}
	if err != nil {
		if errors.Is(err, role.ErrUnknownRole) || errors.Is(err, role.ErrRoleUnavailable) ||
			errors.Is(err, role.ErrPackageNotFound) || errors.Is(err, role.ErrNotHolder) {
			out.Error = err.Error()
			return &mcpsdk.CallToolResult{IsError: true}, out, nil
		}
		return nil, RoleChangeOutput{}, err
	}

	holders, err := s.engine.Roles.Holders(input.Role, model.UserID(input.User))
	if err != nil {
		return nil, RoleChangeOutput{}, err
	}
	out.Holders = append([]string{}, holders...)
	return nil, out, nil
}
