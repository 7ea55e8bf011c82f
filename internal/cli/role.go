package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/role"
)

var (
	roleUser   int
	roleFormat string
)

func init() {
	rootCmd.AddCommand(roleCmd)
	roleCmd.PersistentFlags().IntVarP(&roleUser, "user", "u", 0, "User id")
	roleCmd.AddCommand(roleListCmd)
	roleCmd.AddCommand(roleStatusCmd)
	roleCmd.AddCommand(roleAssignCmd)
	roleCmd.AddCommand(roleRemoveCmd)
	roleCmd.AddCommand(roleClearCmd)
	roleStatusCmd.Flags().StringVarP(&roleFormat, "format", "f", "text", "Output format (text|json)")
}

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Role holder operations",
	Long:  "Inspect roles and change their holders. Every change is written to the journal.",
}

var roleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured roles",
	Args:  cobra.NoArgs,
	RunE:  runRoleList,
}

var roleStatusCmd = &cobra.Command{
	Use:   "status <role>",
	Short: "Show availability, holders and candidates of a role",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoleStatus,
}

var roleAssignCmd = &cobra.Command{
	Use:   "assign <role> <package>",
	Short: "Make a package hold a role",
	Long:  "Grants the role to the package. Previous holders of an exclusive role are revoked first.",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoleAssign,
}

var roleRemoveCmd = &cobra.Command{
	Use:   "remove <role> <package>",
	Short: "Revoke a role from a package",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoleRemove,
}

var roleClearCmd = &cobra.Command{
	Use:   "clear <role>",
	Short: "Revoke a role from every holder",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoleClear,
}

func runRoleList(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	w := cmd.OutOrStdout()
	user := model.UserID(roleUser)
	reg := e.Roles.Registry()

	fmt.Fprintf(w, "%-36s %-10s %-10s %s\n", "ROLE", "AVAILABLE", "EXCLUSIVE", "HOLDERS")
	for _, name := range reg.Names() {
		st, err := e.Roles.Status(name, user)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-36s %-10t %-10t %s\n", name, st.Available, st.Exclusive, joinOrDash(st.Holders))
	}
	return nil
}

func runRoleStatus(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.Roles.Status(args[0], model.UserID(roleUser))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch roleFormat {
	case "json":
		out, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	case "text":
		writeRoleStatus(w, st)
	default:
		return fmt.Errorf("unknown format %q: use text or json", roleFormat)
	}
	return nil
}

func writeRoleStatus(w io.Writer, st role.Status) {
	fmt.Fprintf(w, "Role:      %s\n", st.Role)
	fmt.Fprintf(w, "User:      %d\n", st.User)
	fmt.Fprintf(w, "Available: %t\n", st.Available)
	fmt.Fprintf(w, "Visible:   %t\n", st.Visible)
	fmt.Fprintf(w, "Exclusive: %t\n", st.Exclusive)
	fmt.Fprintf(w, "Holders:   %s\n", joinOrDash(st.Holders))
	if st.Fallback != "" {
		fmt.Fprintf(w, "Fallback:  %s\n", st.Fallback)
	}
	if len(st.Candidates) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Candidates:")
	for _, c := range st.Candidates {
		mark := " "
		if c.Holder {
			mark = "*"
		}
		line := fmt.Sprintf("  %s %s", mark, c.Package)
		if c.Summary != "" {
			line += "  (" + c.Summary + ")"
		}
		fmt.Fprintln(w, line)
		if c.Confirmation != "" {
			fmt.Fprintf(w, "      %s\n", c.Confirmation)
		}
	}
}

func runRoleAssign(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Roles.Assign(args[0], args[1], model.UserID(roleUser)); err != nil {
		return err
	}
	return printHolders(cmd.OutOrStdout(), e.Roles, args[0])
}

func runRoleRemove(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Roles.Remove(args[0], args[1], model.UserID(roleUser)); err != nil {
		return err
	}
	return printHolders(cmd.OutOrStdout(), e.Roles, args[0])
}

func runRoleClear(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Roles.Clear(args[0], model.UserID(roleUser)); err != nil {
		return err
	}
	return printHolders(cmd.OutOrStdout(), e.Roles, args[0])
}

func printHolders(w io.Writer, roles *role.Manager, name string) error {
	holders, err := roles.Holders(name, model.UserID(roleUser))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s holders for user %d: %s\n", name, roleUser, joinOrDash(holders))
	return nil
}

func joinOrDash(list []string) string {
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, ", ")
}
