package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/grouping"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

var (
	groupsUser   int
	groupsFormat string
)

func init() {
	groupsCmd.Flags().IntVarP(&groupsUser, "user", "u", 0, "User id")
	groupsCmd.Flags().StringVarP(&groupsFormat, "format", "f", "text", "Output format (text|json)")
	rootCmd.AddCommand(groupsCmd)
}

var groupsCmd = &cobra.Command{
	Use:   "groups <package>",
	Short: "Show the permission groups of an installed package",
	Long: "Groups the permissions a package requests. Dangerous permissions go under their group\n" +
		"(or their own name when they have none), normal ones under " + model.NonRuntimeNormalPerms + ".\n" +
		"Unknown, uninstalled, signature and platform-mismatched permissions are left out.",
	Args: cobra.ExactArgs(1),
	RunE: runGroups,
}

type groupView struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func runGroups(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	groups, ok := e.Groups(args[0], model.UserID(groupsUser))
	if !ok {
		return fmt.Errorf("package %s not installed for user %d", args[0], groupsUser)
	}
	return writeGroups(cmd.OutOrStdout(), groupsFormat, groups)
}

func writeGroups(w io.Writer, format string, groups grouping.Groups) error {
	switch format {
	case "json":
		views := make([]groupView, 0, len(groups))
		for _, name := range groups.Names() {
			views = append(views, groupView{Name: name, Permissions: groups[name]})
		}
		out, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	case "text":
		if len(groups) == 0 {
			fmt.Fprintln(w, "No permission groups.")
			return nil
		}
		for _, name := range groups.Names() {
			fmt.Fprintln(w, name)
			for _, perm := range groups[name] {
				fmt.Fprintf(w, "  %s\n", perm)
			}
		}
	default:
		return fmt.Errorf("unknown format %q: use text or json", format)
	}
	return nil
}
