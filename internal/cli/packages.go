package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

var (
	packagesUser   int
	packagesFormat string
)

func init() {
	packagesCmd.Flags().IntVarP(&packagesUser, "user", "u", 0, "User id")
	packagesCmd.Flags().StringVarP(&packagesFormat, "format", "f", "text", "Output format (text|json)")
	rootCmd.AddCommand(packagesCmd)
}

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List packages installed for a user",
	RunE:  runPackages,
}

func runPackages(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	pkgs := e.Store.Packages(model.UserID(packagesUser))
	w := cmd.OutOrStdout()

	switch packagesFormat {
	case "json":
		if pkgs == nil {
			pkgs = []model.PackageInfo{}
		}
		out, err := json.MarshalIndent(pkgs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	case "text":
		if len(pkgs) == 0 {
			fmt.Fprintf(w, "No packages for user %d.\n", packagesUser)
			return nil
		}
		fmt.Fprintf(w, "%-40s %-6s %-8s %s\n", "PACKAGE", "SDK", "INSTANT", "PERMISSIONS")
		for _, p := range pkgs {
			fmt.Fprintf(w, "%-40s %-6d %-8t %d\n",
				truncate(p.Name, 40), p.TargetSDK, p.InstantApp, len(p.RequestedPermissions))
		}
	default:
		return fmt.Errorf("unknown format %q: use text or json", packagesFormat)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
