package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/appops"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

var appopsUser int

func init() {
	rootCmd.AddCommand(appopsCmd)
	appopsCmd.PersistentFlags().IntVarP(&appopsUser, "user", "u", 0, "User id")
	appopsCmd.AddCommand(appopsListCmd)
	appopsCmd.AddCommand(appopsGetCmd)
	appopsCmd.AddCommand(appopsSetCmd)
}

var appopsCmd = &cobra.Command{
	Use:   "appops",
	Short: "App-op mode operations",
	Long:  "Read and change app-op modes. Changes are journaled and replayed on the next start.",
}

var appopsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List explicitly set app-op modes",
	Args:  cobra.NoArgs,
	RunE:  runAppopsList,
}

var appopsGetCmd = &cobra.Command{
	Use:   "get <package> <op>",
	Short: "Show the mode of an app-op for a package",
	Args:  cobra.ExactArgs(2),
	RunE:  runAppopsGet,
}

var appopsSetCmd = &cobra.Command{
	Use:   "set <package> <op> <mode>",
	Short: "Set the mode of an app-op (allowed|ignored|errored|default|foreground)",
	Args:  cobra.ExactArgs(3),
	RunE:  runAppopsSet,
}

func runAppopsList(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	w := cmd.OutOrStdout()
	settings := e.AppOps.Settings()
	if len(settings) == 0 {
		fmt.Fprintln(w, "No app-op modes set.")
		return nil
	}
	fmt.Fprintf(w, "%-6s %-40s %-36s %s\n", "USER", "PACKAGE", "OP", "MODE")
	for _, s := range settings {
		fmt.Fprintf(w, "%-6d %-40s %-36s %s\n", s.User, truncate(s.Package, 40), s.Op, s.Mode)
	}
	return nil
}

func runAppopsGet(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	mode := e.AppOps.Mode(model.UserID(appopsUser), args[0], args[1])
	fmt.Fprintln(cmd.OutOrStdout(), mode)
	return nil
}

func runAppopsSet(cmd *cobra.Command, args []string) error {
	mode, err := appops.ParseMode(args[2])
	if err != nil {
		return err
	}

	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	changed, err := e.AppOps.SetMode(model.UserID(appopsUser), args[0], args[1], mode)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if !changed {
		fmt.Fprintf(w, "%s already %s for %s\n", args[1], mode, args[0])
		return nil
	}
	fmt.Fprintf(w, "%s set to %s for %s\n", args[1], mode, args[0])
	return nil
}
