package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

const version = "0.3.0"

var versionFormat string

func init() {
	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text|json)")
	rootCmd.AddCommand(versionCmd)
}

type versionInfo struct {
	Name                  string `json:"name"`
	Version               string `json:"version"`
	Go                    string `json:"go"`
	RuntimePermissionsSDK int    `json:"runtime_permissions_sdk"`
	NormalGroup           string `json:"normal_group"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and grouping constants",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := versionInfo{
		Name:                  "permctl",
		Version:               version,
		Go:                    runtime.Version(),
		RuntimePermissionsSDK: model.RuntimePermissionsSDK,
		NormalGroup:           model.NonRuntimeNormalPerms,
	}

	w := cmd.OutOrStdout()
	switch versionFormat {
	case "json":
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	case "text":
		fmt.Fprintf(w, "%s %s (%s)\n", info.Name, info.Version, info.Go)
		fmt.Fprintf(w, "runtime permissions from SDK %d, normal permissions grouped as %s\n",
			info.RuntimePermissionsSDK, info.NormalGroup)
	default:
		return fmt.Errorf("unknown format %q: use text or json", versionFormat)
	}
	return nil
}
