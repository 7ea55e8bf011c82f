package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/catalog"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/config"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config and sample catalog to ~/.permctl",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := config.Dir()
	if dir == "" {
		return fmt.Errorf("cannot determine home directory")
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(dir, "config.yaml"), config.DefaultConfigYAML()},
		{filepath.Join(dir, "catalog.yaml"), catalog.SampleYAML()},
	}

	var created []string
	for _, f := range files {
		wrote, err := writeIfMissing(f.path, f.content)
		if err != nil {
			return err
		}
		if wrote {
			created = append(created, f.path)
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "permctl init complete.")
	fmt.Fprintln(w)
	if len(created) > 0 {
		fmt.Fprintln(w, "Created:")
		for _, path := range created {
			fmt.Fprintf(w, "  %s\n", path)
		}
	} else {
		fmt.Fprintln(w, "All files already exist (use --force to overwrite).")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Try:")
	fmt.Fprintln(w, "  permctl groups com.android.dialer")
	fmt.Fprintln(w, "  permctl role status android.app.role.DIALER")
	return nil
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
