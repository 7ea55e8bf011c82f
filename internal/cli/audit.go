package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/audit"
)

var (
	tailLines   int
	tailKind    string
	tailPackage string
	tailFormat  string
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent entries to show")
	auditTailCmd.Flags().StringVar(&tailKind, "kind", "", "Only show entries of this kind (appop|role)")
	auditTailCmd.Flags().StringVar(&tailPackage, "package", "", "Only show entries for this package")
	auditTailCmd.Flags().StringVarP(&tailFormat, "format", "f", "text", "Output format (text|json)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Journal operations",
	Long:  "Commands for verifying and inspecting the hash-chained journal of app-op and role changes.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify hash chain integrity of the journal",
	Long: "Walks the JSONL journal and validates that every entry's prev_hash\n" +
		"matches the SHA-256 of the previous entry. Defaults to the configured journal.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail [path]",
	Short: "Show recent journal entries",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditTail,
}

func journalArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return resolveJournal()
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	path, err := journalArg(args)
	if err != nil {
		return err
	}
	result := audit.Verify(path)
	if !result.Valid {
		return fmt.Errorf("journal %s failed at line %d: %s", path, result.ErrorLine, result.Error)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d entries verified\n", result.Lines)
	return nil
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	path, err := journalArg(args)
	if err != nil {
		return err
	}

	var entries []audit.Entry
	if tailKind == "" && tailPackage == "" {
		entries, err = audit.Tail(path, tailLines)
	} else {
		entries, err = audit.Read(path, audit.Filter{Kind: tailKind, Package: tailPackage})
		if tailLines >= 0 && len(entries) > tailLines {
			entries = entries[len(entries)-tailLines:]
		}
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch tailFormat {
	case "json":
		for _, e := range entries {
			out, err := json.Marshal(e)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(out))
		}
	case "text":
		fmt.Fprint(w, audit.FormatText(entries))
	default:
		return fmt.Errorf("unknown format %q: use text or json", tailFormat)
	}
	return nil
}
