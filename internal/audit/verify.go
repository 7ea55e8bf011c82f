package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// VerifyResult holds the outcome of a hash chain verification.
type VerifyResult struct {
	Valid     bool   `json:"valid"`
	Lines     int    `json:"lines"`
	Error     string `json:"error,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
}

// Verify walks a journal and reports the first broken link, if any.
func Verify(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	expected := GenesisHash

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return VerifyResult{
				Error:     fmt.Sprintf("parse error: %v", err),
				ErrorLine: lineNum,
			}
		}
		if entry.PrevHash != expected {
			msg := fmt.Sprintf("hash mismatch: expected %s, got %s", expected, entry.PrevHash)
			if lineNum == 1 {
				msg = fmt.Sprintf("first entry prev_hash is %q, expected genesis hash", entry.PrevHash)
			}
			return VerifyResult{Error: msg, ErrorLine: lineNum}
		}
		expected = HashLine(line)
	}

	if err := scanner.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}

	return VerifyResult{Valid: true, Lines: lineNum}
}
