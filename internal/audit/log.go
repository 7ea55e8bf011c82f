// Package audit is an append-only, hash-chained journal of app-op mode and
// role holder changes.
package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GenesisHash is the prev_hash for the first entry in a new journal.
const GenesisHash = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// TimestampFormat is the layout used in entry timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Log is an append-only JSONL journal. Each entry's prev_hash is the hash
// of the previous JSON line.
type Log struct {
	path       string
	file       *os.File
	prevHash   string
	configHash string
	mu         sync.Mutex
}

// Open opens (or creates) a journal for appending, recovering the chain
// tail from the last line of an existing file.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("audit: create directory: %w", err)
	}

	prevHash := GenesisHash
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		last, err := lastLine(path)
		if err != nil {
			return nil, err
		}
		if len(last) > 0 {
			prevHash = HashLine(last)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("audit: open file: %w", err)
	}

	return &Log{
		path:     path,
		file:     file,
		prevHash: prevHash,
	}, nil
}

func lastLine(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: read existing log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var last []byte
	for scanner.Scan() {
		last = append(last[:0], scanner.Bytes()...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit: scan existing log: %w", err)
	}
	return last, nil
}

// Path returns the journal file path.
func (l *Log) Path() string {
	return l.path
}

// SetConfigHash sets the config hash stamped on entries recorded from now on.
func (l *Log) SetConfigHash(hash string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.configHash = hash
}

// Record appends entry, filling ID, Timestamp and ConfigHash when empty,
// and syncs.
func (l *Log) Record(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.ConfigHash == "" {
		entry.ConfigHash = l.configHash
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}
	entry.PrevHash = l.prevHash

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit: marshal entry: %w", err)
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("audit: write entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("audit: sync: %w", err)
	}

	l.prevHash = HashLine(line)
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// HashLine returns "sha256:<hex>" of line.
func HashLine(line []byte) string {
	h := sha256.Sum256(line)
	return "sha256:" + hex.EncodeToString(h[:])
}
