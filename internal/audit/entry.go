package audit

// Kinds of journal entries.
const (
	KindAppOp = "appop"
	KindRole  = "role"
)

// Entry is one line in the hash-chained JSONL journal.
// Only fixed struct fields so json.Marshal output, and therefore the
// chain hash, is deterministic.
type Entry struct {
	ID         string `json:"id"`
	Timestamp  string `json:"ts"`
	Kind       string `json:"kind"`
	User       int    `json:"user"`
	Package    string `json:"package"`
	Subject    string `json:"subject"`
	Value      string `json:"value"`
	Previous   string `json:"previous,omitempty"`
	ConfigHash string `json:"config_hash,omitempty"`
	PrevHash   string `json:"prev_hash"`
}
