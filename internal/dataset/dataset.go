// Package dataset reads and writes instruction-tuning datasets: JSON arrays
// of message-based records. It also extracts the per-record conversation
// text the similarity pipeline consumes.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/manuvamsi/IntentMatch/internal/filelock"
)

// Message is one turn in a record's conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Record is one dataset entry. The raw JSON is retained so fields beyond
// "messages" survive a deduplicated rewrite untouched.
type Record struct {
	Messages []Message
	raw      json.RawMessage
}

// Conversation is the extracted text of one record, keyed by its index in
// the dataset.
type Conversation struct {
	Index     int
	User      string
	Assistant string
	Full      string
}

// Load reads a JSON dataset file.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	var rawRecords []json.RawMessage
	if err := json.Unmarshal(data, &rawRecords); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	records := make([]Record, len(rawRecords))
	for i, raw := range rawRecords {
		var entry struct {
			Messages []Message `json:"messages"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("parse dataset %s record %d: %w", path, i, err)
		}
		records[i] = Record{Messages: entry.Messages, raw: raw}
	}
	return records, nil
}

// ExtractConversations joins each record's user and assistant turns into
// the combined text used for pairwise comparison.
func ExtractConversations(records []Record) []Conversation {
	conversations := make([]Conversation, len(records))
	for i, record := range records {
		var userParts, assistantParts []string
		for _, msg := range record.Messages {
			switch msg.Role {
			case "user":
				userParts = append(userParts, msg.Content)
			case "assistant":
				assistantParts = append(assistantParts, msg.Content)
			}
		}
		user := strings.Join(userParts, " ")
		assistant := strings.Join(assistantParts, " ")
		conversations[i] = Conversation{
			Index:     i,
			User:      user,
			Assistant: assistant,
			Full:      user + " " + assistant,
		}
	}
	return conversations
}

// SaveDeduplicated writes a copy of the dataset with the records at the
// given indices removed, preserving record order and any fields the loader
// did not model. The write is atomic and lock-guarded.
func SaveDeduplicated(path string, records []Record, remove map[int]bool) error {
	kept := make([]json.RawMessage, 0, len(records))
	for i, record := range records {
		if remove[i] {
			continue
		}
		kept = append(kept, record.raw)
	}

	return filelock.WriteJSONAtomic(path, kept)
}
