package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
)

// documentSchemaVersion is written into every JSON column and checked on read
const documentSchemaVersion = 1

type itemsDocument struct {
	SchemaVersion int               `json:"schema_version"`
	ItemIDs       []string          `json:"item_ids,omitempty"`
	Items         []entity.LineItem `json:"items"`
}

type historyDocument struct {
	SchemaVersion int                   `json:"schema_version"`
	Entries       []entity.HistoryEntry `json:"entries"`
}

func encodeItems(itemIDs []string, items []entity.LineItem) (string, error) {
	if items == nil {
		items = []entity.LineItem{}
	}
	raw, err := json.Marshal(itemsDocument{
		SchemaVersion: documentSchemaVersion,
		ItemIDs:       itemIDs,
		Items:         items,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode items: %w", err)
	}
	return string(raw), nil
}

func decodeItems(raw string) (*itemsDocument, error) {
	var doc itemsDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, corrupt("items", err.Error())
	}
	if doc.SchemaVersion != documentSchemaVersion {
		return nil, corrupt("items", fmt.Sprintf("unsupported schema_version %d", doc.SchemaVersion))
	}
	if doc.Items == nil {
		return nil, corrupt("items", "missing items array")
	}
	for i, item := range doc.Items {
		if item.ID == "" {
			return nil, corrupt("items", fmt.Sprintf("item %d has no id", i))
		}
	}
	return &doc, nil
}

func encodeHistory(entries []entity.HistoryEntry) (string, error) {
	if entries == nil {
		entries = []entity.HistoryEntry{}
	}
	raw, err := json.Marshal(historyDocument{
		SchemaVersion: documentSchemaVersion,
		Entries:       entries,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode history: %w", err)
	}
	return string(raw), nil
}

func decodeHistory(raw string) ([]entity.HistoryEntry, error) {
	var doc historyDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, corrupt("history", err.Error())
	}
	if doc.SchemaVersion != documentSchemaVersion {
		return nil, corrupt("history", fmt.Sprintf("unsupported schema_version %d", doc.SchemaVersion))
	}
	if doc.Entries == nil {
		return nil, corrupt("history", "missing entries array")
	}
	for i, entry := range doc.Entries {
		if entry.Action == "" || entry.Timestamp.IsZero() {
			return nil, corrupt("history", fmt.Sprintf("entry %d lacks action or timestamp", i))
		}
	}
	return doc.Entries, nil
}

func corrupt(column, reason string) error {
	return fmt.Errorf("%w: %s: %s", port.ErrCorruptRecord, column, reason)
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}
