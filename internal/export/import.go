package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/sadopc/soulsync/internal/journal"
)

// MediaType is the only media type Decode accepts.
const MediaType = "application/json"

// MaxImportSize caps how much of an import document is read.
const MaxImportSize = 32 << 20

var (
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrMalformed        = errors.New("malformed json")
	ErrInvalidStructure = errors.New("invalid backup structure")
)

// ImportError carries a message fit to show the user. It unwraps to one of
// the sentinel errors above.
type ImportError struct {
	Kind    error
	Message string
	Err     error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ImportError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Document is a decoded backup, ready for the repository's import.
type Document = journal.ImportData

// Decode parses a backup document. Only the top-level shape is checked;
// entries and settings are read field by field and a mistyped field is
// left at its zero value.
func Decode(mediaType string, r io.Reader) (Document, error) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil || mt != MediaType {
		return Document{}, &ImportError{Kind: ErrUnsupportedType, Message: "Invalid file type. Please select a JSON file."}
	}

	raw, err := io.ReadAll(io.LimitReader(r, MaxImportSize))
	if err != nil {
		return Document{}, fmt.Errorf("read import: %w", err)
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Document{}, invalid("The file must contain a JSON object.")
		}
		return Document{}, &ImportError{Kind: ErrMalformed, Message: "The file is not valid JSON.", Err: err}
	}
	if root == nil {
		return Document{}, invalid("The file must contain a JSON object.")
	}

	entries, ok := root["entries"]
	if !ok || firstByte(entries) != '[' {
		return Document{}, invalid("Invalid data structure: 'entries' must be an array.")
	}
	settings, ok := root["settings"]
	if !ok || firstByte(settings) != '{' {
		return Document{}, invalid("Invalid data structure: 'settings' must be an object.")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(entries, &items); err != nil {
		return Document{}, &ImportError{Kind: ErrMalformed, Message: "Entries could not be read.", Err: err}
	}
	doc := Document{Entries: make([]journal.Entry, 0, len(items))}
	for _, item := range items {
		doc.Entries = append(doc.Entries, decodeEntry(item))
	}
	if err := json.Unmarshal(settings, &doc.Settings); err != nil {
		return Document{}, &ImportError{Kind: ErrMalformed, Message: "Settings could not be read.", Err: err}
	}
	return doc, nil
}

// ImportFile decodes the backup at path, deriving its media type from the
// file extension.
func ImportFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	return Decode(mime.TypeByExtension(filepath.Ext(path)), f)
}

// decodeEntry reads each known field on its own. A field of the wrong type,
// a null, or an item that is not an object, yields the zero value.
func decodeEntry(raw json.RawMessage) journal.Entry {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return journal.Entry{}
	}
	field := func(name string, v any) bool {
		b, ok := obj[name]
		return ok && firstByte(b) != 'n' && json.Unmarshal(b, v) == nil
	}

	var e journal.Entry
	field("id", &e.ID)
	field("entryDate", &e.EntryDate)
	field("createdAt", &e.CreatedAt)
	field("updatedAt", &e.UpdatedAt)
	field("content", &e.Content)
	field("tags", &e.Tags)
	field("moodDescription", &e.MoodDescription)
	field("moodTags", &e.MoodTags)
	var mood journal.MoodLevel
	if field("mood", &mood) {
		e.Mood = &mood
	}
	return e
}

func invalid(msg string) *ImportError {
	return &ImportError{Kind: ErrInvalidStructure, Message: msg}
}

func firstByte(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
