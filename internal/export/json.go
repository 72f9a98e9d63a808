package export

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sadopc/soulsync/internal/journal"
)

// BackupPrefix starts every backup filename.
const BackupPrefix = "soulsync_backup_"

// MarshalAppData renders the aggregate exactly as it is persisted, indented
// by two spaces.
func MarshalAppData(data journal.AppData) ([]byte, error) {
	if data.Entries == nil {
		data.Entries = []journal.Entry{}
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

// BackupFilename embeds now as a filesystem-safe timestamp.
func BackupFilename(now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return BackupPrefix + ts + ".json"
}

func ToJSON(data journal.AppData, path string) error {
	b, err := MarshalAppData(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
