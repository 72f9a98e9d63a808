package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/soulsync/internal/journal"
)

// ToCSV writes a flat, one-row-per-entry view for spreadsheets. It is not
// importable.
func ToCSV(entries []journal.Entry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Date", "Mood", "Mood Label", "Mood Description", "Tags", "Mood Tags", "Content"}); err != nil {
		return err
	}

	for _, e := range entries {
		mood, label := "", ""
		if e.Mood != nil {
			mood = strconv.Itoa(int(*e.Mood))
			label = e.Mood.Label()
		}
		row := []string{
			e.ID,
			e.EntryDate.String(),
			mood,
			label,
			e.MoodDescription,
			e.Tags.String(),
			e.MoodTags.String(),
			e.Content,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
