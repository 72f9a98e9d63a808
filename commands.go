package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sadopc/soulsync/internal/chat"
	"github.com/sadopc/soulsync/internal/export"
	"github.com/sadopc/soulsync/internal/journal"
	"github.com/sadopc/soulsync/internal/stats"
	"github.com/spf13/cobra"
)

// now is replaced in tests.
var now = time.Now

func (c *cli) exportCmd() *cobra.Command {
	var asCSV bool
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export the journal to JSON or CSV",
		Long: `Export the journal.

The default is a full JSON backup (entries and settings) that "soulsync import"
can restore. With --csv only the entries are written, one row each.

Examples:
  # Back up to soulsync_backup_<timestamp>.json in the current directory
  soulsync export

  # Write entries to a spreadsheet-friendly file
  soulsync export --csv entries.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := now()
			path := export.BackupFilename(t)
			if asCSV {
				path = fmt.Sprintf("soulsync-entries-%s.csv", t.Format("2006-01-02"))
			}
			if len(args) == 1 {
				path = args[0]
			}

			entries := c.repo.Entries()
			var err error
			if asCSV {
				err = export.ToCSV(entries, path)
			} else {
				err = export.ToJSON(c.repo.AppState(), path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write entries as CSV instead of a JSON backup")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the journal with a JSON backup",
		Long: `Import a JSON backup produced by "soulsync export".

All existing entries are replaced. Settings present in the file override the
current ones; missing settings fall back to their defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := export.ImportFile(args[0])
			if err != nil {
				var ie *export.ImportError
				if errors.As(err, &ie) {
					return fmt.Errorf("%s: %s", filepath.Base(args[0]), ie.Message)
				}
				return err
			}
			if err := c.repo.ImportAppState(doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries\n", len(c.repo.Entries()))
			return nil
		},
	}
}

func (c *cli) statsCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show journaling and mood statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := now()
			if year == 0 {
				year = t.Year()
			}
			s := stats.Summarize(c.repo.Entries(), journal.DateOf(t), year)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Entries:\t%d\n", s.TotalEntries)
			fmt.Fprintf(w, "Streak:\t%d\n", s.Streak)
			if s.HasAverage {
				fmt.Fprintf(w, "Average mood:\t%.1f (%s)\n", s.Average.Value, s.Average.Level.Label())
			} else {
				fmt.Fprintln(w, "Average mood:\tN/A")
			}
			var dist []string
			for i, o := range journal.MoodOptions {
				dist = append(dist, fmt.Sprintf("%s %d", o.Label, s.Distribution[i]))
			}
			fmt.Fprintf(w, "Moods:\t%s\n", strings.Join(dist, ", "))

			days := 0
			for _, d := range s.Calendar.Days {
				if d.Count > 0 {
					days++
				}
			}
			fmt.Fprintf(w, "Days written in %d:\t%d of %d\n", year, days, len(s.Calendar.Days))
			if err := w.Flush(); err != nil {
				return err
			}

			if len(s.Tags) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "\nTop tags:")
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, tc := range s.Tags {
					fmt.Fprintf(tw, "  %s\t%d\n", tc.Tag, tc.Count)
				}
				return tw.Flush()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year for the writing heatmap (default current year)")
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	var (
		content  string
		mood     int
		tags     string
		date     string
		moodNote string
		moodTags string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a journal entry",
		Long: `Add a journal entry. An entry needs content, a mood, or both.

Examples:
  soulsync add --content "Dinner with friends" --tags friends
  soulsync add --mood 2 --mood-note "tired" --date 2024-03-09`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := journal.DateOf(now())
			if date != "" {
				parsed, err := journal.ParseDate(date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				d = parsed
			}

			in := journal.EntryInput{
				EntryDate:       d,
				Content:         content,
				Tags:            journal.ParseTags(tags),
				MoodDescription: strings.TrimSpace(moodNote),
				MoodTags:        journal.ParseTags(moodTags),
			}
			if mood != 0 {
				in.Mood = journal.Mood(journal.MoodLevel(mood))
			}

			e, err := c.repo.AddEntry(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %s for %s\n", e.ID, e.EntryDate)
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "entry text")
	cmd.Flags().IntVar(&mood, "mood", 0, "mood from 1 (awful) to 5 (great)")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&date, "date", "", "entry date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&moodNote, "mood-note", "", "short description of the mood")
	cmd.Flags().StringVar(&moodTags, "mood-tags", "", "comma-separated mood tags")
	return cmd
}

func (c *cli) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the journaling assistant a single question",
		Long: `Send one message to the assistant and print the reply.

The OpenRouter API key is read from the journal settings; set it in the
Settings tab of the UI.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := chat.NewClient(c.cfg.Chat, c.repo.Settings().ChatAPIKey, chat.WithLogger(c.log))
			reply, err := chat.NewSession(client).Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return nil
		},
	}
}
