package journal

// MoodLevel is an ordinal rating on a fixed 5-point scale.
type MoodLevel int

const (
	MoodAwful MoodLevel = iota + 1
	MoodBad
	MoodNeutral
	MoodGood
	MoodGreat
)

// MoodOption describes how a mood level is presented.
type MoodOption struct {
	Level MoodLevel
	Emoji string
	Label string
}

// MoodOptions is ordered by ascending level.
var MoodOptions = []MoodOption{
	{Level: MoodAwful, Emoji: "😢", Label: "Awful"},
	{Level: MoodBad, Emoji: "😟", Label: "Bad"},
	{Level: MoodNeutral, Emoji: "😐", Label: "Neutral"},
	{Level: MoodGood, Emoji: "😊", Label: "Good"},
	{Level: MoodGreat, Emoji: "🤩", Label: "Great"},
}

func (m MoodLevel) Valid() bool {
	return m >= MoodAwful && m <= MoodGreat
}

func (m MoodLevel) Label() string {
	if !m.Valid() {
		return ""
	}
	return MoodOptions[m-1].Label
}

func (m MoodLevel) Emoji() string {
	if !m.Valid() {
		return ""
	}
	return MoodOptions[m-1].Emoji
}

// Mood returns a pointer to level, for building entries inline.
func Mood(level MoodLevel) *MoodLevel {
	return &level
}
