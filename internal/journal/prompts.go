package journal

// DailyPrompts are offered above the new-entry form when prompts are on.
var DailyPrompts = []string{
	"What brought you joy today?",
	"Describe a challenge you faced and how you handled it.",
	"What are you grateful for right now?",
	"Write about something you learned recently.",
	"What is one small step you can take towards a goal tomorrow?",
	"How did you practice self-care today?",
	"Describe a moment when you felt proud of yourself.",
	"What's been on your mind lately?",
	"If you could tell your younger self one thing, what would it be?",
	"What are you looking forward to?",
	"Reflect on a recent conversation that stuck with you.",
	"What does 'peace' mean to you today?",
	"Describe a simple pleasure you enjoyed recently.",
	"What is a strength you possess that you appreciate?",
	"Write a letter to someone (you don't have to send it).",
}

// PromptFor picks the prompt for a day. The same day always gets the same prompt.
func PromptFor(d Date) string {
	n := d.Year*366 + d.YearDay()
	return DailyPrompts[n%len(DailyPrompts)]
}
