// Package format builds the Slack message text the bridge posts.
package format

import "strings"

// MaxThreadTitleLength caps the derived thread title.
const MaxThreadTitleLength = 100

// ThreadTitle derives the short starter title from a question. Questions
// longer than MaxThreadTitleLength runes are truncated with an ellipsis
// marker.
func ThreadTitle(question string) string {
	question = strings.TrimSpace(question)
	runes := []rune(question)
	if len(runes) <= MaxThreadTitleLength {
		return question
	}
	return strings.TrimSpace(string(runes[:MaxThreadTitleLength])) + "..."
}

// StarterText is the top-level channel message that opens a new thread.
func StarterText(question string) string {
	return "🤖 *Question from AI Assistant*\n" + ThreadTitle(question)
}

// QuestionText is the in-thread message carrying the full question,
// addressed at the responder with an explicit mention.
func QuestionText(userID, question string) string {
	return "<@" + strings.TrimSpace(userID) + "> " + strings.TrimSpace(question)
}

// Preview truncates text to max runes for log fields.
func Preview(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
