// Package router classifies free-text merchant utterances and composes
// structured replies. It is stateless and side-effect free: all tables
// are fixed at startup and every call is a pure function of its inputs,
// so the package may be used concurrently without coordination.
// Conversation history and snapshot fetching belong to the caller.
package router

import "strings"

// startOverCommand resets the conversation to the capability overview,
// bypassing language detection and intent classification.
const startOverCommand = "start over"

// Resolve detects the language of an utterance and classifies its
// intent. The literal "start over" (case-insensitive, surrounding
// whitespace ignored) short-circuits to the help intent.
func Resolve(text string) (Intent, Language) {
	if IsStartOver(text) {
		return IntentHelp, LangEnglish
	}
	lang := Detect(text)
	return Classify(text, lang), lang
}

// IsStartOver reports whether the utterance is the reset command.
func IsStartOver(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), startOverCommand)
}

// Route is the single entry point for routing one utterance: resolve
// intent and language, then compose the reply from the given snapshots.
// It never fails, whatever the input text.
func Route(text string, snap Snapshots) Reply {
	intent, lang := Resolve(text)
	return Compose(intent, lang, snap)
}
