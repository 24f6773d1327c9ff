package dispatcher

import (
	"strings"
	"unicode"
)

// ParseFunc splits a raw interaction string into a trigger token and the remainder.
type ParseFunc func(raw string) (trigger, remainder string)

// Parse splits raw on the first whitespace run after trimming. The remainder
// keeps its internal spacing as typed.
func Parse(raw string) (string, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ""
	}

	idx := strings.IndexFunc(trimmed, unicode.IsSpace)
	if idx < 0 {
		return trimmed, ""
	}

	return trimmed[:idx], strings.TrimLeftFunc(trimmed[idx:], unicode.IsSpace)
}

// ParseCommand is Parse for chat commands: "/char@persona_bot nek" routes
// like "/char nek" whatever bot is addressed.
func ParseCommand(raw string) (string, string) {
	return CommandParser("")(raw)
}

// CommandParser strips the "@botName" suffix from a command. A command
// addressed to another bot keeps its suffix, so it matches no trigger and
// goes to the default unit. An empty botName accepts any suffix.
func CommandParser(botName string) ParseFunc {
	return func(raw string) (string, string) {
		trigger, remainder := Parse(raw)
		if !strings.HasPrefix(trigger, "/") {
			return trigger, remainder
		}

		at := strings.IndexByte(trigger, '@')
		if at <= 0 {
			return trigger, remainder
		}
		if botName == "" || strings.EqualFold(trigger[at+1:], botName) {
			return trigger[:at], remainder
		}
		return trigger, remainder
	}
}

// ParseCallback splits callback button data of the form "/char_card?42".
func ParseCallback(data string) (string, string) {
	trimmed := strings.TrimSpace(data)
	trigger, remainder, _ := strings.Cut(trimmed, "?")
	return trigger, remainder
}
