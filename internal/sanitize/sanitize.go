// Package sanitize filters AI-generated text before it is sent to chat.
// The pipeline is a pure function: a fixed rule list applied in order,
// first match wins, and every replacement text is itself clean, so the
// pipeline is idempotent.
package sanitize

import (
	"regexp"
	"strings"
)

// Rule identifies which filter rewrote a response.
type Rule string

// Rules in evaluation order. RuleNone means the text passed through.
const (
	RuleNone         Rule = ""
	RuleCommand      Rule = "command"
	RuleManipulation Rule = "manipulation"
	RuleURL          Rule = "url"
	RuleMention      Rule = "mention"
)

// Replacement messages per rule.
const (
	blockedMessage      = "The response contained disallowed content and was blocked for safety."
	manipulationMessage = "You are being naughty for trying to manipulate the AI. No troublemaking!"
	linksMessage        = "Links are not allowed in general responses. Please avoid including URLs."
	taggingMessage      = "Tagging with @ symbols is not allowed."
)

// trustedHost is the only host URLs may point at.
const trustedHost = "hackforums.net"

// disallowedCommands are chat commands the AI must never be able to trigger.
var disallowedCommands = []string{"/flip", "/jackpot", "/rain", "/help", "/invite"}

// manipulationPatterns catch prompt-injection instructions that try to turn
// the AI into a relay ("only respond with", "reply with exactly", ...).
var manipulationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)only\s*respond\s*with`),
	regexp.MustCompile(`(?i)just\s*say`),
	regexp.MustCompile(`(?i)respond\s*with\s*exactly`),
	regexp.MustCompile(`(?i)reply\s*with`),
	regexp.MustCompile(`(?i)simply\s*respond`),
	regexp.MustCompile(`(?i)translate.*and\s*only\s*respond`),
	regexp.MustCompile(`(?i)no\s*additional\s*text`),
	regexp.MustCompile(`(?i)respond\s*without\s*any\s*other\s*words`),
	regexp.MustCompile(`(?i)merely\s*reply\s*with`),
	regexp.MustCompile(`(?i)strictly\s*respond`),
}

var urlPattern = regexp.MustCompile(`(?i)https?://[^\s]+`)

// Sanitize applies the filter pipeline and returns the text to send.
func Sanitize(text string) string {
	out, _ := Apply(text)
	return out
}

// Apply applies the filter pipeline and reports which rule fired, if any.
// Rules are checked in order and the first match wins: a response containing
// both a disallowed command and a URL is rewritten by the command rule.
func Apply(text string) (string, Rule) {
	for _, command := range disallowedCommands {
		if strings.Contains(text, command) {
			return blockedMessage, RuleCommand
		}
	}

	for _, pattern := range manipulationPatterns {
		if pattern.MatchString(text) {
			return manipulationMessage, RuleManipulation
		}
	}

	if containsUntrustedURL(text) {
		return linksMessage, RuleURL
	}

	if strings.Contains(text, "@") {
		return taggingMessage, RuleMention
	}

	return text, RuleNone
}

// containsUntrustedURL reports whether the text holds an http(s) URL whose
// host is not the trusted platform domain.
func containsUntrustedURL(text string) bool {
	for _, match := range urlPattern.FindAllString(text, -1) {
		rest := strings.ToLower(match)
		rest = strings.TrimPrefix(rest, "https://")
		rest = strings.TrimPrefix(rest, "http://")
		if !strings.HasPrefix(rest, trustedHost) {
			return true
		}
	}
	return false
}
