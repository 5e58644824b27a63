// Package bot routes inbound chat messages to command handlers, enforcing
// rate limits and per-(user,command) in-flight locks.
package bot

import "fmt"

// UserProfile is the sender metadata the chat platform attaches to messages.
type UserProfile struct {
	Username string `json:"username"`
}

// Message is one inbound chat message with its user roster.
type Message struct {
	UserID string                 `json:"uid"`
	Text   string                 `json:"message"`
	Users  map[string]UserProfile `json:"users"`
}

// DisplayName resolves the sender's username from the roster, falling back
// to "Unknown" for users missing from it.
func (m Message) DisplayName() string {
	if profile, ok := m.Users[m.UserID]; ok && profile.Username != "" {
		return profile.Username
	}
	return "Unknown"
}

// ProfileLink renders the parenthesized profile URL replies address users by.
func ProfileLink(userID string) string {
	return fmt.Sprintf("(https://hackforums.net/member.php?action=profile&uid=%s)", userID)
}
