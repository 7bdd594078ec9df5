// ABOUTME: Wire types shared between the gateway client and its consumers
// ABOUTME: Message, User and Token mirror the gateway's JSON schemas

package api

import "time"

// Role constants for message authorship
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation context constants. The gateway partitions messages by context;
// each context is served by a different assistant persona.
const (
	ContextOnboarding = "Onboarding"
	ContextSupport    = "Support"
	ContextMarketing  = "Marketing"
)

// Contexts lists the known conversation contexts in display order.
var Contexts = []string{ContextOnboarding, ContextSupport, ContextMarketing}

// ValidContext reports whether name is one of the known conversation contexts.
func ValidContext(name string) bool {
	for _, c := range Contexts {
		if c == name {
			return true
		}
	}
	return false
}

// Message is a single chat message as stored by the gateway.
// Deleted messages are retained server-side with IsDeleted set and are
// excluded from list responses.
type Message struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"` // 0 for assistant-authored messages
	Context   string    `json:"context"`
	IsEdited  bool      `json:"is_edited"`
	IsDeleted bool      `json:"is_deleted"`
}

// User is the identity record returned by GET /users/me.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Token is the credential envelope returned by /login and /register.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
