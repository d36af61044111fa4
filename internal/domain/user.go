package domain

import (
	"fmt"
	"time"
)

// User is a bot user recorded by the roster registry.
type User struct {
	ID int64
	// Name is the best-available handle at first contact: the Telegram
	// username when set, otherwise the full name. Empty means unknown;
	// no placeholder value is ever stored.
	Name      string
	FirstSeen time.Time
}

// Display renders the user for the roster listing. Unknown names fall back
// to a synthesized identifier so they cannot collide with real handles.
func (u User) Display() string {
	if u.Name == "" {
		return fmt.Sprintf("id:%d", u.ID)
	}
	return "@" + u.Name
}
