package apiclient

import "time"

// Client represents an external system authorized to call the API
// with an X-API-Key token instead of a user session.
type Client struct {
	ID          int64      // ID is the unique identifier for the client
	Name        string     // Name identifies the external system
	Description string     // Description is free-form operator notes
	Token       string     // Token is the issued API key (UUID)
	Active      bool       // Active gates token acceptance
	CreatedAt   time.Time
	LastSeenAt  *time.Time // LastSeenAt is touched on each successful validation
}
