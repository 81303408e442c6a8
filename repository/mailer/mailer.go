package mailer

import "context"

// Message is one outbound transactional email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers transactional email. Delivery is best-effort
// everywhere in the system: callers log failures and never roll back
// committed state because an email did not go out.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}
