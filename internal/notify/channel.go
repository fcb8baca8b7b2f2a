package notify

import "context"

// Channel is a direct delivery path used alongside the gateway.
type Channel interface {
	Name() string
	Send(ctx context.Context, subject, body string) error
}
