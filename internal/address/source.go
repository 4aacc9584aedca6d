package address

import "context"

// Source produces the IP address to present to streaming clients.
type Source interface {
	Resolve(ctx context.Context) (string, error)
}
