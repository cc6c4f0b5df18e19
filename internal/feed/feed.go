// Package feed produces asynchronous price updates for the canonical store.
// Two sources exist: a local random-walk simulator and a WebSocket client.
package feed

import "github.com/sangram-sethi/Axiom-pulse/internal/domain"

// Source is a stream of price updates. Updates returns the stream channel;
// it is closed after Stop (or context cancellation) once the source has
// fully wound down.
type Source interface {
	Updates() <-chan domain.PriceUpdate
	Stop()
}
