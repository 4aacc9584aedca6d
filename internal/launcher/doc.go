// Package launcher drives one launch end to end.
//
// The flow is strictly sequential: architecture guard, address resolution,
// kit configuration and start, readiness wait, connection banner, then an
// update loop that runs until the interrupt context is cancelled or the kit
// stops on its own, followed by an orderly close. Each state is entered at
// most once per process lifetime; there is no restart-in-place.
package launcher
