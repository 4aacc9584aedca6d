// Package address resolves the IP address advertised to streaming clients.
//
// Two Source variants exist: Public queries an external "what is my IP" HTTP
// service, Tailscale asks the local tailscale CLI for the tailnet address.
// Both are single-attempt: a failure aborts the launch with no fallback.
package address
