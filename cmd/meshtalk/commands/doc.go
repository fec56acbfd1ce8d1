// Package commands implements the meshtalk CLI: identity management, trust
// administration, channel membership and engine inspection. The transports
// themselves attach at a different layer; these commands exercise the local
// engine surface.
package commands
