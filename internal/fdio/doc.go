// Package fdio provides the descriptor plumbing under the terminal proxy:
// ownership-aware handles, status-flag management for append mode, and the
// cancellable transfer loops that move bytes between descriptors through
// intermediate pipes.
package fdio
