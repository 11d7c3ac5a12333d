// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (events, pair state, outbound actions), sentinel
// errors, user-facing notice texts and the contracts the transport implements.
package domain
