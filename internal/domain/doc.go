// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (identity, message, trust, channel state) and
// contracts (interfaces) only.
package domain
