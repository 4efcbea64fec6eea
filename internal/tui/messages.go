// Package tui provides Bubble Tea models for the interactive TUI.
package tui

import "github.com/h0rv/feedboard/internal/domain"

// LandlordSelectedMsg is emitted when the operator picks a landlord to watch.
type LandlordSelectedMsg struct {
	Landlord domain.Landlord
}

// VendorChosenMsg is emitted when the operator commits a vendor assignment.
type VendorChosenMsg struct {
	Vendor string
}

// AssignCancelledMsg is emitted when the vendor picker is dismissed.
type AssignCancelledMsg struct{}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}
