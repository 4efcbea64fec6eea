// Package session resolves the landlord identity the board subscribes as.
// Identity comes from injected providers tried in order, so the rest of the
// program never reads it from globals.
package session

import (
	"errors"
	"os"
	"strings"
)

// EnvVar is the environment variable read by EnvProvider.
const EnvVar = "FEEDBOARD_LANDLORD_ID"

// ErrNoSession means no provider supplied a landlord id.
// Callers treat it as the idle state, not a failure.
var ErrNoSession = errors.New("no landlord session")

// Provider supplies the current landlord id.
type Provider interface {
	LandlordID() (string, error)
}

// StaticProvider returns a fixed id, typically from a flag or config file.
type StaticProvider struct {
	ID string
}

// LandlordID returns the configured id, or ErrNoSession when it is blank.
func (p StaticProvider) LandlordID() (string, error) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return "", ErrNoSession
	}
	return id, nil
}

// EnvProvider reads the id from FEEDBOARD_LANDLORD_ID.
type EnvProvider struct{}

// LandlordID reads the environment variable.
func (EnvProvider) LandlordID() (string, error) {
	id := strings.TrimSpace(os.Getenv(EnvVar))
	if id == "" {
		return "", ErrNoSession
	}
	return id, nil
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func() (string, error)

// LandlordID calls f.
func (f ProviderFunc) LandlordID() (string, error) {
	return f()
}

// Resolve returns the first id any provider yields.
// ErrNoSession providers are skipped; any other error is returned at once.
func Resolve(providers ...Provider) (string, error) {
	for _, p := range providers {
		if p == nil {
			continue
		}
		id, err := p.LandlordID()
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrNoSession) {
			return "", err
		}
	}
	return "", ErrNoSession
}
