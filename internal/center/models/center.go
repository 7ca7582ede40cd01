package models

import (
	"strings"
	"time"

	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/validation"
)

// Center is an entry of the append-only authority list. Address is the
// principal allowed to certify vaccinations on the center's behalf and never
// changes after registration.
type Center struct {
	ID           id.CenterID `json:"id"`
	Name         string      `json:"name"`
	Address      id.Address  `json:"address"`
	Registered   bool        `json:"registered"`
	RegisteredAt time.Time   `json:"registered_at"`
}

func NewCenter(centerID id.CenterID, name string, address id.Address, now time.Time) (*Center, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "center name cannot be empty")
	}
	if len(name) > validation.MaxCenterNameLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "center name must be 128 characters or less")
	}
	if address.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "center address cannot be empty")
	}
	return &Center{
		ID:           centerID,
		Name:         name,
		Address:      address,
		Registered:   true,
		RegisteredAt: now,
	}, nil
}
