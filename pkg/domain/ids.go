// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strconv"
	"strings"

	dErrors "vaxledger/pkg/domain-errors"
)

// MaxAddressLength bounds principal identifiers accepted at trust boundaries.
const MaxAddressLength = 256

// Distinct ID types - compiler prevents passing a PersonID where a ProofToken is expected.
type (
	// CenterID is the public numeric identifier of a vaccination center.
	CenterID uint64

	// Address is an opaque authenticated principal. It is compared for equality only.
	Address string

	// PersonID is the hex-encoded one-way identifier derived from personal attributes.
	PersonID string

	// ProofToken is the opaque key returned when a vaccination is registered.
	ProofToken string

	// Area is the jurisdiction under which acceptance rules are scoped.
	Area string
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseCenterID(s string) (CenterID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "center ID cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid center ID format")
	}
	return CenterID(v), nil
}

func ParseAddress(s string) (Address, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address cannot be empty")
	}
	if len(s) > MaxAddressLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address exceeds maximum length")
	}
	return Address(s), nil
}

// ParsePersonID only rejects empty input. Format is not enforced so that an
// unknown proof token is reported before any identity comparison happens.
func ParsePersonID(s string) (PersonID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "person ID cannot be empty")
	}
	return PersonID(strings.ToLower(s)), nil
}

func ParseProofToken(s string) (ProofToken, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "proof token cannot be empty")
	}
	return ProofToken(strings.ToLower(s)), nil
}

func ParseArea(s string) (Area, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "area cannot be empty")
	}
	return Area(s), nil
}

// String methods - for logging and debugging.

func (id CenterID) String() string  { return strconv.FormatUint(uint64(id), 10) }
func (a Address) String() string    { return string(a) }
func (id PersonID) String() string  { return string(id) }
func (t ProofToken) String() string { return string(t) }
func (a Area) String() string       { return string(a) }

// IsNil checks - used for service-layer validation.

func (a Address) IsNil() bool    { return a == "" }
func (id PersonID) IsNil() bool  { return id == "" }
func (t ProofToken) IsNil() bool { return t == "" }
func (a Area) IsNil() bool       { return a == "" }
