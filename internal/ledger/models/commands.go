package models

import (
	"strings"
	"time"

	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
)

// CertifyCommand asks the ledger to register a vaccination on behalf of a
// center. Caller is the authenticated principal making the request.
type CertifyCommand struct {
	CenterID        id.CenterID
	VaccinationTime time.Time
	Vaccine         Vaccine
	PersonID        id.PersonID
	Caller          id.Address
}

func (c CertifyCommand) Validate() error {
	if c.Caller.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authenticated caller required")
	}
	if c.VaccinationTime.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "vaccination time is required")
	}
	if strings.TrimSpace(c.Vaccine.CodeType) == "" || strings.TrimSpace(c.Vaccine.Code) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "vaccine code_type and code are required")
	}
	if c.PersonID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "person ID is required")
	}
	return nil
}

// ValidateQuery is a relying party's check of a presented proof token.
// Caller is recorded for audit only.
type ValidateQuery struct {
	Area          id.Area
	ReferenceTime time.Time
	ProofToken    id.ProofToken
	PersonID      id.PersonID
	Caller        id.Address
}

func (q ValidateQuery) Validate() error {
	if q.ProofToken.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "proof token is required")
	}
	if q.PersonID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "person ID is required")
	}
	if q.Area.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "area is required")
	}
	if q.ReferenceTime.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "reference time is required")
	}
	return nil
}
