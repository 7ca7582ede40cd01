package models

import (
	"time"

	id "vaxledger/pkg/domain"
)

// Vaccine is the ledger's copy of a vaccine code; it mirrors the rules
// context without importing it.
type Vaccine struct {
	CodeType string `json:"code_type"`
	Code     string `json:"code"`
}

// Record is a certified vaccination event. It is written once and never
// updated. CenterID was verified against the center registry at creation
// time only.
type Record struct {
	ProofToken      id.ProofToken
	Registered      bool
	CenterID        id.CenterID
	VaccinationTime time.Time
	Vaccine         Vaccine
	PersonID        id.PersonID
	CertifiedBy     id.Address
	CertifiedAt     time.Time
}

// NewRecord builds an unsaved record; the token is assigned by the minter.
func NewRecord(centerID id.CenterID, vaccinationTime time.Time, vaccine Vaccine, personID id.PersonID, certifiedBy id.Address, now time.Time) *Record {
	return &Record{
		Registered:      true,
		CenterID:        centerID,
		VaccinationTime: time.Unix(vaccinationTime.Unix(), 0).UTC(),
		Vaccine:         vaccine,
		PersonID:        personID,
		CertifiedBy:     certifiedBy,
		CertifiedAt:     now,
	}
}

// HeldBy compares the stored person identifier to a supplied one.
func (r *Record) HeldBy(personID id.PersonID) bool {
	return r.PersonID == personID
}
