// Package ports defines the read-only views the ledger needs of the center
// and rule registries. The registries stay independent; in-process adapters
// bridge them.
package ports

import (
	"context"
	"time"

	"vaxledger/internal/ledger/models"
	id "vaxledger/pkg/domain"
)

// CenterInfo is what the ledger needs to authorize a certification.
// Registered is false for unknown centers.
type CenterInfo struct {
	ID         id.CenterID
	Address    id.Address
	Registered bool
}

type CenterLookup interface {
	LookupCenter(ctx context.Context, centerID id.CenterID) (CenterInfo, error)
}

type Verdict string

const (
	VerdictAccepted           Verdict = "accepted"
	VerdictNoRule             Verdict = "no_rule"
	VerdictVaccineNotAccepted Verdict = "vaccine_not_accepted"
	VerdictTooOld             Verdict = "too_old"
)

type RuleEvaluator interface {
	EvaluateRule(ctx context.Context, area id.Area, vaccine models.Vaccine, vaccinationTime, referenceTime time.Time) (Verdict, error)
}
