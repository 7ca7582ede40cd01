package models

import "time"

// Verdict is the outcome of evaluating a vaccination against an area rule.
type Verdict string

const (
	VerdictAccepted           Verdict = "accepted"
	VerdictNoRule             Verdict = "no_rule"
	VerdictVaccineNotAccepted Verdict = "vaccine_not_accepted"
	VerdictTooOld             Verdict = "too_old"
)

func (v Verdict) Accepted() bool { return v == VerdictAccepted }

// Evaluate checks rule existence, then set membership, then age.
// A nil rule means no rule is registered for the area.
func Evaluate(rule *Rule, vaccine Vaccine, vaccinationTime, referenceTime time.Time) Verdict {
	if rule == nil {
		return VerdictNoRule
	}
	if !rule.Accepts(vaccine) {
		return VerdictVaccineNotAccepted
	}
	if !rule.WithinMaxAge(vaccinationTime, referenceTime) {
		return VerdictTooOld
	}
	return VerdictAccepted
}
