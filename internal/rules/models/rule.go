package models

import (
	"math"
	"sort"
	"strings"
	"time"

	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/validation"
)

// Vaccine identifies a product by its coding scheme and code within it,
// e.g. {"IVT", "CoronaVac"}.
type Vaccine struct {
	CodeType string `json:"code_type"`
	Code     string `json:"code"`
}

func (v Vaccine) validate() error {
	if strings.TrimSpace(v.CodeType) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "vaccine code_type cannot be empty")
	}
	if strings.TrimSpace(v.Code) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "vaccine code cannot be empty")
	}
	if len(v.CodeType) > validation.MaxVaccineCodeLength || len(v.Code) > validation.MaxVaccineCodeLength {
		return dErrors.New(dErrors.CodeInvalidInput, "vaccine code exceeds maximum length")
	}
	return nil
}

// MaxAgeSecondsLimit is the largest max age, in whole seconds, that fits a time.Duration.
const MaxAgeSecondsLimit = math.MaxInt64 / int64(time.Second)

// MaxAgeFromSeconds converts a stored or submitted max age. Values outside
// [0, MaxAgeSecondsLimit] are rejected instead of wrapping.
func MaxAgeFromSeconds(seconds int64) (time.Duration, error) {
	if seconds < 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "max age cannot be negative")
	}
	if seconds > MaxAgeSecondsLimit {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "max age is too large")
	}
	return time.Duration(seconds) * time.Second, nil
}

// Rule is the acceptance policy of one area. Registering a rule for an area
// replaces the previous one wholesale.
type Rule struct {
	Area      id.Area
	MaxAge    time.Duration
	Vaccines  map[Vaccine]struct{}
	UpdatedBy id.Address
	UpdatedAt time.Time
}

func NewRule(area id.Area, maxAge time.Duration, vaccines []Vaccine, updatedBy id.Address, now time.Time) (*Rule, error) {
	if area.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "area cannot be empty")
	}
	if len(area) > validation.MaxAreaLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "area exceeds maximum length")
	}
	if maxAge < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "max age cannot be negative")
	}
	if len(vaccines) > validation.MaxAcceptedVaccines {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "too many accepted vaccines")
	}
	set := make(map[Vaccine]struct{}, len(vaccines))
	for _, v := range vaccines {
		if err := v.validate(); err != nil {
			return nil, err
		}
		set[v] = struct{}{}
	}
	return &Rule{
		Area:      area,
		MaxAge:    maxAge,
		Vaccines:  set,
		UpdatedBy: updatedBy,
		UpdatedAt: now,
	}, nil
}

// Accepts reports whether the vaccine is in the accepted set.
func (r *Rule) Accepts(v Vaccine) bool {
	_, ok := r.Vaccines[v]
	return ok
}

// WithinMaxAge applies the inclusive age bound: reference - vaccination <= MaxAge.
// A vaccination after the reference time has a negative age and is within bound.
func (r *Rule) WithinMaxAge(vaccinationTime, referenceTime time.Time) bool {
	return referenceTime.Sub(vaccinationTime) <= r.MaxAge
}

// VaccineList returns the accepted set in a stable order.
func (r *Rule) VaccineList() []Vaccine {
	list := make([]Vaccine, 0, len(r.Vaccines))
	for v := range r.Vaccines {
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CodeType != list[j].CodeType {
			return list[i].CodeType < list[j].CodeType
		}
		return list[i].Code < list[j].Code
	})
	return list
}

// Clone returns a deep copy so stores never hand out their internal set.
func (r *Rule) Clone() *Rule {
	c := *r
	c.Vaccines = make(map[Vaccine]struct{}, len(r.Vaccines))
	for v := range r.Vaccines {
		c.Vaccines[v] = struct{}{}
	}
	return &c
}
