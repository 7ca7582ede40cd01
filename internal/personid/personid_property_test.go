package personid

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var epoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

func attrsFrom(name, passport, nationality string, days int) Attributes {
	return Attributes{
		FullName:       "n" + name,
		Birthdate:      epoch.AddDate(0, 0, days),
		PassportNumber: "p" + passport,
		Nationality:    "c" + nationality,
	}
}

// Property: Compute(a) == Compute(a) and the result is always 66 characters.
func TestComputeDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("identical attributes yield identical identifiers", prop.ForAll(
		func(name, passport, nationality string, days int) bool {
			a := attrsFrom(name, passport, nationality, days)
			first, err1 := Compute(a)
			second, err2 := Compute(a)
			return err1 == nil && err2 == nil && first == second && len(first) == Length
		},
		gen.AnyString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, 50000),
	))

	properties.TestingRun(t)
}

// Property: moving bytes between adjacent fields changes the identifier.
func TestComputeFieldShiftChangesOutput(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("shifting a suffix from name into passport changes the identifier", prop.ForAll(
		func(name, suffix, passport string) bool {
			a := attrsFrom(name+suffix, passport, "Nagonia", 100)
			b := attrsFrom(name, suffix+passport, "Nagonia", 100)
			return MustCompute(a) != MustCompute(b)
		},
		gen.AlphaString(),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.AlphaString(),
	))

	properties.Property("different birthdates yield different identifiers", prop.ForAll(
		func(d1, d2 int) bool {
			if d1 == d2 {
				return true
			}
			return MustCompute(attrsFrom("x", "y", "z", d1)) != MustCompute(attrsFrom("x", "y", "z", d2))
		},
		gen.IntRange(0, 50000),
		gen.IntRange(0, 50000),
	))

	properties.TestingRun(t)
}
