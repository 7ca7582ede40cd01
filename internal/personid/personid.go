// Package personid derives the privacy-preserving person identifier shared by
// certifying centers and relying parties. The identifier is a pure function
// of four personal attributes; nothing about the person is stored.
package personid

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
)

// BirthdateLayout is the calendar-date form used in the canonical encoding.
const BirthdateLayout = "2006-01-02"

// Length of a rendered identifier: "0x" + 64 hex characters.
const Length = 66

type Attributes struct {
	FullName       string
	Birthdate      time.Time
	PassportNumber string
	Nationality    string
}

// Compute hashes the canonical serialization of attrs with Keccak-256.
// Fields are encoded in order full_name, birthdate, passport_number,
// nationality; each as a 4-byte big-endian length followed by its bytes, so
// no two distinct attribute tuples share an encoding.
func Compute(attrs Attributes) (id.PersonID, error) {
	if err := attrs.validate(); err != nil {
		return "", err
	}

	h := sha3.NewLegacyKeccak256()
	for _, field := range attrs.fields() {
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(field))) // #nosec G115 -- fields are bounded by request size
		h.Write(length[:])
		h.Write([]byte(field))
	}
	return id.PersonID("0x" + hex.EncodeToString(h.Sum(nil))), nil
}

// MustCompute panics on invalid attributes. For fixtures and seeding only.
func MustCompute(attrs Attributes) id.PersonID {
	pid, err := Compute(attrs)
	if err != nil {
		panic(err)
	}
	return pid
}

// ParseBirthdate parses a YYYY-MM-DD date in UTC.
func ParseBirthdate(s string) (time.Time, error) {
	t, err := time.Parse(BirthdateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "birthdate must be YYYY-MM-DD")
	}
	return t, nil
}

func (a Attributes) fields() [4]string {
	return [4]string{
		a.FullName,
		a.Birthdate.Format(BirthdateLayout),
		a.PassportNumber,
		a.Nationality,
	}
}

func (a Attributes) validate() error {
	switch {
	case a.FullName == "":
		return dErrors.New(dErrors.CodeInvalidInput, "full_name is required")
	case a.Birthdate.IsZero():
		return dErrors.New(dErrors.CodeInvalidInput, "birthdate is required")
	case a.PassportNumber == "":
		return dErrors.New(dErrors.CodeInvalidInput, "passport_number is required")
	case a.Nationality == "":
		return dErrors.New(dErrors.CodeInvalidInput, "nationality is required")
	}
	return nil
}
