package handler

import (
	"strings"
	"time"

	"vaxledger/internal/ledger/models"
	"vaxledger/internal/personid"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/validation"
)

// CertifyRequest is sent by a center. center_id is a decimal string so
// clients never lose precision on 64-bit identifiers.
type CertifyRequest struct {
	CenterID        string `json:"center_id"`
	VaccinationTime int64  `json:"vaccination_time"`
	VaccineCodeType string `json:"vaccine_code_type"`
	VaccineCode     string `json:"vaccine_code"`
	PersonID        string `json:"person_id"`
}

func (r *CertifyRequest) Normalize() {
	if r == nil {
		return
	}
	r.CenterID = strings.TrimSpace(r.CenterID)
	r.VaccineCodeType = strings.TrimSpace(r.VaccineCodeType)
	r.VaccineCode = strings.TrimSpace(r.VaccineCode)
	r.PersonID = strings.ToLower(strings.TrimSpace(r.PersonID))
}

func (r *CertifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckRequired("center_id", r.CenterID); err != nil {
		return err
	}
	if r.VaccinationTime <= 0 {
		return dErrors.New(dErrors.CodeValidation, "vaccination_time must be a positive unix timestamp")
	}
	for _, f := range []struct{ name, value string }{
		{"vaccine_code_type", r.VaccineCodeType},
		{"vaccine_code", r.VaccineCode},
	} {
		if err := validation.CheckRequired(f.name, f.value); err != nil {
			return err
		}
		if err := validation.CheckStringLength(f.name, f.value, validation.MaxVaccineCodeLength); err != nil {
			return err
		}
	}
	if err := validation.CheckRequired("person_id", r.PersonID); err != nil {
		return err
	}
	return validation.CheckStringLength("person_id", r.PersonID, validation.MaxTokenLength)
}

func (r *CertifyRequest) ToCommand(caller id.Address) (models.CertifyCommand, error) {
	centerID, err := id.ParseCenterID(r.CenterID)
	if err != nil {
		return models.CertifyCommand{}, err
	}
	personID, err := id.ParsePersonID(r.PersonID)
	if err != nil {
		return models.CertifyCommand{}, err
	}
	return models.CertifyCommand{
		CenterID:        centerID,
		VaccinationTime: time.Unix(r.VaccinationTime, 0).UTC(),
		Vaccine:         models.Vaccine{CodeType: r.VaccineCodeType, Code: r.VaccineCode},
		PersonID:        personID,
		Caller:          caller,
	}, nil
}

// ValidateRequest is sent by a relying party checking a presented token.
type ValidateRequest struct {
	Area          string `json:"area"`
	ReferenceTime int64  `json:"reference_time"`
	ProofToken    string `json:"proof_token"`
	PersonID      string `json:"person_id"`
}

func (r *ValidateRequest) Normalize() {
	if r == nil {
		return
	}
	r.Area = strings.TrimSpace(r.Area)
	r.ProofToken = strings.ToLower(strings.TrimSpace(r.ProofToken))
	r.PersonID = strings.ToLower(strings.TrimSpace(r.PersonID))
}

func (r *ValidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckRequired("area", r.Area); err != nil {
		return err
	}
	if err := validation.CheckStringLength("area", r.Area, validation.MaxAreaLength); err != nil {
		return err
	}
	if r.ReferenceTime <= 0 {
		return dErrors.New(dErrors.CodeValidation, "reference_time must be a positive unix timestamp")
	}
	for _, f := range []struct{ name, value string }{
		{"proof_token", r.ProofToken},
		{"person_id", r.PersonID},
	} {
		if err := validation.CheckRequired(f.name, f.value); err != nil {
			return err
		}
		if err := validation.CheckStringLength(f.name, f.value, validation.MaxTokenLength); err != nil {
			return err
		}
	}
	return nil
}

func (r *ValidateRequest) ToQuery(caller id.Address) models.ValidateQuery {
	return models.ValidateQuery{
		Area:          id.Area(r.Area),
		ReferenceTime: time.Unix(r.ReferenceTime, 0).UTC(),
		ProofToken:    id.ProofToken(r.ProofToken),
		PersonID:      id.PersonID(r.PersonID),
		Caller:        caller,
	}
}

// PersonIDRequest carries the attributes hashed into a person identifier.
// Nothing here is logged or stored.
type PersonIDRequest struct {
	FullName       string `json:"full_name"`
	Birthdate      string `json:"birthdate"`
	PassportNumber string `json:"passport_number"`
	Nationality    string `json:"nationality"`
}

func (r *PersonIDRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	for _, f := range []struct{ name, value string }{
		{"full_name", r.FullName},
		{"birthdate", r.Birthdate},
		{"passport_number", r.PassportNumber},
		{"nationality", r.Nationality},
	} {
		if err := validation.CheckRequired(f.name, f.value); err != nil {
			return err
		}
		if err := validation.CheckStringLength(f.name, f.value, validation.MaxPersonFieldLength); err != nil {
			return err
		}
	}
	return nil
}

func (r *PersonIDRequest) ToAttributes() (personid.Attributes, error) {
	birthdate, err := personid.ParseBirthdate(r.Birthdate)
	if err != nil {
		return personid.Attributes{}, err
	}
	return personid.Attributes{
		FullName:       r.FullName,
		Birthdate:      birthdate,
		PassportNumber: r.PassportNumber,
		Nationality:    r.Nationality,
	}, nil
}
