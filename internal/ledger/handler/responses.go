package handler

import (
	"time"

	"vaxledger/internal/ledger/models"
)

type CertifyResponse struct {
	ProofToken string `json:"proof_token"`
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

type PersonIDResponse struct {
	PersonID string `json:"person_id"`
}

type RecordResponse struct {
	ProofToken      string    `json:"proof_token"`
	Registered      bool      `json:"registered"`
	CenterID        string    `json:"center_id"`
	VaccinationTime int64     `json:"vaccination_time"`
	VaccineCodeType string    `json:"vaccine_code_type"`
	VaccineCode     string    `json:"vaccine_code"`
	PersonID        string    `json:"person_id"`
	CertifiedBy     string    `json:"certified_by"`
	CertifiedAt     time.Time `json:"certified_at"`
}

func toRecordResponse(r *models.Record) *RecordResponse {
	return &RecordResponse{
		ProofToken:      r.ProofToken.String(),
		Registered:      r.Registered,
		CenterID:        r.CenterID.String(),
		VaccinationTime: r.VaccinationTime.Unix(),
		VaccineCodeType: r.Vaccine.CodeType,
		VaccineCode:     r.Vaccine.Code,
		PersonID:        r.PersonID.String(),
		CertifiedBy:     r.CertifiedBy.String(),
		CertifiedAt:     r.CertifiedAt,
	}
}
