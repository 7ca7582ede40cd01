package handler

import (
	"strings"
	"time"

	"vaxledger/internal/rules/models"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/validation"
)

type VaccineRequest struct {
	CodeType string `json:"code_type"`
	Code     string `json:"code"`
}

type RegisterRuleRequest struct {
	MaxAgeSeconds int64            `json:"max_age_seconds"`
	Vaccines      []VaccineRequest `json:"vaccines"`
}

func (r *RegisterRuleRequest) Normalize() {
	if r == nil {
		return
	}
	for i := range r.Vaccines {
		r.Vaccines[i].CodeType = strings.TrimSpace(r.Vaccines[i].CodeType)
		r.Vaccines[i].Code = strings.TrimSpace(r.Vaccines[i].Code)
	}
}

func (r *RegisterRuleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.MaxAgeSeconds < 0 {
		return dErrors.New(dErrors.CodeValidation, "max_age_seconds cannot be negative")
	}
	if r.MaxAgeSeconds > models.MaxAgeSecondsLimit {
		return dErrors.New(dErrors.CodeValidation, "max_age_seconds is too large")
	}
	if err := validation.CheckSliceCount("vaccines", len(r.Vaccines), validation.MaxAcceptedVaccines); err != nil {
		return err
	}
	for _, v := range r.Vaccines {
		if err := validation.CheckRequired("code_type", v.CodeType); err != nil {
			return err
		}
		if err := validation.CheckRequired("code", v.Code); err != nil {
			return err
		}
	}
	return nil
}

func (r *RegisterRuleRequest) MaxAge() time.Duration {
	return time.Duration(r.MaxAgeSeconds) * time.Second
}

func (r *RegisterRuleRequest) VaccineList() []models.Vaccine {
	list := make([]models.Vaccine, 0, len(r.Vaccines))
	for _, v := range r.Vaccines {
		list = append(list, models.Vaccine{CodeType: v.CodeType, Code: v.Code})
	}
	return list
}
