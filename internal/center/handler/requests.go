package handler

import (
	"strings"

	"vaxledger/internal/center/service"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/validation"
)

type RegisterCenterRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (r *RegisterCenterRequest) Normalize() {
	if r == nil {
		return
	}
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
}

func (r *RegisterCenterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckRequired("id", r.ID); err != nil {
		return err
	}
	if err := validation.CheckRequired("name", r.Name); err != nil {
		return err
	}
	if err := validation.CheckStringLength("name", r.Name, validation.MaxCenterNameLength); err != nil {
		return err
	}
	if err := validation.CheckRequired("address", r.Address); err != nil {
		return err
	}
	return nil
}

// ToCommand parses identifiers. Call after Validate.
func (r *RegisterCenterRequest) ToCommand() (service.RegisterCommand, error) {
	centerID, err := id.ParseCenterID(r.ID)
	if err != nil {
		return service.RegisterCommand{}, err
	}
	address, err := id.ParseAddress(r.Address)
	if err != nil {
		return service.RegisterCommand{}, err
	}
	return service.RegisterCommand{ID: centerID, Name: r.Name, Address: address}, nil
}
