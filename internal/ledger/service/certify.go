package service

import (
	"context"
	"errors"

	"vaxledger/internal/ledger/models"
	"vaxledger/internal/ledger/tracer"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/sentinel"
	"vaxledger/pkg/requestcontext"
)

// CertifyAndRegister records a vaccination for a registered center and
// returns its proof token. Only the center's registered address may certify.
// Calls are not idempotent: identical commands yield distinct tokens.
func (s *Service) CertifyAndRegister(ctx context.Context, cmd models.CertifyCommand) (token id.ProofToken, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanCertify, tracer.String(tracer.AttrCenterID, cmd.CenterID.String()))
	defer func() {
		span.End(err)
		s.observeCertification(err)
	}()

	if err := cmd.Validate(); err != nil {
		return "", err
	}

	lookupCtx, lookupSpan := s.tracer.Start(ctx, tracer.SpanCenterLookup)
	center, err := s.centers.LookupCenter(lookupCtx, cmd.CenterID)
	lookupSpan.End(err)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up center")
	}
	if !center.Registered {
		s.emitCertificationRejected(ctx, cmd, dErrors.ErrCenterNotRegistered)
		return "", dErrors.ErrCenterNotRegistered
	}
	if center.Address != cmd.Caller {
		s.emitCertificationRejected(ctx, cmd, dErrors.ErrCenterAddressMismatch)
		return "", dErrors.ErrCenterAddressMismatch
	}

	record := models.NewRecord(cmd.CenterID, cmd.VaccinationTime, cmd.Vaccine, cmd.PersonID, cmd.Caller, requestcontext.Now(ctx))
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		minted, err := s.minter.Mint(record)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint proof token")
		}
		record.ProofToken = minted
		if err := s.records.Create(txCtx, record); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.Wrap(err, dErrors.CodeInternal, "proof token collision")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store vaccination record")
		}
		s.emitCertified(txCtx, record)
		return nil
	})
	if err != nil {
		return "", err
	}

	span.SetAttributes(tracer.String(tracer.AttrToken, record.ProofToken.String()))
	return record.ProofToken, nil
}

func (s *Service) observeCertification(err error) {
	if s.metrics == nil {
		return
	}
	result := "certified"
	if err != nil {
		result = string(dErrors.CodeOf(err))
	}
	s.metrics.ObserveCertification(result)
}
