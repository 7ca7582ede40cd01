package adapters

import (
	"context"
	"fmt"
	"time"

	"vaxledger/internal/ledger/models"
	"vaxledger/internal/ledger/ports"
	rulesmodels "vaxledger/internal/rules/models"
	id "vaxledger/pkg/domain"
)

type RulesService interface {
	Evaluate(ctx context.Context, area id.Area, vaccine rulesmodels.Vaccine, vaccinationTime, referenceTime time.Time) (rulesmodels.Verdict, error)
}

// RulesAdapter exposes rule evaluation to the ledger in-process.
type RulesAdapter struct {
	rules RulesService
}

func NewRulesAdapter(rules RulesService) *RulesAdapter {
	return &RulesAdapter{rules: rules}
}

func (a *RulesAdapter) EvaluateRule(ctx context.Context, area id.Area, vaccine models.Vaccine, vaccinationTime, referenceTime time.Time) (ports.Verdict, error) {
	verdict, err := a.rules.Evaluate(ctx, area, rulesmodels.Vaccine{CodeType: vaccine.CodeType, Code: vaccine.Code}, vaccinationTime, referenceTime)
	if err != nil {
		return "", err
	}
	switch verdict {
	case rulesmodels.VerdictAccepted:
		return ports.VerdictAccepted, nil
	case rulesmodels.VerdictNoRule:
		return ports.VerdictNoRule, nil
	case rulesmodels.VerdictVaccineNotAccepted:
		return ports.VerdictVaccineNotAccepted, nil
	case rulesmodels.VerdictTooOld:
		return ports.VerdictTooOld, nil
	default:
		return "", fmt.Errorf("unknown rule verdict %q", verdict)
	}
}

var _ ports.RuleEvaluator = (*RulesAdapter)(nil)
