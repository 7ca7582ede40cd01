package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	rulesmetrics "vaxledger/internal/rules/metrics"
	"vaxledger/internal/rules/models"
	"vaxledger/internal/rules/store"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/audit"
	"vaxledger/pkg/platform/audit/publisher"
	auditmemory "vaxledger/pkg/platform/audit/store/memory"
	"vaxledger/pkg/requestcontext"
)

var (
	coronaVac  = models.Vaccine{CodeType: "IVT", Code: "CoronaVac"}
	sputnikVac = models.Vaccine{CodeType: "RF", Code: "SputnikVac"}
	vaccinated = time.Date(2020, 12, 10, 11, 30, 0, 0, time.UTC)
	thirtyDays = 30 * 24 * time.Hour
)

const rulesAuthority = id.Address("0x5f1e2d3c4b5a69788796a5b4c3d2e1f001122334")

type ServiceSuite struct {
	suite.Suite
	service *Service
	events  *auditmemory.InMemoryStore
	metrics *rulesmetrics.Metrics
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.events = auditmemory.NewInMemoryStore()
	s.metrics = rulesmetrics.New(prometheus.NewRegistry())
	s.service = New(store.NewInMemory(),
		WithAuditPublisher(publisher.NewPublisher(s.events)),
		WithMetrics(s.metrics),
	)
	s.ctx = requestcontext.WithCaller(context.Background(), rulesAuthority)
	s.ctx = requestcontext.WithTime(s.ctx, vaccinated)
}

func (s *ServiceSuite) registerGarivas(vaccines ...models.Vaccine) {
	_, err := s.service.RegisterRule(s.ctx, "Garivas", thirtyDays, vaccines)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestRegisterRule() {
	s.Run("records the caller and emits audit", func() {
		s.registerGarivas(coronaVac)

		rule, err := s.service.GetRule(s.ctx, "Garivas")
		s.Require().NoError(err)
		s.Equal(rulesAuthority, rule.UpdatedBy)
		s.Equal(vaccinated, rule.UpdatedAt)

		events, err := s.events.ListBySubject(s.ctx, "Garivas")
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventRuleRegistered), events[0].Action)
		s.Equal(rulesAuthority.String(), events[0].Actor)
	})

	s.Run("re-registering replaces the vaccine set", func() {
		s.registerGarivas(sputnikVac)

		rule, err := s.service.GetRule(s.ctx, "Garivas")
		s.Require().NoError(err)
		s.True(rule.Accepts(sputnikVac))
		s.False(rule.Accepts(coronaVac))
		s.Equal(2.0, promtest.ToFloat64(s.metrics.RulesRegistered))
	})

	s.Run("invalid input", func() {
		_, err := s.service.RegisterRule(s.ctx, "Garivas", -time.Hour, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = s.service.RegisterRule(s.ctx, "", time.Hour, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestGetRuleMissing() {
	_, err := s.service.GetRule(s.ctx, "Atlantis")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestAccepts() {
	s.registerGarivas(coronaVac)

	cases := []struct {
		name      string
		area      id.Area
		vaccine   models.Vaccine
		reference time.Time
		want      bool
	}{
		{"within window", "Garivas", coronaVac, vaccinated.Add(10 * 24 * time.Hour), true},
		{"inclusive bound", "Garivas", coronaVac, vaccinated.Add(thirtyDays), true},
		{"past bound", "Garivas", coronaVac, time.Date(2021, 1, 19, 11, 31, 0, 0, time.UTC), false},
		{"vaccine not in set", "Garivas", sputnikVac, vaccinated.Add(time.Hour), false},
		{"unknown area", "Atlantis", coronaVac, vaccinated, false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			ok, err := s.service.Accepts(s.ctx, tc.area, tc.vaccine.CodeType, tc.vaccine.Code, vaccinated, tc.reference)
			s.Require().NoError(err)
			s.Equal(tc.want, ok)
		})
	}
}

func (s *ServiceSuite) TestEvaluateVerdicts() {
	s.registerGarivas(coronaVac)

	verdict, err := s.service.Evaluate(s.ctx, "Atlantis", coronaVac, vaccinated, vaccinated)
	s.Require().NoError(err)
	s.Equal(models.VerdictNoRule, verdict)

	verdict, err = s.service.Evaluate(s.ctx, "Garivas", coronaVac, vaccinated, vaccinated.Add(thirtyDays+time.Minute))
	s.Require().NoError(err)
	s.Equal(models.VerdictTooOld, verdict)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Evaluations.WithLabelValues(string(models.VerdictTooOld))))
}

type brokenStore struct{}

func (brokenStore) Save(context.Context, *models.Rule) error { return errors.New("connection reset") }
func (brokenStore) FindByArea(context.Context, id.Area) (*models.Rule, error) {
	return nil, errors.New("connection reset")
}

func (s *ServiceSuite) TestInfrastructureErrorsAreInternal() {
	svc := New(brokenStore{})

	_, err := svc.RegisterRule(s.ctx, "Garivas", time.Hour, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	_, err = svc.Evaluate(s.ctx, "Garivas", coronaVac, vaccinated, vaccinated)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
