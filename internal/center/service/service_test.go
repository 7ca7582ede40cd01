package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	centermetrics "vaxledger/internal/center/metrics"
	"vaxledger/internal/center/store"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/audit"
	"vaxledger/pkg/platform/audit/publisher"
	auditmemory "vaxledger/pkg/platform/audit/store/memory"
	"vaxledger/pkg/requestcontext"
)

const (
	municipalCenterID = id.CenterID(1234567890)
	municipalName     = "Municipal Vac #12, Nagonia"
	municipalAddress  = id.Address("0x6b1c7a0e3f3b0dbb1d4b0c1f1e2a9d8c7b6a5f40")
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	events  *auditmemory.InMemoryStore
	metrics *centermetrics.Metrics
	ctx     context.Context
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.events = auditmemory.NewInMemoryStore()
	s.metrics = centermetrics.New(prometheus.NewRegistry())
	s.service = New(store.NewInMemory(),
		WithAuditPublisher(publisher.NewPublisher(s.events)),
		WithMetrics(s.metrics),
	)
	s.now = time.Date(2020, 12, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithAdminActor(s.ctx, "ops-admin")
}

func (s *ServiceSuite) register() error {
	_, err := s.service.RegisterCenter(s.ctx, RegisterCommand{
		ID:      municipalCenterID,
		Name:    municipalName,
		Address: municipalAddress,
	})
	return err
}

func (s *ServiceSuite) TestRegisterCenter() {
	s.Run("stores the center with its address", func() {
		s.Require().NoError(s.register())

		center, err := s.service.GetCenter(s.ctx, municipalCenterID)
		s.Require().NoError(err)
		s.True(center.Registered)
		s.Equal(municipalName, center.Name)
		s.Equal(municipalAddress, center.Address)
		s.Equal(s.now, center.RegisteredAt)
		s.Equal(1.0, promtest.ToFloat64(s.metrics.CentersRegistered))
	})

	s.Run("duplicate id is rejected and keeps the original", func() {
		_, err := s.service.RegisterCenter(s.ctx, RegisterCommand{
			ID:      municipalCenterID,
			Name:    "Fake Vaccines",
			Address: id.Address("0xdeadbeef"),
		})
		s.Require().Error(err)
		s.ErrorIs(err, dErrors.ErrDuplicateCenter)

		addr, err := s.service.GetAddress(s.ctx, municipalCenterID)
		s.Require().NoError(err)
		s.Equal(municipalAddress, addr)
		s.Equal(1.0, promtest.ToFloat64(s.metrics.RegistrationRejected.WithLabelValues(string(dErrors.CodeDuplicateCenter))))
	})

	s.Run("invalid input never reaches the store", func() {
		_, err := s.service.RegisterCenter(s.ctx, RegisterCommand{ID: 7, Name: "  ", Address: municipalAddress})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		registered, err := s.service.IsRegistered(s.ctx, 7)
		s.Require().NoError(err)
		s.False(registered)
	})
}

func (s *ServiceSuite) TestRegisterCenterEmitsAudit() {
	s.Require().NoError(s.register())

	events, err := s.events.ListBySubject(s.ctx, municipalCenterID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventCenterRegistered), events[0].Action)
	s.Equal("ops-admin", events[0].Actor)
	s.Equal(s.now, events[0].Timestamp)
}

func (s *ServiceSuite) TestLookups() {
	s.Run("unknown center", func() {
		_, err := s.service.GetCenter(s.ctx, 666)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = s.service.GetAddress(s.ctx, 666)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		registered, err := s.service.IsRegistered(s.ctx, 666)
		s.Require().NoError(err)
		s.False(registered)
	})

	s.Run("known center", func() {
		s.Require().NoError(s.register())
		registered, err := s.service.IsRegistered(s.ctx, municipalCenterID)
		s.Require().NoError(err)
		s.True(registered)
	})
}
