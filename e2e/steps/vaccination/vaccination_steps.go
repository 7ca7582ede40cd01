package vaccination

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	POSTWithHeaders(path string, body interface{}, headers map[string]string) error
	PUTWithHeaders(path string, body interface{}, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetAdminToken() string
	ActAs(address string) error
	AuthHeaders() map[string]string
	GetPersonID(name string) (string, bool)
	SetPersonID(name, personID string)
	GetProofToken(name string) (string, bool)
	SetProofToken(name, token string)
}

// RegisterSteps registers center, rule and ledger step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &vaccinationSteps{tc: tc}

	// Registries
	ctx.Step(`^the admin registers center (\d+) named "([^"]*)" with address "([^"]*)"$`, steps.registerCenter)
	ctx.Step(`^"([^"]*)" sets area "([^"]*)" to accept "([^"]*)" "([^"]*)" for (\d+) days$`, steps.setRule)

	// Person identifiers
	ctx.Step(`^I compute the person ID of "([^"]*)" born "([^"]*)" with passport "([^"]*)" from "([^"]*)"$`, steps.computePersonID)

	// Ledger
	ctx.Step(`^center (\d+) certifies "([^"]*)" "([^"]*)" for "([^"]*)" at "([^"]*)"$`, steps.certify)
	ctx.Step(`^I validate the proof of "([^"]*)" presented by "([^"]*)" in "([^"]*)" at "([^"]*)"$`, steps.validateProofOf)
	ctx.Step(`^I validate proof token "([^"]*)" presented by "([^"]*)" in "([^"]*)" at "([^"]*)"$`, steps.validateToken)
	ctx.Step(`^I look up the vaccination record of "([^"]*)"$`, steps.lookupRecord)
	ctx.Step(`^the proof is valid$`, steps.proofIsValid)
	ctx.Step(`^the proof is rejected with status (\d+) because "([^"]*)"$`, steps.proofIsRejected)
}

type vaccinationSteps struct {
	tc TestContext
}

func (s *vaccinationSteps) registerCenter(ctx context.Context, centerID int64, name, address string) error {
	body := map[string]interface{}{
		"id":      fmt.Sprint(centerID),
		"name":    name,
		"address": address,
	}
	return s.tc.POSTWithHeaders("/admin/centers", body, map[string]string{"X-Admin-Token": s.tc.GetAdminToken()})
}

func (s *vaccinationSteps) setRule(ctx context.Context, caller, area, codeType, code string, days int) error {
	if err := s.tc.ActAs(caller); err != nil {
		return err
	}
	body := map[string]interface{}{
		"max_age_seconds": int64(days) * 24 * 60 * 60,
		"vaccines": []map[string]string{
			{"code_type": codeType, "code": code},
		},
	}
	if err := s.tc.PUTWithHeaders("/rules/"+url.PathEscape(area), body, s.tc.AuthHeaders()); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("set rule for %s: status %d: %s", area, status, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *vaccinationSteps) computePersonID(ctx context.Context, fullName, birthdate, passport, nationality string) error {
	body := map[string]interface{}{
		"full_name":       fullName,
		"birthdate":       birthdate,
		"passport_number": passport,
		"nationality":     nationality,
	}
	if err := s.tc.POSTWithHeaders("/person-ids", body, nil); err != nil {
		return err
	}
	personID, err := s.tc.GetResponseField("person_id")
	if err != nil {
		return err
	}
	s.tc.SetPersonID(fullName, fmt.Sprint(personID))
	return nil
}

func (s *vaccinationSteps) certify(ctx context.Context, centerID int64, codeType, code, person, at string) error {
	personID, err := s.personID(person)
	if err != nil {
		return err
	}
	vaccinated, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return fmt.Errorf("vaccination time %q: %w", at, err)
	}

	body := map[string]interface{}{
		"center_id":         fmt.Sprint(centerID),
		"vaccination_time":  vaccinated.Unix(),
		"vaccine_code_type": codeType,
		"vaccine_code":      code,
		"person_id":         personID,
	}
	if err := s.tc.POSTWithHeaders("/vaccinations", body, s.tc.AuthHeaders()); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == 201 {
		token, err := s.tc.GetResponseField("proof_token")
		if err != nil {
			return err
		}
		s.tc.SetProofToken(person, fmt.Sprint(token))
	}
	return nil
}

func (s *vaccinationSteps) validateProofOf(ctx context.Context, holder, presenter, area, at string) error {
	token, ok := s.tc.GetProofToken(holder)
	if !ok {
		return fmt.Errorf("no proof token recorded for %s", holder)
	}
	return s.validateToken(ctx, token, presenter, area, at)
}

func (s *vaccinationSteps) validateToken(ctx context.Context, token, presenter, area, at string) error {
	personID, err := s.personID(presenter)
	if err != nil {
		return err
	}
	ref, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return fmt.Errorf("reference time %q: %w", at, err)
	}

	body := map[string]interface{}{
		"area":           area,
		"reference_time": ref.Unix(),
		"proof_token":    token,
		"person_id":      personID,
	}
	return s.tc.POSTWithHeaders("/vaccinations/validate", body, s.tc.AuthHeaders())
}

func (s *vaccinationSteps) lookupRecord(ctx context.Context, holder string) error {
	token, ok := s.tc.GetProofToken(holder)
	if !ok {
		return fmt.Errorf("no proof token recorded for %s", holder)
	}
	return s.tc.GET("/vaccinations/"+url.PathEscape(token), nil)
}

func (s *vaccinationSteps) proofIsValid(ctx context.Context) error {
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("expected a valid proof but got status %d: %s", status, string(s.tc.GetLastResponseBody()))
	}
	valid, err := s.tc.GetResponseField("valid")
	if err != nil {
		return err
	}
	if valid != true {
		return fmt.Errorf("expected valid=true but got %v", valid)
	}
	return nil
}

func (s *vaccinationSteps) proofIsRejected(ctx context.Context, status int, reason string) error {
	if actual := s.tc.GetLastResponseStatus(); actual != status {
		return fmt.Errorf("expected status %d but got %d: %s", status, actual, string(s.tc.GetLastResponseBody()))
	}
	description, err := s.tc.GetResponseField("error_description")
	if err != nil {
		return err
	}
	if description != reason {
		return fmt.Errorf("expected reason %q but got %q", reason, description)
	}
	return nil
}

// personID resolves a fixture name to its computed identifier. Unknown
// names are passed through verbatim.
func (s *vaccinationSteps) personID(name string) (string, error) {
	if personID, ok := s.tc.GetPersonID(name); ok {
		return personID, nil
	}
	if name == "" {
		return "", fmt.Errorf("person name is required")
	}
	return name, nil
}
