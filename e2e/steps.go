package e2e

import (
	"github.com/cucumber/godog"

	"vaxledger/e2e/steps/common"
	"vaxledger/e2e/steps/vaccination"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	vaccination.RegisterSteps(ctx, tc)
}
