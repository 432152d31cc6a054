//go:build integration

package escrow_test

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/leafcoder/escrow-go/clients/escrow"
	appctx "github.com/leafcoder/escrow-go/context"
	logutils "github.com/leafcoder/escrow-go/logging"
)

type EscrowTestSuite struct {
	suite.Suite
	client escrow.Client
	ctx    context.Context
}

func TestEscrowTestSuite(t *testing.T) {
	if _, exists := os.LookupEnv("ESCROW_API_KEY"); !exists {
		t.Skip("ESCROW_API_KEY is not found, skipping all tests in EscrowTestSuite.")
	}

	suite.Run(t, new(EscrowTestSuite))
}

func (suite *EscrowTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.ctx = context.WithValue(suite.ctx, appctx.DebugLoggingCTXKey, false)
	suite.ctx = context.WithValue(suite.ctx, appctx.LogLevelCTXKey, "info")
	suite.ctx, _ = logutils.SetupLogger(suite.ctx)

	suite.ctx = context.WithValue(suite.ctx, appctx.EscrowServerCTXKey, escrow.SandboxURL)
	suite.ctx = context.WithValue(suite.ctx, appctx.EscrowAPIKeyCTXKey, os.Getenv("ESCROW_API_KEY"))
	suite.ctx = context.WithValue(suite.ctx, appctx.EscrowAccountEmailCTXKey, os.Getenv("ESCROW_EMAIL"))

	var err error
	suite.client, err = escrow.NewWithContext(suite.ctx)
	suite.Require().NoError(err, "Must be able to correctly initialize the client")
}

func (suite *EscrowTestSuite) TestMe() {
	me, err := suite.client.Me(suite.ctx)
	suite.Require().NoError(err, "should be able to fetch the authenticated customer")
	suite.Require().Equal(os.Getenv("ESCROW_EMAIL"), me.Email)
}

func (suite *EscrowTestSuite) TestSubmitAndFetchTransaction() {
	tx := suite.client.NewTransaction("keanu.reaves@escrow.com",
		escrow.WithDescription("johnwick.com domain sale"))
	item := tx.NewItem("johnwick.com", "domain_name", 259200, 1)
	item.AddSchedule(decimal.NewFromInt(1000), escrow.Me, "keanu.reaves@escrow.com")

	record, err := tx.Submit(suite.ctx)
	suite.Require().NoError(err, "should be able to submit a transaction")
	suite.Require().NotZero(record.ID)

	fetched, err := suite.client.GetTransaction(suite.ctx, record.ID)
	suite.Require().NoError(err, "should be able to fetch the created transaction")
	suite.Require().Equal(record.ID, fetched.ID)
}
