package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	portssvc "github.com/quillbooks/invoicing_app/internal/core/ports/services"
	"github.com/quillbooks/invoicing_app/internal/core/services"
)

// --- Test Suite ---
type NumberingServiceTestSuite struct {
	suite.Suite
	mockSequenceRepo *MockSequenceRepository
	mockInvoiceRepo  *MockInvoiceRepository
	service          portssvc.NumberingSvcFacade
}

func (suite *NumberingServiceTestSuite) SetupTest() {
	suite.mockSequenceRepo = new(MockSequenceRepository)
	suite.mockInvoiceRepo = new(MockInvoiceRepository)
	suite.service = services.NewNumberingService(suite.mockSequenceRepo, suite.mockInvoiceRepo)
}

// defaultNumber renders the default template for the current month.
func defaultNumber(seq int64) string {
	now := time.Now().UTC()
	return fmt.Sprintf("INV-%s-%s-%04d", now.Format("2006"), now.Format("01"), seq)
}

// --- Test Cases ---

func (suite *NumberingServiceTestSuite) TestNextInvoiceNumber_FirstAllocation() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockSequenceRepo.On("GetCounter", ctx, accountID, domain.SequenceNamespaceInvoice).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockInvoiceRepo.On("FindLatestInvoiceNumber", ctx, accountID).Return("", apperrors.ErrNotFound).Once()
	suite.mockSequenceRepo.On("AllocateNext", ctx, accountID, domain.SequenceNamespaceInvoice, int64(0)).Return(int64(1), nil).Once()

	number, err := suite.service.NextInvoiceNumber(ctx, accountID)

	suite.Require().NoError(err)
	suite.Equal(defaultNumber(1), number)
	suite.mockSequenceRepo.AssertExpectations(suite.T())
}

func (suite *NumberingServiceTestSuite) TestNextInvoiceNumber_LatestNumberIsTheFloor() {
	ctx := context.Background()
	accountID := uuid.NewString()
	counter := &domain.SequenceCounter{AccountID: accountID, Namespace: domain.SequenceNamespaceInvoice, LastValue: 3}

	suite.mockSequenceRepo.On("GetCounter", ctx, accountID, domain.SequenceNamespaceInvoice).Return(counter, nil).Once()
	// The counter lagged behind the actually issued numbers.
	suite.mockInvoiceRepo.On("FindLatestInvoiceNumber", ctx, accountID).Return("INV-2026-07-0041", nil).Once()
	suite.mockSequenceRepo.On("AllocateNext", ctx, accountID, domain.SequenceNamespaceInvoice, int64(42)).Return(int64(42), nil).Once()

	number, err := suite.service.NextInvoiceNumber(ctx, accountID)

	suite.Require().NoError(err)
	suite.Equal(defaultNumber(42), number)
	suite.mockSequenceRepo.AssertExpectations(suite.T())
}

func (suite *NumberingServiceTestSuite) TestNextInvoiceNumber_CustomTemplate() {
	ctx := context.Background()
	accountID := uuid.NewString()
	counter := &domain.SequenceCounter{
		AccountID: accountID,
		Namespace: domain.SequenceNamespaceInvoice,
		LastValue: 9,
		Template:  "QB/{YYYY}/{SEQ}",
	}

	suite.mockSequenceRepo.On("GetCounter", ctx, accountID, domain.SequenceNamespaceInvoice).Return(counter, nil).Once()
	suite.mockInvoiceRepo.On("FindLatestInvoiceNumber", ctx, accountID).Return("QB/2026/0009", nil).Once()
	suite.mockSequenceRepo.On("AllocateNext", ctx, accountID, domain.SequenceNamespaceInvoice, int64(10)).Return(int64(10), nil).Once()

	number, err := suite.service.NextInvoiceNumber(ctx, accountID)

	suite.Require().NoError(err)
	suite.Equal(fmt.Sprintf("QB/%s/0010", time.Now().UTC().Format("2006")), number)
}

func (suite *NumberingServiceTestSuite) TestNextInvoiceNumber_TemplateWithoutSeqSkipsCrossCheck() {
	ctx := context.Background()
	accountID := uuid.NewString()
	counter := &domain.SequenceCounter{
		AccountID: accountID,
		Namespace: domain.SequenceNamespaceInvoice,
		Template:  "DRAFT-{YYYY}-{MM}",
	}

	suite.mockSequenceRepo.On("GetCounter", ctx, accountID, domain.SequenceNamespaceInvoice).Return(counter, nil).Once()
	suite.mockSequenceRepo.On("AllocateNext", ctx, accountID, domain.SequenceNamespaceInvoice, int64(0)).Return(int64(4), nil).Once()

	number, err := suite.service.NextInvoiceNumber(ctx, accountID)

	suite.Require().NoError(err)
	now := time.Now().UTC()
	suite.Equal(fmt.Sprintf("DRAFT-%s-%s", now.Format("2006"), now.Format("01")), number)
	suite.mockInvoiceRepo.AssertNotCalled(suite.T(), "FindLatestInvoiceNumber", mock.Anything, mock.Anything)
}

func (suite *NumberingServiceTestSuite) TestNextInvoiceNumber_ConsecutiveCallsDiffer() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockSequenceRepo.On("GetCounter", ctx, accountID, domain.SequenceNamespaceInvoice).Return(nil, apperrors.ErrNotFound).Twice()
	suite.mockInvoiceRepo.On("FindLatestInvoiceNumber", ctx, accountID).Return("", apperrors.ErrNotFound).Once()
	suite.mockInvoiceRepo.On("FindLatestInvoiceNumber", ctx, accountID).Return(defaultNumber(5), nil).Once()
	suite.mockSequenceRepo.On("AllocateNext", ctx, accountID, domain.SequenceNamespaceInvoice, int64(0)).Return(int64(5), nil).Once()
	suite.mockSequenceRepo.On("AllocateNext", ctx, accountID, domain.SequenceNamespaceInvoice, int64(6)).Return(int64(6), nil).Once()

	first, err := suite.service.NextInvoiceNumber(ctx, accountID)
	suite.Require().NoError(err)
	second, err := suite.service.NextInvoiceNumber(ctx, accountID)
	suite.Require().NoError(err)

	suite.NotEqual(first, second)
	suite.Equal(defaultNumber(5), first)
	suite.Equal(defaultNumber(6), second)
}

func (suite *NumberingServiceTestSuite) TestNextInvoiceNumber_AllocateError() {
	ctx := context.Background()
	accountID := uuid.NewString()
	expectedErr := assert.AnError

	suite.mockSequenceRepo.On("GetCounter", ctx, accountID, domain.SequenceNamespaceInvoice).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockInvoiceRepo.On("FindLatestInvoiceNumber", ctx, accountID).Return("", apperrors.ErrNotFound).Once()
	suite.mockSequenceRepo.On("AllocateNext", ctx, accountID, domain.SequenceNamespaceInvoice, int64(0)).Return(int64(0), expectedErr).Once()

	number, err := suite.service.NextInvoiceNumber(ctx, accountID)

	suite.Require().Error(err)
	suite.Empty(number)
	suite.ErrorIs(err, expectedErr)
}

// --- Run Suite ---
func TestNumberingService(t *testing.T) {
	suite.Run(t, new(NumberingServiceTestSuite))
}
