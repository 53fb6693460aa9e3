package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
	credentialsUsecaseMocks "github.com/allisson/keyvault/internal/credentials/usecase/mocks"
	"github.com/allisson/keyvault/internal/metrics"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordStoreTier(ctx context.Context, tier string) {
	m.Called(ctx, tier)
}

func (m *mockBusinessMetrics) RecordKeyCheck(ctx context.Context, kind, result string) {
	m.Called(ctx, kind, result)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func expectRecorded(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "credentials", operation, status).Once()
	m.On("RecordDuration", ctx, "credentials", operation, mock.AnythingOfType("time.Duration"), status).Once()
}

func TestNewCredentialUseCaseWithMetrics(t *testing.T) {
	decorator := NewCredentialUseCaseWithMetrics(credentialsUsecaseMocks.NewMockCredentialUseCase(t), &mockBusinessMetrics{})

	assert.NotNil(t, decorator)
	assert.Implements(t, (*CredentialUseCase)(nil), decorator)
}

func TestMetricsDecorator_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		mockUseCase := credentialsUsecaseMocks.NewMockCredentialUseCase(t)
		mockMetrics := &mockBusinessMetrics{}
		expected := &credentialsDomain.Status{Kind: credentialsDomain.KindVideoProvider, Configured: true}

		mockUseCase.On("Save", ctx, "user-1", credentialsDomain.KindVideoProvider, "key", "", false).
			Return(expected, nil).
			Once()
		expectRecorded(mockMetrics, ctx, "credential_save", "success")

		status, err := NewCredentialUseCaseWithMetrics(mockUseCase, mockMetrics).
			Save(ctx, "user-1", credentialsDomain.KindVideoProvider, "key", "", false)

		require.NoError(t, err)
		assert.Equal(t, expected, status)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		mockUseCase := credentialsUsecaseMocks.NewMockCredentialUseCase(t)
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("Save", ctx, "user-1", credentialsDomain.KindVideoProvider, "", "", false).
			Return(nil, credentialsDomain.ErrEmptyCredential).
			Once()
		expectRecorded(mockMetrics, ctx, "credential_save", "error")

		_, err := NewCredentialUseCaseWithMetrics(mockUseCase, mockMetrics).
			Save(ctx, "user-1", credentialsDomain.KindVideoProvider, "", "", false)

		assert.ErrorIs(t, err, credentialsDomain.ErrEmptyCredential)
		mockMetrics.AssertExpectations(t)
	})
}

func TestMetricsDecorator_OtherOperations(t *testing.T) {
	ctx := context.Background()
	kind := credentialsDomain.KindAssistantProvider

	mockUseCase := credentialsUsecaseMocks.NewMockCredentialUseCase(t)
	mockMetrics := &mockBusinessMetrics{}
	decorator := NewCredentialUseCaseWithMetrics(mockUseCase, mockMetrics)

	mockUseCase.On("Reveal", ctx, "user-1", kind).Return(&credentialsDomain.Revealed{Kind: kind}, nil).Once()
	mockUseCase.On("Status", ctx, "user-1").Return([]*credentialsDomain.Status{}, nil).Once()
	mockUseCase.On("Delete", ctx, "user-1", kind).Return(errors.New("boom")).Once()
	mockUseCase.On("Verify", ctx, "user-1", kind).Return(nil, credentialsDomain.ErrCredentialRejected).Once()

	expectRecorded(mockMetrics, ctx, "credential_reveal", "success")
	expectRecorded(mockMetrics, ctx, "credential_status", "success")
	expectRecorded(mockMetrics, ctx, "credential_delete", "error")
	expectRecorded(mockMetrics, ctx, "credential_verify", "error")

	_, err := decorator.Reveal(ctx, "user-1", kind)
	assert.NoError(t, err)
	_, err = decorator.Status(ctx, "user-1")
	assert.NoError(t, err)
	assert.Error(t, decorator.Delete(ctx, "user-1", kind))
	_, err = decorator.Verify(ctx, "user-1", kind)
	assert.ErrorIs(t, err, credentialsDomain.ErrCredentialRejected)

	mockMetrics.AssertExpectations(t)
}
