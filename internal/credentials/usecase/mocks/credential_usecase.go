// Package mocks provides testify mocks of the credential use case interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
)

// MockCredentialUseCase is a mock implementation of CredentialUseCase.
type MockCredentialUseCase struct {
	mock.Mock
}

// NewMockCredentialUseCase creates a mock that asserts its expectations when the test ends.
func NewMockCredentialUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCredentialUseCase {
	m := &MockCredentialUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Save mocks the Save method of CredentialUseCase.
func (m *MockCredentialUseCase) Save(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
	plaintext, model string,
	validate bool,
) (*credentialsDomain.Status, error) {
	args := m.Called(ctx, userID, kind, plaintext, model, validate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialsDomain.Status), args.Error(1)
}

// Reveal mocks the Reveal method of CredentialUseCase.
func (m *MockCredentialUseCase) Reveal(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Revealed, error) {
	args := m.Called(ctx, userID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialsDomain.Revealed), args.Error(1)
}

// Status mocks the Status method of CredentialUseCase.
func (m *MockCredentialUseCase) Status(ctx context.Context, userID string) ([]*credentialsDomain.Status, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credentialsDomain.Status), args.Error(1)
}

// Delete mocks the Delete method of CredentialUseCase.
func (m *MockCredentialUseCase) Delete(ctx context.Context, userID string, kind credentialsDomain.Kind) error {
	args := m.Called(ctx, userID, kind)
	return args.Error(0)
}

// Verify mocks the Verify method of CredentialUseCase.
func (m *MockCredentialUseCase) Verify(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Status, error) {
	args := m.Called(ctx, userID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialsDomain.Status), args.Error(1)
}

// MockRotationUseCase is a mock implementation of RotationUseCase.
type MockRotationUseCase struct {
	mock.Mock
}

// NewMockRotationUseCase creates a mock that asserts its expectations when the test ends.
func NewMockRotationUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRotationUseCase {
	m := &MockRotationUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Rotate mocks the Rotate method of RotationUseCase.
func (m *MockRotationUseCase) Rotate(
	ctx context.Context,
	from, to cryptoService.Sealer,
) (*credentialsDomain.RotationReport, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialsDomain.RotationReport), args.Error(1)
}
