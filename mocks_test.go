package authgate_test

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/stretchr/testify/mock"

	authgate "github.com/goliatone/go-authgate"
)

// MockLogger implements authgate.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockIdentityProvider implements authgate.IdentityProvider for testing
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) FindIdentityBySubject(ctx context.Context, subject string) (*authgate.IdentityRecord, error) {
	args := m.Called(ctx, subject)
	if record, ok := args.Get(0).(*authgate.IdentityRecord); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func testSigningSecret() string {
	return base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func testEncryptionSecret() string {
	return base64.StdEncoding.EncodeToString([]byte("0123456789abcdef01234567"))
}

func newTestSigner() *authgate.ClaimsSigner {
	signer, err := authgate.NewClaimsSigner(testSigningSecret())
	if err != nil {
		panic(err)
	}
	return signer
}

func newTestCodec() *authgate.TokenCodec {
	codec, err := authgate.NewTokenCodec(testEncryptionSecret())
	if err != nil {
		panic(err)
	}
	return codec
}

func newTestIssuer(ttl time.Duration, opts ...authgate.IssuerOption) *authgate.Issuer {
	return authgate.NewIssuer(newTestSigner(), newTestCodec(), "test-issuer", ttl, opts...)
}

func newTestValidator(opts ...authgate.ValidatorOption) *authgate.Validator {
	return authgate.NewValidator(newTestCodec(), newTestSigner(), opts...)
}
