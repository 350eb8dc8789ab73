// Package mocks provides centralized mock implementations for testing.
//
// Function-field mocks (MockJWTService) fall back to fixed values when no
// function is set. In-memory fakes (MockSyllabusStore, MockBlobStore) keep
// state so a handler can be driven through several requests. Call-recording
// mocks (MockCredentialService, MockJobQueue, MockAnalyticsStore) embed
// testify's mock.Mock.
//
// Usage:
//
//	jwtService := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{UserID: userID}, nil
//	    },
//	}
package mocks
