// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline stubs in individual test files, packages that
// exercise the generation layer share MockBackend, which records every
// prompt it receives so tests can assert exactly what reached a provider,
// or that nothing did.
//
// Usage:
//
//	backend := mocks.NewMockBackendWithText("gemini-test", "Dear diary...")
//	registry, err := generation.NewRegistry(ctx, logger, "gemini", backend.Factory("gemini"))
//	// ... exercise the code under test ...
//	assert.Equal(t, 1, backend.CallCount())
package mocks
