package pool

// Test-only hooks for the external pool_test package.
var MustNew = mustNew
