package errors

// ErrorCategory groups related application errors for unified handling.
type ErrorCategory string

const (
	ErrCategorySystem     ErrorCategory = "SYSTEM"
	ErrCategoryConfig     ErrorCategory = "CONFIG"
	ErrCategoryDependency ErrorCategory = "DEPENDENCY"
	ErrCategoryService    ErrorCategory = "SERVICE"
	ErrCategoryFilesystem ErrorCategory = "FILESYSTEM"
	ErrCategoryFirewall   ErrorCategory = "FIREWALL"
	ErrCategoryDatabase   ErrorCategory = "DATABASE"
)
