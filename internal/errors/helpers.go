package errors

import "time"

// New creates a generic AppError with the supplied category and code.
func New(category ErrorCategory, code, message string, err error) *AppError {
	return &AppError{
		Code:      code,
		Category:  category,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// SystemError creates a SYSTEM category error instance.
func SystemError(code, message string, err error) *AppError {
	return New(ErrCategorySystem, code, message, err)
}

// ConfigError creates a CONFIG category error instance.
func ConfigError(code, message string, err error) *AppError {
	return New(ErrCategoryConfig, code, message, err)
}

// DependencyError creates a DEPENDENCY category error instance.
func DependencyError(code, message string, err error) *AppError {
	return New(ErrCategoryDependency, code, message, err)
}

// ServiceError creates a SERVICE category error instance.
func ServiceError(code, message string, err error) *AppError {
	return New(ErrCategoryService, code, message, err)
}

// FilesystemError creates a FILESYSTEM category error instance.
func FilesystemError(code, message string, err error) *AppError {
	return New(ErrCategoryFilesystem, code, message, err)
}

// FirewallError creates a FIREWALL category error instance.
func FirewallError(code, message string, err error) *AppError {
	return New(ErrCategoryFirewall, code, message, err)
}

// DatabaseError creates a DATABASE category error instance.
func DatabaseError(code, message string, err error) *AppError {
	return New(ErrCategoryDatabase, code, message, err)
}
