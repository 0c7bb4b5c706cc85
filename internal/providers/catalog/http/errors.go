package http

import "github.com/acrylJonny/metasync/faults"

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string, cause error) error {
	return faults.NewTypedError(faults.NotFoundError, message, cause)
}

func conflictError(message string, cause error) error {
	return faults.NewTypedError(faults.ConflictError, message, cause)
}

func authError(message string, cause error) error {
	return faults.NewTypedError(faults.AuthError, message, cause)
}

func rateLimitError(message string, cause error) error {
	return faults.NewTypedError(faults.RateLimitError, message, cause)
}

func connectivityError(message string, cause error) error {
	return faults.NewTypedError(faults.ConnectivityError, message, cause)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
