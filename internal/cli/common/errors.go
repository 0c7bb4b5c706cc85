package common

import (
	"github.com/acrylJonny/metasync/faults"
)

func ValidationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
