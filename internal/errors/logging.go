package errors

import (
	"github.com/sirupsen/logrus"
)

// Fields extracts the structured context carried by an AppError so
// callers can attach it to their own log entries. For plain errors it
// returns nil.
func Fields(err error) logrus.Fields {
	appErr, ok := err.(*AppError)
	if !ok {
		return nil
	}

	fields := logrus.Fields{
		"error_code": appErr.Code,
		"retryable":  appErr.Retryable,
	}
	for k, v := range appErr.Context {
		fields[k] = v
	}
	return fields
}
