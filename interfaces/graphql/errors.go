package graphql

import (
	"go.uber.org/zap"

	pkgerrors "forum-api/pkg/errors"
)

// resolverError exposes the application error type as extensions.code
type resolverError struct {
	message string
	code    pkgerrors.ErrorType
}

func (e *resolverError) Error() string { return e.message }

// Extensions implements the graphql-go ResolverError interface
func (e *resolverError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.code)}
}

// fail converts err into a client facing resolver error. Anything that is not
// an application error is logged and hidden behind a generic message.
func (r *Resolver) fail(err error) error {
	if err == nil {
		return nil
	}
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		if appErr.Type == pkgerrors.ErrorTypeInternal || appErr.Type == pkgerrors.ErrorTypeDatabase {
			r.logger.Error("GraphQL resolver failed", zap.Error(err))
		}
		return &resolverError{message: appErr.Message, code: appErr.Type}
	}
	r.logger.Error("GraphQL resolver failed", zap.Error(err))
	return &resolverError{message: "An internal error occurred", code: pkgerrors.ErrorTypeInternal}
}
