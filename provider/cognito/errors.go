package cognito

import (
	"errors"

	"github.com/aws/smithy-go"
	authflow "github.com/goliatone/go-auth-flow"
)

// mapError turns a service error into a flow error. Rejected credentials
// become InvalidCredentials, everything else AdapterFailure. The service
// message is kept verbatim.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.ErrorMessage()
		if msg == "" {
			msg = apiErr.ErrorCode()
		}

		switch apiErr.ErrorCode() {
		case "NotAuthorizedException", "UserNotFoundException":
			e := authflow.InvalidCredentials(msg)
			e.Source = err
			return e.WithMetadata(map[string]any{
				"provider": "cognito",
				"code":     apiErr.ErrorCode(),
			})
		}

		return authflow.AdapterFailure(&serviceError{code: apiErr.ErrorCode(), message: msg, cause: err})
	}

	return authflow.AdapterFailure(err)
}

type serviceError struct {
	code    string
	message string
	cause   error
}

func (e *serviceError) Error() string {
	return e.message
}

func (e *serviceError) Unwrap() error {
	return e.cause
}
