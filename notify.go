package authclient

// Notifier is the presentational notification collaborator (toast,
// snackbar, terminal line). Callers of session operations invoke it; the
// Client never does.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Notify reports the outcome of an operation: success with successMsg when
// err is nil, otherwise the user-facing text for err. Auth failures are not
// announced; the caller is expected to redirect to sign-in instead.
func Notify(n Notifier, successMsg string, err error) {
	if n == nil {
		return
	}
	switch {
	case err == nil:
		if successMsg != "" {
			n.Success(successMsg)
		}
	case IsAuthFailure(err):
	default:
		n.Error(UserMessage(err))
	}
}
