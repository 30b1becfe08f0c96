// Package oracle holds the HTTP clients for the two external judgment
// services: the face-verification oracle and the zero-shot threat detector.
// Each oracle's response shape varies across deployments, so each client
// normalizes responses through a single function rather than at call sites.
package oracle

// RemoteError marks a failure to reach a remote asset or oracle endpoint,
// as opposed to the oracle answering with a bad verdict. Handlers map these
// to 502.
type RemoteError struct {
	Err error
}

func (e *RemoteError) Error() string {
	return "remote fetch: " + e.Err.Error()
}

func (e *RemoteError) Unwrap() error { return e.Err }
