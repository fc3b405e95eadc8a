package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"tasktrackr/internal/api"
	"tasktrackr/internal/exitcode"
	"tasktrackr/internal/service"
)

// Report prints err to errOut and returns the matching exit code.
//   - missing or rejected session: AuthError
//   - local validation and 4xx responses: UserError
//   - everything else: BackendError
func Report(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, service.ErrTitleTooShort):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError

	case errors.Is(err, api.ErrUnauthenticated):
		fmt.Fprintf(errOut, "error: not logged in (run: %s login)\n", appName)
		return exitcode.AuthError

	case errors.Is(err, api.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	status := api.StatusCode(err)
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError && status != http.StatusNotFound {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
