package agent

import "strings"

// connectivityPatterns recognizes errors that mean the sandbox or the
// network between us went away, as opposed to the command itself failing.
// Matching is on the error's textual representation; the remote service and
// the transport stack do not share typed errors with us.
var connectivityPatterns = []string{
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"econnreset",
	"econnrefused",
	"broken pipe",
	"no such host",
	"dns",
	"502",
	"503",
	"504",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
	"sandbox not found",
}

// IsConnectivityError reports whether err classifies as an
// environment-connectivity failure. Such failures are always recoverable
// from the orchestrator's perspective: tools turn them into a retry hint for
// the model, the top level turns them into a user-visible retry message.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range connectivityPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// RetryHint is the fixed instruction handed to the model in place of a raw
// connectivity error, so it can retry or explain instead of crashing the run.
const RetryHint = "The sandbox is temporarily unreachable. Wait a few seconds and retry the command; if it keeps failing, explain to the user that the environment needs to be restarted."
