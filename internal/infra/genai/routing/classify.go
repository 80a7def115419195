package routing

import "strings"

// Action determines how the executor handles a failure.
type Action int

const (
	// ActionRetry covers transient failures (network, 5xx): bounded retry
	// with exponential backoff on the same key.
	ActionRetry Action = iota

	// ActionRotate covers failures that exhaust or deny the active key
	// (rate-limited, quota-exceeded, permission-denied, suspended).
	ActionRotate

	// ActionHardQuota covers rate-limit failures where the key's quota
	// allocation is zero or the model is categorically unavailable for it.
	// Waiting will not resolve these; terminal for the call.
	ActionHardQuota

	// ActionFatal covers everything unclassified (malformed request, bad
	// key): surfaced immediately, no retry, no rotation.
	ActionFatal
)

// The backend reports errors as unstructured text, so classification is
// substring matching on the message. The rules are the contract surface;
// keep them in one place so they stay unit-testable apart from the
// network layer.

var hardQuotaPatterns = []string{
	"limit: 0",
	"doesn't have a free quota tier",
	"is not found for api version",
	"is not supported for generatecontent",
}

var fatalPatterns = []string{
	"invalid_argument",
	"invalid argument",
	"api key not valid",
	"request payload size exceeds",
}

var rotatePatterns = []string{
	"429",
	"resource_exhausted",
	"resource has been exhausted",
	"quota exceeded",
	"rate limit",
	"too many requests",
	"permission_denied",
	"permission denied",
	"api key expired",
	"consumer_suspended",
	"suspended",
}

// Classify determines the action for a given error. Hard-quota and fatal
// patterns are checked before rotation triggers: "limit: 0" messages also
// mention quota, and must not be mistaken for a rotatable failure.
func Classify(err error) Action {
	if err == nil {
		return ActionRetry // should not happen
	}

	s := strings.ToLower(err.Error())

	for _, p := range hardQuotaPatterns {
		if strings.Contains(s, p) {
			return ActionHardQuota
		}
	}
	for _, p := range fatalPatterns {
		if strings.Contains(s, p) {
			return ActionFatal
		}
	}
	for _, p := range rotatePatterns {
		if strings.Contains(s, p) {
			return ActionRotate
		}
	}

	// Network errors, 5xx, timeouts
	return ActionRetry
}
