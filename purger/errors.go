package purger

import (
	"errors"
	"fmt"
	"time"

	"github.com/slack-go/slack"
)

// AuthenticationError means the token is invalid, expired or revoked.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("slack authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ChannelNotFoundError means the identifier resolves to no channel the
// token can see.
type ChannelNotFoundError struct {
	Channel string
	Err     error
}

func (e *ChannelNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("channel %s not found: %v", e.Channel, e.Err)
	}
	return fmt.Sprintf("channel %s does not exist or is not accessible", e.Channel)
}

func (e *ChannelNotFoundError) Unwrap() error { return e.Err }

// RateLimitedError is a 429 from the Slack API. No retry is performed;
// the caller decides whether to wait RetryAfter and invoke again.
type RateLimitedError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("slack rate limited, retry after %s: %v", e.RetryAfter, e.Err)
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

// DeletionRejectedError means chat.delete refused a message for a reason
// other than it being already gone.
type DeletionRejectedError struct {
	Channel   string
	Timestamp string
	Err       error
}

func (e *DeletionRejectedError) Error() string {
	return fmt.Sprintf("failed to delete message %s from channel %s: %v", e.Timestamp, e.Channel, e.Err)
}

func (e *DeletionRejectedError) Unwrap() error { return e.Err }

var authErrorNames = map[string]bool{
	"invalid_auth":     true,
	"not_authed":       true,
	"account_inactive": true,
	"token_revoked":    true,
	"token_expired":    true,
}

// slackErrorName extracts the API error string ("invalid_auth", ...) when
// the Web API answered ok:false.
func slackErrorName(err error) (string, bool) {
	var resp slack.SlackErrorResponse
	if errors.As(err, &resp) {
		return resp.Err, true
	}
	return "", false
}

func isAuthError(err error) bool {
	name, ok := slackErrorName(err)
	return ok && authErrorNames[name]
}

func rateLimited(err error) *RateLimitedError {
	var rl *slack.RateLimitedError
	if errors.As(err, &rl) {
		return &RateLimitedError{RetryAfter: rl.RetryAfter, Err: err}
	}
	return nil
}
