package purger

import (
	"fmt"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
)

func TestIsAuthError(t *testing.T) {
	assert.True(t, isAuthError(slack.SlackErrorResponse{Err: "invalid_auth"}))
	assert.True(t, isAuthError(slack.SlackErrorResponse{Err: "token_expired"}))
	assert.True(t, isAuthError(fmt.Errorf("AuthTest failed: %w", slack.SlackErrorResponse{Err: "token_revoked"})))
	assert.False(t, isAuthError(slack.SlackErrorResponse{Err: "channel_not_found"}))
	assert.False(t, isAuthError(fmt.Errorf("connection refused")))
}

func TestRateLimited(t *testing.T) {
	rl := rateLimited(&slack.RateLimitedError{RetryAfter: 3 * time.Second})
	assert.NotNil(t, rl)
	assert.Equal(t, 3*time.Second, rl.RetryAfter)

	assert.Nil(t, rateLimited(slack.SlackErrorResponse{Err: "ratelimited"}))
	assert.Nil(t, rateLimited(fmt.Errorf("boom")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := slack.SlackErrorResponse{Err: "cant_delete_message"}
	err := &DeletionRejectedError{Channel: "gitlab", Timestamp: "123.456", Err: cause}

	name, ok := slackErrorName(err)
	assert.True(t, ok)
	assert.Equal(t, "cant_delete_message", name)
	assert.Contains(t, err.Error(), "gitlab")
}
