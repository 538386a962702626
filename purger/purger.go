// Package purger bulk-deletes Slack messages older than a per-channel age
// threshold. It needs a token allowed to delete the targeted messages
// (deletion rights follow the user or bot the token belongs to).
package purger

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/NestorTejero/slack-utils/domain/infra"
	"github.com/NestorTejero/slack-utils/domain/model"
	"github.com/jellydator/ttlcache/v3"
	"github.com/slack-go/slack"
)

const (
	channelCacheTTL  = time.Hour
	channelPageLimit = 1000
	historyPageLimit = 200
	// Upper bound on history pages per rule so a misbehaving API cannot
	// keep us iterating forever.
	maxHistoryPages = 10
)

type Purger struct {
	client       infra.SlackAPI
	ds           infra.Datastore
	channelCache *ttlcache.Cache[string, map[string]string]
	now          func() time.Time
}

type Option func(*Purger)

// WithDatastore attaches an audit datastore. Every deleted message is
// recorded in it; without one the purger keeps no state at all.
func WithDatastore(ds infra.Datastore) Option {
	return func(p *Purger) { p.ds = ds }
}

func WithNowFunc(now func() time.Time) Option {
	return func(p *Purger) { p.now = now }
}

func New(token string, opts ...Option) (*Purger, error) {
	if strings.TrimSpace(token) == "" {
		return nil, &AuthenticationError{Err: errors.New("empty token")}
	}
	p := &Purger{
		client:       slack.New(token),
		channelCache: ttlcache.New(ttlcache.WithTTL[string, map[string]string](channelCacheTTL)),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.channelCache.Start()
	return p, nil
}

func (p *Purger) Close() {
	p.channelCache.Stop()
}

// DeleteMessages runs the rules with a one-off Purger.
func DeleteMessages(token string, rules []model.PurgeRule) error {
	p, err := New(token)
	if err != nil {
		return err
	}
	defer p.Close()
	return p.DeleteMessages(rules)
}

// DeleteMessages deletes, for each rule in order, every message in the
// rule's channel older than the rule's age threshold. The token is
// verified before any channel is resolved. A failing rule does not stop
// the following ones; all failures come back joined.
func (p *Purger) DeleteMessages(rules []model.PurgeRule) error {
	if len(rules) == 0 {
		return nil
	}
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return err
		}
	}

	if _, err := p.client.AuthTest(); err != nil {
		return &AuthenticationError{Err: err}
	}

	var errs []error
	for _, rule := range rules {
		if err := p.purgeRule(rule); err != nil {
			slog.Error("purge failed", slog.String("channel", rule.Channel), slog.Any("err", err))
			errs = append(errs, fmt.Errorf("channel %s: %w", rule.Channel, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Purger) purgeRule(rule model.PurgeRule) error {
	channelID, channelName, err := p.resolveChannel(rule.Channel)
	if err != nil {
		return err
	}

	cutoff := rule.Cutoff(p.now())
	timestamps, err := p.listMessagesBefore(channelID, cutoff)
	if err != nil {
		return err
	}

	if len(timestamps) == 0 {
		slog.Info("no messages to delete", slog.String("channel", channelName))
		return nil
	}

	slog.Warn("deleting messages",
		slog.String("channel", channelName),
		slog.Int("count", len(timestamps)),
		slog.Int("minDaysOld", rule.Days),
	)

	for _, ts := range timestamps {
		if err := p.deleteMessage(channelID, channelName, ts, rule.Days); err != nil {
			return err
		}
	}
	return nil
}

// resolveChannel maps a channel name ("gitlab" or "#gitlab") or ID to the
// channel ID and bare name, from the cached conversations.list mapping.
func (p *Purger) resolveChannel(identifier string) (string, string, error) {
	name := strings.TrimPrefix(strings.TrimSpace(identifier), "#")

	channels, err := p.listChannels()
	if err != nil {
		return "", "", err
	}

	if id, ok := channels[name]; ok {
		return id, name, nil
	}
	// The identifier may already be a channel ID
	for n, id := range channels {
		if id == name {
			return id, n, nil
		}
	}
	return "", "", &ChannelNotFoundError{Channel: identifier}
}

func (p *Purger) listChannels() (map[string]string, error) {
	cacheKey := "channels"
	if item := p.channelCache.Get(cacheKey); item != nil {
		return item.Value(), nil
	}

	channels := map[string]string{}
	params := &slack.GetConversationsParameters{
		Limit: channelPageLimit,
		Types: []string{"public_channel", "private_channel"},
	}
	for {
		page, cursor, err := p.client.GetConversations(params)
		if err != nil {
			if isAuthError(err) {
				return nil, &AuthenticationError{Err: err}
			}
			if rl := rateLimited(err); rl != nil {
				return nil, rl
			}
			return nil, fmt.Errorf("GetConversations failed: %w", err)
		}
		for _, c := range page {
			channels[c.Name] = c.ID
		}
		if cursor == "" {
			break
		}
		params.Cursor = cursor
	}

	p.channelCache.Set(cacheKey, channels, ttlcache.DefaultTTL)
	return channels, nil
}

// listMessagesBefore collects the timestamps of every message in the
// channel strictly older than cutoff, consuming all history pages.
func (p *Purger) listMessagesBefore(channelID string, cutoff time.Time) ([]string, error) {
	var timestamps []string
	seen := map[string]bool{}
	cursor := ""

	for page := 0; page < maxHistoryPages; page++ {
		history, err := p.client.GetConversationHistory(&slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Latest:    strconv.FormatInt(cutoff.Unix(), 10),
			Inclusive: false,
			Limit:     historyPageLimit,
			Cursor:    cursor,
		})
		if err != nil {
			if isAuthError(err) {
				return nil, &AuthenticationError{Err: err}
			}
			if name, ok := slackErrorName(err); ok && name == "channel_not_found" {
				return nil, &ChannelNotFoundError{Channel: channelID, Err: err}
			}
			if rl := rateLimited(err); rl != nil {
				return nil, rl
			}
			return nil, fmt.Errorf("GetConversationHistory failed: %w", err)
		}

		for _, msg := range history.Messages {
			ts := msg.Timestamp
			// The latest parameter already bounds the listing, but a
			// message at or past the cutoff must never slip through.
			if seen[ts] || !olderThan(ts, cutoff) {
				continue
			}
			seen[ts] = true
			timestamps = append(timestamps, ts)
		}

		if !history.HasMore || history.ResponseMetaData.NextCursor == "" {
			break
		}
		cursor = history.ResponseMetaData.NextCursor
	}
	return timestamps, nil
}

// olderThan reports whether the Slack timestamp ("1700000000.000100") is
// strictly before cutoff.
func olderThan(ts string, cutoff time.Time) bool {
	seconds, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return false
	}
	return seconds < float64(cutoff.UnixNano())/float64(time.Second)
}

func (p *Purger) deleteMessage(channelID, channelName, ts string, days int) error {
	if _, _, err := p.client.DeleteMessage(channelID, ts); err != nil {
		if name, ok := slackErrorName(err); ok && name == "message_not_found" {
			// Already gone. Purging the same rule twice must not fail.
			slog.Debug("message already deleted", slog.String("channel", channelName), slog.String("ts", ts))
			return nil
		}
		if isAuthError(err) {
			return &AuthenticationError{Err: err}
		}
		if rl := rateLimited(err); rl != nil {
			return rl
		}
		return &DeletionRejectedError{Channel: channelName, Timestamp: ts, Err: err}
	}

	if p.ds != nil {
		record := &model.PurgeRecord{
			ChannelID:   channelID,
			ChannelName: channelName,
			Timestamp:   ts,
			MaxAgeDays:  days,
			PurgedAt:    p.now().UTC(),
		}
		// The message is gone either way; a failing audit write is logged,
		// not returned.
		if err := p.ds.SavePurgeRecord(record); err != nil {
			slog.Error("failed to save purge record", slog.String("channel", channelName), slog.Any("err", err))
		}
	}
	return nil
}
