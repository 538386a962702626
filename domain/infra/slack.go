package infra

import "github.com/slack-go/slack"

type SlackAPI interface {
	AuthTest() (*slack.AuthTestResponse, error)
	GetConversations(params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	GetConversationHistory(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	DeleteMessage(channelID, ts string) (string, string, error)
}
