package infra

import (
	"os"
	"time"

	"github.com/NestorTejero/slack-utils/domain/model"
)

const latestRecordsLimit = 50

type Datastore interface {
	// Save the record of a deleted message
	SavePurgeRecord(*model.PurgeRecord) error
	// Latest purge records of a channel, newest first
	GetLatestPurgeRecords(channelID string) ([]model.PurgeRecord, error)
}

// NewDatastore picks the backend from DB_DRIVER, defaulting to sqlite.
func NewDatastore() (Datastore, error) {
	if os.Getenv("DB_DRIVER") == "dynamodb" {
		return NewDynamoDB()
	}
	return NewDataBase()
}

func timeNow() time.Time {
	return time.Now().UTC()
}
