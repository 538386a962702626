package infra

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/NestorTejero/slack-utils/domain/model"
	"github.com/stretchr/testify/assert"
)

func newTestDataBase(t *testing.T) *DataBase {
	t.Helper()
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "slack_utils_test.db"))
	db, err := NewDataBase()
	assert.NoError(t, err)
	return db
}

func TestDataBase_SaveAndGetPurgeRecords(t *testing.T) {
	db := newTestDataBase(t)

	record := &model.PurgeRecord{
		ChannelID:   "C12345678",
		ChannelName: "gitlab",
		Timestamp:   "1700000000.000100",
		MaxAgeDays:  5,
	}
	err := db.SavePurgeRecord(record)
	assert.NoError(t, err)
	assert.False(t, record.PurgedAt.IsZero(), "PurgedAt should be defaulted")

	records, err := db.GetLatestPurgeRecords("C12345678")
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "gitlab", records[0].ChannelName)
	assert.Equal(t, "1700000000.000100", records[0].Timestamp)
	assert.Equal(t, 5, records[0].MaxAgeDays)
}

func TestDataBase_GetLatestPurgeRecords_OrderAndLimit(t *testing.T) {
	db := newTestDataBase(t)

	for i := 0; i < latestRecordsLimit+10; i++ {
		err := db.SavePurgeRecord(&model.PurgeRecord{
			ChannelID:  "C12345678",
			Timestamp:  fmt.Sprintf("1700000%03d.000000", i),
			MaxAgeDays: 5,
			PurgedAt:   time.Now().UTC(),
		})
		assert.NoError(t, err)
	}
	// Records of other channels must not leak in
	err := db.SavePurgeRecord(&model.PurgeRecord{
		ChannelID: "C99999999",
		Timestamp: "1700000999.000000",
	})
	assert.NoError(t, err)

	records, err := db.GetLatestPurgeRecords("C12345678")
	assert.NoError(t, err)
	assert.Len(t, records, latestRecordsLimit)
	assert.Equal(t, fmt.Sprintf("1700000%03d.000000", latestRecordsLimit+9), records[0].Timestamp)
	for _, r := range records {
		assert.Equal(t, "C12345678", r.ChannelID)
	}
}
