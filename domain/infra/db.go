package infra

import (
	"os"
	"path"

	"github.com/NestorTejero/slack-utils/domain/model"
	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"
)

type DataBase struct {
	db *gorm.DB
}

func NewDataBase() (*DataBase, error) {
	dbpath := "./db/slack_utils.db"
	if os.Getenv("DB_PATH") != "" {
		dbpath = os.Getenv("DB_PATH")
	}
	if !path.IsAbs(dbpath) {
		dbpath = path.Join(os.Getenv("PWD"), dbpath)
	}
	db, err := gorm.Open("sqlite3", dbpath)
	if err != nil {
		return nil, err
	}
	db.AutoMigrate(&model.PurgeRecord{})
	return &DataBase{db: db}, nil
}

func (d *DataBase) SavePurgeRecord(record *model.PurgeRecord) error {
	if record.PurgedAt.IsZero() {
		record.PurgedAt = timeNow()
	}
	return d.db.Save(record).Error
}

func (d *DataBase) GetLatestPurgeRecords(channelID string) ([]model.PurgeRecord, error) {
	var records []model.PurgeRecord
	err := d.db.Where("channel_id = ?", channelID).
		Order("timestamp desc").
		Limit(latestRecordsLimit).
		Find(&records).Error
	return records, err
}
