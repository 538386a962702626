package infra

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/NestorTejero/slack-utils/domain/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type DynamoDB struct {
	db *dynamodb.Client
}

var purgeRecordTableName = "slack_utils_purge_record"

func NewDynamoDB() (*DynamoDB, error) {
	if os.Getenv("DYNAMO_PURGE_RECORD_TABLE_NAME") != "" {
		purgeRecordTableName = os.Getenv("DYNAMO_PURGE_RECORD_TABLE_NAME")
	}
	var db *dynamodb.Client
	if os.Getenv("DYNAMO_LOCAL") != "" {
		cfg, err := config.LoadDefaultConfig(context.TODO(),
			config.WithRegion("dummy"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "dummy")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}

		db = dynamodb.NewFromConfig(cfg,
			func(o *dynamodb.Options) {
				o.BaseEndpoint = aws.String("http://localhost:8000")
			},
		)
	} else {
		cfg, err := config.LoadDefaultConfig(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}

		db = dynamodb.NewFromConfig(cfg)
	}
	d := &DynamoDB{
		db: db,
	}
	if os.Getenv("DYNAMO_LOCAL") != "" {
		if err := d.EnsureTable(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

const (
	waitInterval = 2 * time.Second
	maxRetries   = 30
)

func (d *DynamoDB) EnsureTable() error {
	_, err := d.db.DescribeTable(context.TODO(), &dynamodb.DescribeTableInput{
		TableName: aws.String(purgeRecordTableName),
	})
	if err == nil {
		return nil
	}

	if err := d.createTable(); err != nil {
		return err
	}

	// Wait until the table is ACTIVE
	for i := 0; i < maxRetries; i++ {
		out, err := d.db.DescribeTable(context.TODO(), &dynamodb.DescribeTableInput{
			TableName: aws.String(purgeRecordTableName),
		})
		if err != nil {
			return fmt.Errorf("failed to describe table %s: %v", purgeRecordTableName, err)
		}

		if out.Table.TableStatus == types.TableStatusActive {
			return nil
		}

		time.Sleep(waitInterval)
	}

	return fmt.Errorf("table %s creation timed out", purgeRecordTableName)
}

func (d *DynamoDB) createTable() error {
	_, err := d.db.CreateTable(context.TODO(), &dynamodb.CreateTableInput{
		TableName: aws.String(purgeRecordTableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("channel_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("timestamp"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("channel_id"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("timestamp"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("failed to create table %s: %v", purgeRecordTableName, err)
	}
	return nil
}

func (d *DynamoDB) SavePurgeRecord(record *model.PurgeRecord) error {
	if record.PurgedAt.IsZero() {
		record.PurgedAt = timeNow()
	}
	_, err := d.db.PutItem(context.TODO(), &dynamodb.PutItemInput{
		TableName: aws.String(purgeRecordTableName),
		Item: map[string]types.AttributeValue{
			"channel_id":   &types.AttributeValueMemberS{Value: record.ChannelID},
			"timestamp":    &types.AttributeValueMemberS{Value: record.Timestamp},
			"channel_name": &types.AttributeValueMemberS{Value: record.ChannelName},
			"max_age_days": &types.AttributeValueMemberN{Value: strconv.Itoa(record.MaxAgeDays)},
			"purged_at":    &types.AttributeValueMemberS{Value: record.PurgedAt.Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to save purge record: %v", err)
	}
	return nil
}

func (d *DynamoDB) GetLatestPurgeRecords(channelID string) ([]model.PurgeRecord, error) {
	out, err := d.db.Query(context.TODO(), &dynamodb.QueryInput{
		TableName:              aws.String(purgeRecordTableName),
		KeyConditionExpression: aws.String("channel_id = :channel_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":channel_id": &types.AttributeValueMemberS{Value: channelID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(latestRecordsLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query purge records: %v", err)
	}

	records := make([]model.PurgeRecord, 0, len(out.Items))
	for _, item := range out.Items {
		var record model.PurgeRecord
		if v, ok := item["channel_id"].(*types.AttributeValueMemberS); ok {
			record.ChannelID = v.Value
		}
		if v, ok := item["timestamp"].(*types.AttributeValueMemberS); ok {
			record.Timestamp = v.Value
		}
		if v, ok := item["channel_name"].(*types.AttributeValueMemberS); ok {
			record.ChannelName = v.Value
		}
		if v, ok := item["max_age_days"].(*types.AttributeValueMemberN); ok {
			days, err := strconv.Atoi(v.Value)
			if err == nil {
				record.MaxAgeDays = days
			}
		}
		if v, ok := item["purged_at"].(*types.AttributeValueMemberS); ok {
			t, err := time.Parse(time.RFC3339, v.Value)
			if err == nil {
				record.PurgedAt = t
			}
		}
		records = append(records, record)
	}
	return records, nil
}
