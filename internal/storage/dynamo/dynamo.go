package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/goodtune/classwatch/internal/config"
	"github.com/goodtune/classwatch/internal/storage"
)

const (
	attrStudentID = "student_id"
	attrStatus    = "status"
	attrTimestamp = "timestamp_us"
)

// dynamodbAPI is the minimal DynamoDB interface required by Store.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store keeps one item per student, keyed by student_id.
type Store struct {
	api       dynamodbAPI
	tableName string
}

var _ storage.StatusStore = (*Store)(nil)

// New creates a Store over an existing DynamoDB API client.
func New(api dynamodbAPI, tableName string) (*Store, error) {
	if api == nil {
		return nil, errors.New("dynamo: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("dynamo: table name must not be empty")
	}
	return &Store{api: api, tableName: tableName}, nil
}

// Open loads the default AWS configuration and returns a Store for cfg.Table.
func Open(ctx context.Context, cfg config.DynamoDBConfig) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("dynamo: load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return New(client, cfg.Table)
}

// Put overwrites the student's item. PutItem replaces the whole item, which
// gives last-write-wins per student.
func (s *Store) Put(ctx context.Context, studentID string, record storage.StatusRecord) error {
	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			attrStudentID: &types.AttributeValueMemberS{Value: studentID},
			attrStatus:    &types.AttributeValueMemberS{Value: record.Status},
			attrTimestamp: &types.AttributeValueMemberN{Value: strconv.FormatInt(record.Timestamp.UnixMicro(), 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamo: Put: %w", err)
	}
	return nil
}

// Get reads one student's item with a consistent read.
func (s *Store) Get(ctx context.Context, studentID string) (*storage.StatusRecord, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			attrStudentID: &types.AttributeValueMemberS{Value: studentID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo: Get: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, storage.ErrNotFound
	}

	_, record, err := itemToRecord(out.Item)
	if err != nil {
		return nil, fmt.Errorf("dynamo: Get unmarshal: %w", err)
	}
	return &record, nil
}

// All scans the whole table, following pagination.
func (s *Store) All(ctx context.Context) (map[string]storage.StatusRecord, error) {
	snapshot := make(map[string]storage.StatusRecord)

	var startKey map[string]types.AttributeValue
	for {
		out, err := s.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
			ConsistentRead:    aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("dynamo: All scan: %w", err)
		}

		for _, item := range out.Items {
			// Corrupt items are skipped, matching the redis backend.
			id, record, err := itemToRecord(item)
			if err != nil {
				continue
			}
			snapshot[id] = record
		}

		if len(out.LastEvaluatedKey) == 0 {
			return snapshot, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Len counts the items in the table.
func (s *Store) Len(ctx context.Context) (int, error) {
	total := 0

	var startKey map[string]types.AttributeValue
	for {
		out, err := s.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
			Select:            types.SelectCount,
		})
		if err != nil {
			return 0, fmt.Errorf("dynamo: Len scan: %w", err)
		}
		total += int(out.Count)

		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Close is a no-op; the SDK client holds no long-lived connections to release.
func (s *Store) Close() error {
	return nil
}

func itemToRecord(item map[string]types.AttributeValue) (string, storage.StatusRecord, error) {
	id, err := stringAttr(item, attrStudentID)
	if err != nil {
		return "", storage.StatusRecord{}, err
	}
	status, err := stringAttr(item, attrStatus)
	if err != nil {
		return "", storage.StatusRecord{}, err
	}

	tsAttr, ok := item[attrTimestamp].(*types.AttributeValueMemberN)
	if !ok {
		return "", storage.StatusRecord{}, fmt.Errorf("missing %s", attrTimestamp)
	}
	micros, err := strconv.ParseInt(tsAttr.Value, 10, 64)
	if err != nil {
		return "", storage.StatusRecord{}, fmt.Errorf("parse %s: %w", attrTimestamp, err)
	}

	return id, storage.StatusRecord{Status: status, Timestamp: time.UnixMicro(micros)}, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) (string, error) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("missing %s", name)
	}
	return v.Value, nil
}
