package persistence

import (
	"context"
	"fmt"
	"time"

	"flowboard/domain/core/aggregates"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the subset of the DynamoDB client the store calls
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// boardRecord is how a board is stored in the table
type boardRecord struct {
	PK        string    `dynamodbav:"PK"` // BOARD#<key>
	SK        string    `dynamodbav:"SK"` // DOCUMENT
	Doc       string    `dynamodbav:"Doc"`
	Revision  int       `dynamodbav:"Revision"`
	UpdatedAt time.Time `dynamodbav:"UpdatedAt"`
}

const boardSortKey = "DOCUMENT"

// DynamoDBStore keeps one item per board in a PK/SK table
type DynamoDBStore struct {
	client    DynamoDBAPI
	tableName string
	now       func() time.Time
}

// NewDynamoDBStore wraps an existing client
func NewDynamoDBStore(client DynamoDBAPI, tableName string) *DynamoDBStore {
	return &DynamoDBStore{client: client, tableName: tableName, now: time.Now}
}

// DialDynamoDB builds a client from the default AWS credential chain. A
// non-empty endpoint points the client at a local emulator.
func DialDynamoDB(ctx context.Context, region, endpoint, tableName string) (*DynamoDBStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewDynamoDBStore(client, tableName), nil
}

func boardKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "BOARD#" + key},
		"SK": &types.AttributeValueMemberS{Value: boardSortKey},
	}
}

// Load implements ports.DocumentStore
func (s *DynamoDBStore) Load(ctx context.Context, key string) (*aggregates.DocumentState, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            boardKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get %s: %w", key, err)
	}
	if resp.Item == nil {
		return nil, nil
	}

	var record boardRecord
	if err := attributevalue.UnmarshalMap(resp.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board record: %w", err)
	}
	return decode([]byte(record.Doc))
}

// Save implements ports.DocumentStore. The revision counter is bumped server side.
func (s *DynamoDBStore) Save(ctx context.Context, key string, state aggregates.DocumentState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	values, err := attributevalue.MarshalMap(map[string]interface{}{
		":doc": string(data),
		":at":  s.now().UTC(),
		":one": 1,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal board update: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       boardKey(key),
		UpdateExpression:          aws.String("SET #doc = :doc, #at = :at ADD #rev :one"),
		ExpressionAttributeNames:  map[string]string{"#doc": "Doc", "#at": "UpdatedAt", "#rev": "Revision"},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("dynamodb update %s: %w", key, err)
	}
	return nil
}

// Close implements ports.ClosableStore
func (s *DynamoDBStore) Close() error {
	return nil
}
