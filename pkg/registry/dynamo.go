package registry

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roamjs/gateway/pkg/environment"
)

var tracer = otel.Tracer("github.com/roamjs/gateway/pkg/registry")

// dynamoAPI is the subset of the DynamoDB client used by DynamoStore
type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	dynamodb.QueryAPIClient
}

// DynamoStore implements Store on DynamoDB
type DynamoStore struct {
	client dynamoAPI
	tables Tables
}

// NewDynamoStore creates a store reading from the given tables
func NewDynamoStore(cfg aws.Config, tables Tables) *DynamoStore {
	return &DynamoStore{
		client: dynamodb.NewFromConfig(cfg),
		tables: tables,
	}
}

// Get performs a point lookup of an extension registration
func (s *DynamoStore) Get(ctx context.Context, env environment.Environment, extensionID string) (*Registration, error) {
	table := s.tables.Name(env)
	ctx, span := tracer.Start(ctx, "DynamoDB.GetItem",
		trace.WithAttributes(
			attribute.String("dynamodb.table", table),
			attribute.String("extension.id", extensionID),
		),
	)
	defer span.End()

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: extensionID},
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get item failed")
		return nil, fmt.Errorf("failed to get extension %s: %w", extensionID, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var reg Registration
	if err := attributevalue.UnmarshalMap(out.Item, &reg); err != nil {
		return nil, fmt.Errorf("failed to decode extension %s: %w", extensionID, err)
	}
	return &reg, nil
}

// ListByOwner returns the ids of every extension owned by ownerID
func (s *DynamoStore) ListByOwner(ctx context.Context, env environment.Environment, ownerID string) ([]string, error) {
	table := s.tables.Name(env)
	ctx, span := tracer.Start(ctx, "DynamoDB.Query",
		trace.WithAttributes(
			attribute.String("dynamodb.table", table),
			attribute.String("dynamodb.index", s.tables.OwnerIndex),
		),
	)
	defer span.End()

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(s.tables.OwnerIndex),
		KeyConditionExpression: aws.String("#u = :u"),
		ExpressionAttributeNames: map[string]string{
			"#u": "user",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: ownerID},
		},
	})

	var ids []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "query failed")
			return nil, fmt.Errorf("failed to list extensions for %s: %w", ownerID, err)
		}
		for _, item := range page.Items {
			if id, ok := item["id"].(*types.AttributeValueMemberS); ok {
				ids = append(ids, id.Value)
			}
		}
	}
	span.SetAttributes(attribute.Int("extension.count", len(ids)))
	return ids, nil
}

// Ping checks that both registration tables are reachable
func (s *DynamoStore) Ping(ctx context.Context) error {
	for _, table := range []string{s.tables.Production, s.tables.Development} {
		if _, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}); err != nil {
			return fmt.Errorf("failed to describe table %s: %w", table, err)
		}
	}
	return nil
}
