package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBStore implements the Store interface using AWS DynamoDB.
// Single-table design with PK/SK pattern:
//   - Vehicles: PK="VEHICLE#<id>", SK="VEHICLE"
//   - Service requests: PK="REQUEST#<id>", SK="REQUEST"
//
// GSI1: GSI1PK (KIND#<kind>) + GSI1SK (<created_at>#<id>), used for listing
// every item of one kind in creation order.
type DynamoDBStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamoDBStore creates a new DynamoDB store.
func NewDynamoDBStore(client *dynamodb.Client, tableName string) *DynamoDBStore {
	return &DynamoDBStore{
		client:    client,
		tableName: tableName,
	}
}

// EnsureTable creates the table with its GSI if it doesn't exist.
func (s *DynamoDBStore) EnsureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("PK"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("SK"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("GSI1PK"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("GSI1SK"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("PK"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("SK"), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String("GSI1"),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("GSI1PK"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("GSI1SK"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	}, 2*time.Minute); err != nil {
		return fmt.Errorf("failed waiting for table: %w", err)
	}

	return nil
}

// Type implements Store.
func (s *DynamoDBStore) Type() string { return "dynamodb" }

// PutVehicle stores a new vehicle record. Existing vehicles are not overwritten.
func (s *DynamoDBStore) PutVehicle(ctx context.Context, record *VehicleRecord) error {
	if err := s.putNew(ctx, record); err != nil {
		return fmt.Errorf("failed to put vehicle: %w", err)
	}
	return nil
}

// GetVehicle retrieves a vehicle by ID.
func (s *DynamoDBStore) GetVehicle(ctx context.Context, id string) (*VehicleRecord, error) {
	var record VehicleRecord
	if err := s.getItem(ctx, KindVehicle, id, &record); err != nil {
		return nil, fmt.Errorf("failed to get vehicle %s: %w", id, err)
	}
	return &record, nil
}

// ListVehicles returns every vehicle in creation order.
func (s *DynamoDBStore) ListVehicles(ctx context.Context) ([]*VehicleRecord, error) {
	var records []*VehicleRecord
	err := s.queryKind(ctx, KindVehicle, func(item map[string]types.AttributeValue) error {
		var r VehicleRecord
		if err := attributevalue.UnmarshalMap(item, &r); err != nil {
			return err
		}
		records = append(records, &r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return records, nil
}

// UpdateVehicleStatus moves a vehicle from one status to another. The write
// only succeeds if the stored status still equals from.
func (s *DynamoDBStore) UpdateVehicleStatus(ctx context.Context, id string, from, to int, updatedAt string) error {
	if err := s.updateStatus(ctx, KindVehicle, id, from, to, updatedAt); err != nil {
		return fmt.Errorf("failed to update vehicle status: %w", err)
	}
	return nil
}

// PutServiceRequest stores a new service request record.
func (s *DynamoDBStore) PutServiceRequest(ctx context.Context, record *ServiceRequestRecord) error {
	if err := s.putNew(ctx, record); err != nil {
		return fmt.Errorf("failed to put service request: %w", err)
	}
	return nil
}

// GetServiceRequest retrieves a service request by ID.
func (s *DynamoDBStore) GetServiceRequest(ctx context.Context, id string) (*ServiceRequestRecord, error) {
	var record ServiceRequestRecord
	if err := s.getItem(ctx, KindRequest, id, &record); err != nil {
		return nil, fmt.Errorf("failed to get service request %s: %w", id, err)
	}
	return &record, nil
}

// ListServiceRequests returns every service request in creation order.
func (s *DynamoDBStore) ListServiceRequests(ctx context.Context) ([]*ServiceRequestRecord, error) {
	var records []*ServiceRequestRecord
	err := s.queryKind(ctx, KindRequest, func(item map[string]types.AttributeValue) error {
		var r ServiceRequestRecord
		if err := attributevalue.UnmarshalMap(item, &r); err != nil {
			return err
		}
		records = append(records, &r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list service requests: %w", err)
	}
	return records, nil
}

// UpdateServiceRequestStatus moves a request from one status to another,
// conditional on the stored status.
func (s *DynamoDBStore) UpdateServiceRequestStatus(ctx context.Context, id string, from, to int, updatedAt string) error {
	if err := s.updateStatus(ctx, KindRequest, id, from, to, updatedAt); err != nil {
		return fmt.Errorf("failed to update service request status: %w", err)
	}
	return nil
}

func (s *DynamoDBStore) putNew(ctx context.Context, record any) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("item already exists")
		}
		return err
	}
	return nil
}

func (s *DynamoDBStore) getItem(ctx context.Context, kind, id string, out any) error {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: itemKey(kind, id)},
			"SK": &types.AttributeValueMemberS{Value: kind},
		},
	})
	if err != nil {
		return err
	}

	if result.Item == nil {
		return ErrNotFound
	}

	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

func (s *DynamoDBStore) queryKind(ctx context.Context, kind string, fn func(map[string]types.AttributeValue) error) error {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: kindPartition(kind)},
		},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, item := range page.Items {
			if err := fn(item); err != nil {
				return fmt.Errorf("unmarshal: %w", err)
			}
		}
	}
	return nil
}

func (s *DynamoDBStore) updateStatus(ctx context.Context, kind, id string, from, to int, updatedAt string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: itemKey(kind, id)},
			"SK": &types.AttributeValueMemberS{Value: kind},
		},
		UpdateExpression:    aws.String("SET #status = :to, updated_at = :updated"),
		ConditionExpression: aws.String("attribute_exists(PK) AND #status = :from"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":from":    &types.AttributeValueMemberN{Value: strconv.Itoa(from)},
			":to":      &types.AttributeValueMemberN{Value: strconv.Itoa(to)},
			":updated": &types.AttributeValueMemberS{Value: updatedAt},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// The old item comes back only when the row exists.
			if len(ccf.Item) == 0 {
				return ErrNotFound
			}
			return ErrStatusConflict
		}
		return err
	}
	return nil
}

// Ping checks DynamoDB connectivity.
func (s *DynamoDBStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return fmt.Errorf("failed to ping DynamoDB: %w", err)
	}

	return nil
}

// Close closes the store (no-op for DynamoDB client).
func (s *DynamoDBStore) Close() error {
	return nil
}
