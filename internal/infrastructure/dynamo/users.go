package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-user-registration/internal/domain"
	"github.com/go-user-registration/internal/pkg/id"
)

// dynamoAPI is the subset of *dynamodb.Client used by UserStore.
type dynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// userItem is one registered address. The table is keyed by email (hash) and
// user_id (range); every AddUser writes a new item with a fresh ULID, so
// duplicates are possible and the ULID order is the insertion order.
type userItem struct {
	UserID    string    `dynamodbav:"user_id"`
	Email     string    `dynamodbav:"email"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

// UserStore provides the registered-user collection on a DynamoDB table.
type UserStore struct {
	client    dynamoAPI
	tableName string
	retryBase time.Duration
}

func NewUserStore(client dynamoAPI, tableName string) *UserStore {
	return &UserStore{client: client, tableName: tableName, retryBase: 50 * time.Millisecond}
}

func (s *UserStore) AddUser(ctx context.Context, email string) error {
	item, err := attributevalue.MarshalMap(userItem{
		UserID:    id.New(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("add user %s: %w", email, err)
	}
	return nil
}

func (s *UserStore) HasUser(ctx context.Context, email string) (bool, error) {
	item, err := s.findByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

// DeleteUser removes the oldest item whose email equals the given address.
func (s *UserStore) DeleteUser(ctx context.Context, email string) error {
	item, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("delete %s: %w", email, domain.ErrUserNotFound)
	}
	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       userKey(item.Email, item.UserID),
	})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", email, err)
	}
	return nil
}

// Users scans the whole table and returns the addresses ordered by item ULID.
func (s *UserStore) Users(ctx context.Context) ([]string, error) {
	var items []userItem
	err := s.scanAll(ctx, &dynamodb.ScanInput{
		TableName:      aws.String(s.tableName),
		ConsistentRead: aws.Bool(true),
	}, func(out *dynamodb.ScanOutput) error {
		var page []userItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return fmt.Errorf("unmarshal users: %w", err)
		}
		items = append(items, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UserID < items[j].UserID })
	users := make([]string, len(items))
	for i, it := range items {
		users[i] = it.Email
	}
	return users, nil
}

func (s *UserStore) NumberOfUsers(ctx context.Context) (int, error) {
	total := 0
	err := s.scanAll(ctx, &dynamodb.ScanInput{
		TableName:      aws.String(s.tableName),
		Select:         types.SelectCount,
		ConsistentRead: aws.Bool(true),
	}, func(out *dynamodb.ScanOutput) error {
		total += int(out.Count)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *UserStore) IsReadWriteSupported() bool { return true }

func (s *UserStore) DatabaseName() string { return "dynamodb" }

// DropDatabase deletes every item in the table; the table itself is kept.
func (s *UserStore) DropDatabase(ctx context.Context) error {
	var keys []map[string]types.AttributeValue
	err := s.scanAll(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(s.tableName),
		ProjectionExpression:     aws.String("#e, #u"),
		ExpressionAttributeNames: map[string]string{"#e": attrEmail, "#u": attrUserID},
	}, func(out *dynamodb.ScanOutput) error {
		for _, item := range out.Items {
			keys = append(keys, map[string]types.AttributeValue{
				attrEmail:  item[attrEmail],
				attrUserID: item[attrUserID],
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, batch := range chunk(keys, maxBatchWrite) {
		reqs := make([]types.WriteRequest, len(batch))
		for i, k := range batch {
			reqs[i] = types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: k}}
		}
		if err := s.batchWrite(ctx, reqs); err != nil {
			return err
		}
	}
	return nil
}

// findByEmail returns the oldest item for email, read with strong consistency
// so a check right after a write sees it.
func (s *UserStore) findByEmail(ctx context.Context, email string) (*userItem, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attrEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		ConsistentRead:            aws.Bool(true),
		ScanIndexForward:          aws.Bool(true),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", email, err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var item userItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &item, nil
}

// scanAll follows LastEvaluatedKey until the table is exhausted.
func (s *UserStore) scanAll(ctx context.Context, in *dynamodb.ScanInput, visit func(*dynamodb.ScanOutput) error) error {
	for {
		out, err := s.client.Scan(ctx, in)
		if err != nil {
			return fmt.Errorf("scan %s: %w", s.tableName, err)
		}
		if err := visit(out); err != nil {
			return err
		}
		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

const maxBatchAttempts = 5

func (s *UserStore) batchWrite(ctx context.Context, reqs []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{s.tableName: reqs}
	for attempt := 0; attempt < maxBatchAttempts; attempt++ {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("batch delete users: %w", err)
		}
		if len(out.UnprocessedItems[s.tableName]) == 0 {
			return nil
		}
		pending = out.UnprocessedItems
		if attempt == maxBatchAttempts-1 {
			break
		}
		// Exponential backoff so a throttled table can drain.
		t := time.NewTimer(s.retryBase << attempt)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("batch delete users: %w", ctx.Err())
		case <-t.C:
		}
	}
	return fmt.Errorf("batch delete users: unprocessed items after %d attempts", maxBatchAttempts)
}
