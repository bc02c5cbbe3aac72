package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	attrUserID = "user_id"
	attrEmail  = "email"

	// BatchWriteItem accepts at most 25 requests per call.
	maxBatchWrite = 25
)

// userKey builds the composite primary key of one user item.
func userKey(email, userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrEmail:  &types.AttributeValueMemberS{Value: email},
		attrUserID: &types.AttributeValueMemberS{Value: userID},
	}
}

// chunk splits items into consecutive slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for size < len(items) {
		items, out = items[size:], append(out, items[:size])
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
