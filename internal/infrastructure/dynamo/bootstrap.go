package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type tableAPI interface {
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Bootstrap creates the users table if it doesn't already exist. Items are
// keyed by email (hash) and user_id (range) so lookups by address hit the base
// table and can be strongly consistent. Safe to call on every startup.
func Bootstrap(ctx context.Context, client tableAPI, table string) error {
	return createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrEmail), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrUserID), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrEmail), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(attrUserID), KeyType: types.KeyTypeRange},
		},
	})
}

func createTable(ctx context.Context, client tableAPI, input *dynamodb.CreateTableInput) error {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		var riue *types.ResourceInUseException
		if errors.As(err, &riue) {
			return nil
		}
		slog.Warn("could not create table", "table", *input.TableName, "err", err)
		return err
	}
	slog.Info("created table", "table", *input.TableName)
	return nil
}
