package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"askbot/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// dynamodbAPI is the minimal DynamoDB interface required by StateRepo.
// *dynamodb.Client satisfies it.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// StateRepo keeps conversation state in a DynamoDB table keyed by PK = "USER#<id>".
// Used by the Lambda deployment where process memory does not outlive a request.
type StateRepo struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration
}

// NewStateRepo creates a DynamoDB backed state store
func NewStateRepo(api dynamodbAPI, tableName string, ttl time.Duration) (*StateRepo, error) {
	if api == nil {
		return nil, errors.New("dynamodb state: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("dynamodb state: table name must not be empty")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &StateRepo{api: api, tableName: tableName, ttl: ttl}, nil
}

func userPK(telegramID int64) string {
	return "USER#" + strconv.FormatInt(telegramID, 10)
}

func (r *StateRepo) key(telegramID int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: userPK(telegramID)},
	}
}

// GetState returns the stored state; missing or expired items read as idle
func (r *StateRepo) GetState(ctx context.Context, telegramID int64) (domain.ConversationState, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            r.key(telegramID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("dynamodb state: get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.StateIdle, nil
	}

	// TTL deletion is lazy, so expired items may still be returned
	if ttlAttr, ok := out.Item["ttl"].(*types.AttributeValueMemberN); ok {
		expires, err := strconv.ParseInt(ttlAttr.Value, 10, 64)
		if err == nil && expires < time.Now().Unix() {
			return domain.StateIdle, nil
		}
	}

	stateAttr, ok := out.Item["state"].(*types.AttributeValueMemberS)
	if !ok {
		return domain.StateIdle, nil
	}
	state := domain.ConversationState(stateAttr.Value)
	if !state.Valid() {
		return domain.StateIdle, nil
	}
	return state, nil
}

// SetState writes the state; idle deletes the item
func (r *StateRepo) SetState(ctx context.Context, telegramID int64, state domain.ConversationState) error {
	if state == domain.StateIdle {
		_, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       r.key(telegramID),
		})
		if err != nil {
			return fmt.Errorf("dynamodb state: delete item: %w", err)
		}
		return nil
	}

	item := r.key(telegramID)
	item["state"] = &types.AttributeValueMemberS{Value: string(state)}
	item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Add(r.ttl).Unix(), 10)}

	_, err := r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb state: put item: %w", err)
	}
	return nil
}
