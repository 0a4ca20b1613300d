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
	"github.com/go-market-api/internal/domain"
)

// ConversationRepo provides typed DynamoDB operations for the conversations table.
type ConversationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewConversationRepo(client *dynamodb.Client, tableName string) *ConversationRepo {
	return &ConversationRepo{client: client, tableName: tableName}
}

func (r *ConversationRepo) Put(ctx context.Context, c *domain.Conversation) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ConversationRepo) Get(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("conversation_id", conversationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("conversation not found: %w", domain.ErrNotFound)
	}
	var c domain.Conversation
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByListingAndBuyer enforces the one-conversation-per-listing-per-buyer rule.
func (r *ConversationRepo) GetByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*domain.Conversation, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("listing_id-buyer_id-index"),
		KeyConditionExpression: aws.String("listing_id = :lid AND buyer_id = :bid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lid": &types.AttributeValueMemberS{Value: listingID},
			":bid": &types.AttributeValueMemberS{Value: buyerID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("conversation not found: %w", domain.ErrNotFound)
	}
	var c domain.Conversation
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUser returns every conversation the user participates in, as buyer or
// seller, most recently active first.
func (r *ConversationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	asBuyer, err := r.queryParticipant(ctx, "buyer_id-index", "buyer_id", userID)
	if err != nil {
		return nil, err
	}
	asSeller, err := r.queryParticipant(ctx, "seller_id-index", "seller_id", userID)
	if err != nil {
		return nil, err
	}
	all := append(asBuyer, asSeller...)
	sort.Slice(all, func(i, j int) bool {
		return all[i].LastMessageAt.After(all[j].LastMessageAt)
	})
	return all, nil
}

// Touch bumps the conversation's last-activity timestamp.
func (r *ConversationRepo) Touch(ctx context.Context, conversationID string, at time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldLastMessageAt: at.UTC().Format(time.RFC3339),
		"updated_at":       at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("conversation_id", conversationID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *ConversationRepo) queryParticipant(ctx context.Context, index, attr, userID string) ([]domain.Conversation, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :uid"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
	})
	if err != nil {
		return nil, err
	}
	var convs []domain.Conversation
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}
