package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-market-api/internal/domain"
)

// ListingRepo provides typed DynamoDB operations for the listings table.
type ListingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewListingRepo(client *dynamodb.Client, tableName string) *ListingRepo {
	return &ListingRepo{client: client, tableName: tableName}
}

func (r *ListingRepo) Put(ctx context.Context, l *domain.Listing) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ListingRepo) Get(ctx context.Context, listingID string) (*domain.Listing, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("listing_id", listingID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("listing not found: %w", domain.ErrNotFound)
	}
	var l domain.Listing
	if err := attributevalue.UnmarshalMap(out.Item, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepo) Update(ctx context.Context, listingID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("listing_id", listingID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *ListingRepo) SoftDelete(ctx context.Context, listingID string) error {
	return r.Update(ctx, listingID, map[string]interface{}{fieldEnable: false})
}

// ListBySeller queries the seller GSI, newest first.
func (r *ListingRepo) ListBySeller(ctx context.Context, sellerID string) ([]domain.Listing, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("seller_id-created_at-index"),
		KeyConditionExpression: aws.String("seller_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: sellerID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var listings []domain.Listing
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Search scans the table with dynamic filters. Keyword matching uses
// contains() against the title, which is fine for a neighborhood-scale
// catalogue; a real search index is out of scope.
func (r *ListingRepo) Search(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, string, error) {
	filters := []string{"enable = :t"}
	names := map[string]string{}
	values := map[string]types.AttributeValue{
		":t": &types.AttributeValueMemberBOOL{Value: true},
	}
	if q.Keyword != "" {
		filters = append(filters, "contains(title, :kw)")
		values[":kw"] = &types.AttributeValueMemberS{Value: q.Keyword}
	}
	if q.Category != "" {
		filters = append(filters, "category = :cat")
		values[":cat"] = &types.AttributeValueMemberS{Value: q.Category}
	}
	if q.Status != "" {
		filters = append(filters, "#st = :st")
		names["#st"] = fieldListingStatus
		values[":st"] = &types.AttributeValueMemberS{Value: q.Status}
	}
	if q.SellerID != "" {
		filters = append(filters, "seller_id = :sid")
		values[":sid"] = &types.AttributeValueMemberS{Value: q.SellerID}
	}

	limit := q.Limit
	if limit < 1 {
		limit = 50
	}
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(strings.Join(filters, " AND ")),
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(limit),
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	if q.Cursor != "" {
		listingID, err := decodeCursor(q.Cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("listing_id", listingID)
	}

	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var listings []domain.Listing
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &listings); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["listing_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return listings, nextCursor, nil
}
