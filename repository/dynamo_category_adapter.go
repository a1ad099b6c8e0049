package repository

import (
	"context"
	"fmt"
	"time"

	"storefront-service/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// DynamoCategoryAdapter is a DynamoDB-backed CategoryRepo. Categories live
// in a table with primary key `category_id` (string).
type DynamoCategoryAdapter struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoCategoryAdapter(client *dynamodb.Client, table string) *DynamoCategoryAdapter {
	return &DynamoCategoryAdapter{client: client, table: table}
}

type ddbCategory struct {
	CategoryID string `dynamodbav:"category_id"`
	TenantID   string `dynamodbav:"tenant_id"`
	Name       string `dynamodbav:"name"`
	Slug       string `dynamodbav:"slug"`
	CreatedAt  string `dynamodbav:"created_at"`
}

func (d *DynamoCategoryAdapter) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Category, error) {
	filterExpr := "tenant_id = :t"
	av, err := attributevalue.Marshal(tenantID.String())
	if err != nil {
		return nil, fmt.Errorf("marshal tenant id: %w", err)
	}
	input := &dynamodb.ScanInput{
		TableName:                 &d.table,
		FilterExpression:          &filterExpr,
		ExpressionAttributeValues: map[string]types.AttributeValue{":t": av},
	}
	var results []models.Category
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan page failed: %w", err)
		}
		for _, it := range page.Items {
			var dc ddbCategory
			if err := attributevalue.UnmarshalMap(it, &dc); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			c := models.Category{Name: dc.Name, Slug: dc.Slug}
			c.ID, _ = uuid.Parse(dc.CategoryID)
			c.TenantID, _ = uuid.Parse(dc.TenantID)
			if t, err := time.Parse(time.RFC3339, dc.CreatedAt); err == nil {
				c.CreatedAt = t
			}
			results = append(results, c)
		}
	}
	return results, nil
}

// CreateMany uses BatchWriteItem (chunks of 25) and retries unprocessed
// items with a simple backoff.
func (d *DynamoCategoryAdapter) CreateMany(ctx context.Context, categories []models.Category) error {
	const chunkSize = 25
	for i := 0; i < len(categories); i += chunkSize {
		end := i + chunkSize
		if end > len(categories) {
			end = len(categories)
		}
		writeReqs := make([]types.WriteRequest, 0, end-i)
		for _, c := range categories[i:end] {
			dc := ddbCategory{
				CategoryID: c.ID.String(),
				TenantID:   c.TenantID.String(),
				Name:       c.Name,
				Slug:       c.Slug,
				CreatedAt:  c.CreatedAt.Format(time.RFC3339),
			}
			item, err := attributevalue.MarshalMap(dc)
			if err != nil {
				return fmt.Errorf("marshal batch item: %w", err)
			}
			writeReqs = append(writeReqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}
		req := &dynamodb.BatchWriteItemInput{RequestItems: map[string][]types.WriteRequest{d.table: writeReqs}}
		attempts := 0
		for {
			out, err := d.client.BatchWriteItem(ctx, req)
			if err != nil {
				return fmt.Errorf("batch write failed: %w", err)
			}
			if len(out.UnprocessedItems) == 0 {
				break
			}
			if unp, ok := out.UnprocessedItems[d.table]; ok && len(unp) > 0 {
				req.RequestItems[d.table] = unp
			} else {
				break
			}
			attempts++
			if attempts >= 3 {
				return fmt.Errorf("batch write had unprocessed items after retries")
			}
			time.Sleep(time.Duration(attempts*300) * time.Millisecond)
		}
	}
	return nil
}
