package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ErrNotFound is returned by adapters when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// DynamoTenantAdapter is a DynamoDB-backed TenantRepo. Tenants live in a
// table with primary key `tenant_id` (string).
type DynamoTenantAdapter struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoTenantAdapter(client *dynamodb.Client, table string) *DynamoTenantAdapter {
	return &DynamoTenantAdapter{client: client, table: table}
}

type ddbTenant struct {
	TenantID  string `dynamodbav:"tenant_id"`
	Name      string `dynamodbav:"name"`
	Slug      string `dynamodbav:"slug"`
	Email     string `dynamodbav:"email"`
	Plan      string `dynamodbav:"plan"`
	ItemLimit int    `dynamodbav:"item_limit"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func (dt ddbTenant) toModel() *models.Tenant {
	t := &models.Tenant{
		Name:      dt.Name,
		Slug:      dt.Slug,
		Email:     dt.Email,
		Plan:      dt.Plan,
		ItemLimit: dt.ItemLimit,
	}
	t.ID, _ = uuid.Parse(dt.TenantID)
	if ts, err := time.Parse(time.RFC3339, dt.CreatedAt); err == nil {
		t.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, dt.UpdatedAt); err == nil {
		t.UpdatedAt = ts
	}
	return t
}

func (d *DynamoTenantAdapter) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"tenant_id": id.String()})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &d.table, Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var dt ddbTenant
	if err := attributevalue.UnmarshalMap(out.Item, &dt); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return dt.toModel(), nil
}

// FindBySlug scans for a tenant by slug. Slugs are unique; the first match
// wins.
func (d *DynamoTenantAdapter) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	filterExpr := "slug = :slug"
	av, err := attributevalue.Marshal(slug)
	if err != nil {
		return nil, fmt.Errorf("marshal slug: %w", err)
	}
	input := &dynamodb.ScanInput{
		TableName:                 &d.table,
		FilterExpression:          &filterExpr,
		ExpressionAttributeValues: map[string]types.AttributeValue{":slug": av},
	}
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan page failed: %w", err)
		}
		for _, it := range page.Items {
			var dt ddbTenant
			if err := attributevalue.UnmarshalMap(it, &dt); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			return dt.toModel(), nil
		}
	}
	return nil, ErrNotFound
}

func (d *DynamoTenantAdapter) UpdateItemLimit(ctx context.Context, id uuid.UUID, limit int) error {
	key, err := attributevalue.MarshalMap(map[string]string{"tenant_id": id.String()})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	expr := "SET item_limit = :v0, updated_at = :v1"
	limitAV, err := attributevalue.Marshal(limit)
	if err != nil {
		return fmt.Errorf("marshal limit: %w", err)
	}
	tsAV, err := attributevalue.Marshal(time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("marshal timestamp: %w", err)
	}
	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &d.table,
		Key:              key,
		UpdateExpression: &expr,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v0": limitAV,
			":v1": tsAV,
		},
	})
	if err != nil {
		return fmt.Errorf("update item failed: %w", err)
	}
	return nil
}
