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

// DynamoProductAdapter is a DynamoDB-backed ProductRepo. Products live in a
// table with primary key `product_id` (string).
type DynamoProductAdapter struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoProductAdapter(client *dynamodb.Client, table string) *DynamoProductAdapter {
	return &DynamoProductAdapter{client: client, table: table}
}

type ddbProduct struct {
	ProductID        string   `dynamodbav:"product_id"`
	TenantID         string   `dynamodbav:"tenant_id"`
	Title            string   `dynamodbav:"title"`
	Description      *string  `dynamodbav:"description,omitempty"`
	Price            float64  `dynamodbav:"price"`
	PromoPrice       *float64 `dynamodbav:"promo_price,omitempty"`
	Brand            *string  `dynamodbav:"brand,omitempty"`
	Sizes            []string `dynamodbav:"sizes,omitempty"`
	Colors           []string `dynamodbav:"colors,omitempty"`
	CategoryID       *string  `dynamodbav:"category_id,omitempty"`
	FeaturedImageURL *string  `dynamodbav:"featured_image_url,omitempty"`
	Visible          bool     `dynamodbav:"visible"`
	CreatedAt        string   `dynamodbav:"created_at"`
	UpdatedAt        string   `dynamodbav:"updated_at"`
}

func fromProduct(p models.Product) ddbProduct {
	dp := ddbProduct{
		ProductID:  p.ID.String(),
		TenantID:   p.TenantID.String(),
		Title:      p.Title,
		Price:      p.Price,
		PromoPrice: p.PromoPrice,
		Sizes:      p.Sizes,
		Colors:     p.Colors,
		Visible:    p.Visible,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Description != "" {
		dp.Description = &p.Description
	}
	if p.Brand != "" {
		dp.Brand = &p.Brand
	}
	if p.CategoryID != nil {
		s := p.CategoryID.String()
		dp.CategoryID = &s
	}
	if p.FeaturedImageURL != "" {
		dp.FeaturedImageURL = &p.FeaturedImageURL
	}
	return dp
}

func (dp ddbProduct) toModel() *models.Product {
	p := &models.Product{
		Title:      dp.Title,
		Price:      dp.Price,
		PromoPrice: dp.PromoPrice,
		Sizes:      dp.Sizes,
		Colors:     dp.Colors,
		Visible:    dp.Visible,
	}
	p.ID, _ = uuid.Parse(dp.ProductID)
	p.TenantID, _ = uuid.Parse(dp.TenantID)
	if dp.Description != nil {
		p.Description = *dp.Description
	}
	if dp.Brand != nil {
		p.Brand = *dp.Brand
	}
	if dp.CategoryID != nil {
		if u, err := uuid.Parse(*dp.CategoryID); err == nil {
			p.CategoryID = &u
		}
	}
	if dp.FeaturedImageURL != nil {
		p.FeaturedImageURL = *dp.FeaturedImageURL
	}
	if t, err := time.Parse(time.RFC3339, dp.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, dp.UpdatedAt); err == nil {
		p.UpdatedAt = t
	}
	return p
}

// FindByTenant scans for all products owned by the tenant. No ordering is
// imposed beyond what the store returns.
func (d *DynamoProductAdapter) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error) {
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
	var results []*models.Product
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan page failed: %w", err)
		}
		for _, it := range page.Items {
			var dp ddbProduct
			if err := attributevalue.UnmarshalMap(it, &dp); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			results = append(results, dp.toModel())
		}
	}
	return results, nil
}

func (d *DynamoProductAdapter) Create(ctx context.Context, product *models.Product) error {
	item, err := attributevalue.MarshalMap(fromProduct(*product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &d.table, Item: item})
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

// CreateMany uses BatchWriteItem (chunks of 25) and retries unprocessed
// items with a simple backoff.
func (d *DynamoProductAdapter) CreateMany(ctx context.Context, products []models.Product) error {
	const chunkSize = 25
	for i := 0; i < len(products); i += chunkSize {
		end := i + chunkSize
		if end > len(products) {
			end = len(products)
		}
		writeReqs := make([]types.WriteRequest, 0, end-i)
		for _, p := range products[i:end] {
			item, err := attributevalue.MarshalMap(fromProduct(p))
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

// Update performs UpdateItem by setting the provided attributes.
func (d *DynamoProductAdapter) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	expr := "SET "
	exprVals := make(map[string]types.AttributeValue)
	i := 0
	for k, v := range updates {
		ph := fmt.Sprintf(":v%d", i)
		if i > 0 {
			expr += ", "
		}
		expr += fmt.Sprintf("%s = %s", k, ph)
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal update value: %w", err)
		}
		exprVals[ph] = av
		i++
	}
	key, err := attributevalue.MarshalMap(map[string]string{"product_id": id.String()})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &d.table,
		Key:                       key,
		UpdateExpression:          &expr,
		ExpressionAttributeValues: exprVals,
	})
	if err != nil {
		return fmt.Errorf("update item failed: %w", err)
	}
	return nil
}
