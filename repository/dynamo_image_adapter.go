package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront-service/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// DynamoImageAdapter is a DynamoDB-backed ImageRepo. Image records live in
// a table with primary key `image_id` (string).
type DynamoImageAdapter struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoImageAdapter(client *dynamodb.Client, table string) *DynamoImageAdapter {
	return &DynamoImageAdapter{client: client, table: table}
}

type ddbImage struct {
	ImageID    string `dynamodbav:"image_id"`
	ProductID  string `dynamodbav:"product_id"`
	URL        string `dynamodbav:"url"`
	StorageKey string `dynamodbav:"storage_key"`
	IsFeatured bool   `dynamodbav:"is_featured"`
	Position   int    `dynamodbav:"position"`
	CreatedAt  string `dynamodbav:"created_at"`
}

// FindByProduct returns the product's images ordered by position.
func (d *DynamoImageAdapter) FindByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	filterExpr := "product_id = :p"
	av, err := attributevalue.Marshal(productID.String())
	if err != nil {
		return nil, fmt.Errorf("marshal product id: %w", err)
	}
	input := &dynamodb.ScanInput{
		TableName:                 &d.table,
		FilterExpression:          &filterExpr,
		ExpressionAttributeValues: map[string]types.AttributeValue{":p": av},
	}
	var results []models.ProductImage
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan page failed: %w", err)
		}
		for _, it := range page.Items {
			var di ddbImage
			if err := attributevalue.UnmarshalMap(it, &di); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			img := models.ProductImage{
				URL:        di.URL,
				StorageKey: di.StorageKey,
				IsFeatured: di.IsFeatured,
				Position:   di.Position,
			}
			img.ID, _ = uuid.Parse(di.ImageID)
			img.ProductID, _ = uuid.Parse(di.ProductID)
			if t, err := time.Parse(time.RFC3339, di.CreatedAt); err == nil {
				img.CreatedAt = t
			}
			results = append(results, img)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Position < results[j].Position })
	return results, nil
}

func (d *DynamoImageAdapter) Create(ctx context.Context, image *models.ProductImage) error {
	di := ddbImage{
		ImageID:    image.ID.String(),
		ProductID:  image.ProductID.String(),
		URL:        image.URL,
		StorageKey: image.StorageKey,
		IsFeatured: image.IsFeatured,
		Position:   image.Position,
		CreatedAt:  image.CreatedAt.Format(time.RFC3339),
	}
	item, err := attributevalue.MarshalMap(di)
	if err != nil {
		return fmt.Errorf("marshal image: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &d.table, Item: item})
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}
