package repository

import (
	"context"
	"fmt"
	"time"

	"storefront-service/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
)

// DynamoSettingsAdapter is a DynamoDB-backed SettingsRepo. One document per
// tenant, primary key `tenant_id` (string).
type DynamoSettingsAdapter struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoSettingsAdapter(client *dynamodb.Client, table string) *DynamoSettingsAdapter {
	return &DynamoSettingsAdapter{client: client, table: table}
}

type ddbSettings struct {
	TenantID       string         `dynamodbav:"tenant_id"`
	ThemeColor     *string        `dynamodbav:"theme_color,omitempty"`
	BannerURL      *string        `dynamodbav:"banner_url,omitempty"`
	WhatsApp       *string        `dynamodbav:"whatsapp,omitempty"`
	PaymentMethods []string       `dynamodbav:"payment_methods,omitempty"`
	Extra          map[string]any `dynamodbav:"extra,omitempty"`
	UpdatedAt      string         `dynamodbav:"updated_at"`
}

func (d *DynamoSettingsAdapter) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*models.StorefrontSettings, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"tenant_id": tenantID.String()})
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
	var ds ddbSettings
	if err := attributevalue.UnmarshalMap(out.Item, &ds); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	s := &models.StorefrontSettings{
		PaymentMethods: ds.PaymentMethods,
		Extra:          ds.Extra,
	}
	s.TenantID, _ = uuid.Parse(ds.TenantID)
	if ds.ThemeColor != nil {
		s.ThemeColor = *ds.ThemeColor
	}
	if ds.BannerURL != nil {
		s.BannerURL = *ds.BannerURL
	}
	if ds.WhatsApp != nil {
		s.WhatsApp = *ds.WhatsApp
	}
	if t, err := time.Parse(time.RFC3339, ds.UpdatedAt); err == nil {
		s.UpdatedAt = t
	}
	return s, nil
}

// Upsert writes the full document; PutItem overwrites any existing record
// for the tenant, which is the conflict-target semantics the merge step
// relies on.
func (d *DynamoSettingsAdapter) Upsert(ctx context.Context, settings *models.StorefrontSettings) error {
	ds := ddbSettings{
		TenantID:       settings.TenantID.String(),
		PaymentMethods: settings.PaymentMethods,
		Extra:          settings.Extra,
		UpdatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if settings.ThemeColor != "" {
		ds.ThemeColor = &settings.ThemeColor
	}
	if settings.BannerURL != "" {
		ds.BannerURL = &settings.BannerURL
	}
	if settings.WhatsApp != "" {
		ds.WhatsApp = &settings.WhatsApp
	}
	item, err := attributevalue.MarshalMap(ds)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &d.table, Item: item})
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}
