package main

import (
	"fmt"
	"os"
)

// Config holds all environment variables for the storefront-service.
type Config struct {
	Port   string // Service port (default: 8084)
	APIKey string // Pre-shared key for the /api/v1 transfer surface

	RedisURL string

	AWSRegion     string
	AWSEndpoint   string // e.g. http://localstack:4566
	AWSS3Endpoint string
	S3Bucket      string
	CDNDomain     string

	TenantsTable    string
	ProductsTable   string
	ImagesTable     string
	CategoriesTable string
	SettingsTable   string
}

// LoadConfig loads environment variables into Config and validates them.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            os.Getenv("PORT"),
		APIKey:          os.Getenv("TRANSFER_API_KEY"),
		RedisURL:        os.Getenv("REDIS_URL"),
		AWSRegion:       os.Getenv("AWS_REGION"),
		AWSEndpoint:     os.Getenv("AWS_ENDPOINT"),
		AWSS3Endpoint:   os.Getenv("AWS_S3_ENDPOINT"),
		S3Bucket:        os.Getenv("AWS_S3_BUCKET"),
		CDNDomain:       os.Getenv("AWS_CLOUDFRONT_DOMAIN"),
		TenantsTable:    os.Getenv("DDB_TABLE_TENANTS"),
		ProductsTable:   os.Getenv("DDB_TABLE_PRODUCTS"),
		ImagesTable:     os.Getenv("DDB_TABLE_PRODUCT_IMAGES"),
		CategoriesTable: os.Getenv("DDB_TABLE_CATEGORIES"),
		SettingsTable:   os.Getenv("DDB_TABLE_SETTINGS"),
	}

	if cfg.Port == "" {
		cfg.Port = "8084"
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "redis://redis:6379"
	}
	if cfg.AWSRegion == "" {
		cfg.AWSRegion = "us-east-1"
	}
	if cfg.AWSS3Endpoint == "" {
		cfg.AWSS3Endpoint = cfg.AWSEndpoint
	}
	if cfg.S3Bucket == "" {
		cfg.S3Bucket = "storefront"
	}
	if cfg.TenantsTable == "" {
		cfg.TenantsTable = "Tenants"
	}
	if cfg.ProductsTable == "" {
		cfg.ProductsTable = "Products"
	}
	if cfg.ImagesTable == "" {
		cfg.ImagesTable = "ProductImages"
	}
	if cfg.CategoriesTable == "" {
		cfg.CategoriesTable = "Categories"
	}
	if cfg.SettingsTable == "" {
		cfg.SettingsTable = "StorefrontSettings"
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("TRANSFER_API_KEY is required")
	}

	return cfg, nil
}
