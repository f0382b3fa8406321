package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avasiljevs/stockroom/internal/common"
	"github.com/avasiljevs/stockroom/internal/dbx"
	"github.com/avasiljevs/stockroom/internal/logging"
	sc "github.com/avasiljevs/stockroom/internal/server/config"
	"github.com/avasiljevs/stockroom/internal/server/models"
	"github.com/avasiljevs/stockroom/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

// ProductService implements catalog operations over the products and items
// repositories plus presigned-URL access to product images in S3-compatible
// object storage.
type ProductService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, l logging.Logger) *ProductService {
	return &ProductService{
		db:          db,
		repomanager: m,
		config:      cfg,
		logger:      l.With("module", "product_service"),
	}
}

// randomStorageKey returns a date-partitioned object key for a new image.
func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("products/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.repomanager.Products(s.db).GetByID(ctx, id)
}

// List returns one page of products. Page numbers start at 1; out-of-range
// values fall back to the first page with the default size.
func (s *ProductService) List(ctx context.Context, page, pageSize int) ([]*models.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return s.repomanager.Products(s.db).SelectPage(ctx, pageSize, (page-1)*pageSize)
}

// Create stores a new product stamped with the creating user and time.
func (s *ProductService) Create(ctx context.Context, name, createdBy string) (*models.Product, error) {
	product := &models.Product{
		ProductName: name,
		CreatedBy:   createdBy,
		CreatedOn:   time.Now(),
	}

	s.logger.Info(ctx, "creating product", "product_name", name, "created_by", createdBy)

	product, err := s.repomanager.Products(s.db).Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("error creating product: %w", err)
	}
	return product, nil
}

// Update renames a product and stamps the modifying user and time.
func (s *ProductService) Update(ctx context.Context, id int64, name, modifiedBy string) error {
	product := &models.Product{
		ID:          id,
		ProductName: name,
		ModifiedBy:  modifiedBy,
		ModifiedOn:  time.Now(),
	}

	s.logger.Info(ctx, "updating product", "product_id", id, "modified_by", modifiedBy)

	return s.repomanager.Products(s.db).Update(ctx, product)
}

// Delete removes a product and all of its items in a single transaction.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	s.logger.Info(ctx, "deleting product", "product_id", id)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Items(tx).DeleteByProduct(ctx, id); err != nil {
			return fmt.Errorf("error deleting product items: %w", err)
		}
		if err := s.repomanager.Products(tx).Delete(ctx, id); err != nil {
			return err
		}
		return nil
	})
}

// Items lists the stock lines of a product. An absent product yields a
// not-found error rather than an empty list.
func (s *ProductService) Items(ctx context.Context, productID int64) ([]*models.Item, error) {
	if _, err := s.repomanager.Products(s.db).GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.repomanager.Items(s.db).SelectByProduct(ctx, productID)
}

// AddItem appends a stock line to an existing product.
func (s *ProductService) AddItem(ctx context.Context, productID int64, quantity int) (*models.Item, error) {
	if _, err := s.repomanager.Products(s.db).GetByID(ctx, productID); err != nil {
		return nil, err
	}

	item := &models.Item{ProductID: productID, Quantity: quantity}
	item, err := s.repomanager.Items(s.db).Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("error creating item: %w", err)
	}
	return item, nil
}

func (s *ProductService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// ImageUploadURL generates a storage key for the product image, records it
// on the product, and returns the key together with a presigned PUT URL the
// caller uploads to directly.
func (s *ProductService) ImageUploadURL(ctx context.Context, productID int64) (string, string, error) {
	if _, err := s.repomanager.Products(s.db).GetByID(ctx, productID); err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := randomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", "", err
	}

	if err := s.repomanager.Products(s.db).SetImageKey(ctx, productID, key); err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// ImageDownloadURL returns a presigned GET URL for the product image.
// Products without an uploaded image yield a not-found error.
func (s *ProductService) ImageDownloadURL(ctx context.Context, productID int64) (string, error) {
	product, err := s.repomanager.Products(s.db).GetByID(ctx, productID)
	if err != nil {
		return "", err
	}
	if product.ImageKey == "" {
		return "", common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &product.ImageKey,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
