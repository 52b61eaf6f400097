package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
	"github.com/onegateway/site-notify/internal/pkg/awsutil"
)

// PutItemAPI is the slice of the DynamoDB client DynamoStore needs.
type PutItemAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// PutObjectAPI is the slice of the S3 client S3Store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// dynamoItem is keyed PK=SUBMISSION#<id>, SK=<created_at>.
type dynamoItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	row
}

// DynamoStore writes one item per record, refusing to overwrite.
type DynamoStore struct {
	api   PutItemAPI
	table string
}

// OpenDynamo loads AWS config and returns a store on cfg.DynamoDBTable.
func OpenDynamo(ctx context.Context, cfg config.StorageConfig) (*DynamoStore, error) {
	if cfg.DynamoDBTable == "" {
		return nil, errors.New("dynamodb storage requires dynamodb_table")
	}
	awsCfg, err := awsutil.Load(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}
	return NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable), nil
}

func NewDynamoStore(api PutItemAPI, table string) *DynamoStore {
	return &DynamoStore{api: api, table: table}
}

// Insert puts rec with an attribute_not_exists(PK) guard.
func (s *DynamoStore) Insert(ctx context.Context, rec domain.EnrichedRecord) error {
	r := toRow(rec)
	av, err := attributevalue.MarshalMap(dynamoItem{
		PK:  "SUBMISSION#" + r.ID,
		SK:  r.CreatedAt.Format("2006-01-02T15:04:05.000Z"),
		row: r,
	})
	if err != nil {
		return persistErr("dynamodb", fmt.Errorf("marshaling item: %w", err))
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		err = fmt.Errorf("%w: %s", ErrDuplicate, rec.ID)
	}
	return persistErr("dynamodb", err)
}

func (s *DynamoStore) Close() error { return nil }

// S3Store writes one JSON object per record under
// {prefix}YYYY/MM/DD/{id}.json.
type S3Store struct {
	api    PutObjectAPI
	bucket string
	prefix string
}

// OpenS3 loads AWS config and returns a store on cfg.S3Bucket.
func OpenS3(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("s3 storage requires s3_bucket")
	}
	awsCfg, err := awsutil.Load(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}
	return NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix), nil
}

func NewS3Store(api PutObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{api: api, bucket: bucket, prefix: prefix}
}

// Key returns the object key for rec.
func (s *S3Store) Key(rec domain.EnrichedRecord) string {
	return s.prefix + path.Join(rec.CreatedAt.UTC().Format("2006/01/02"), rec.ID+".json")
}

// Insert uploads rec; If-None-Match keeps existing objects untouched.
func (s *S3Store) Insert(ctx context.Context, rec domain.EnrichedRecord) error {
	data, err := json.Marshal(toRow(rec))
	if err != nil {
		return persistErr("s3", err)
	}
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(rec)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	})
	return persistErr("s3", err)
}

func (s *S3Store) Close() error { return nil }
