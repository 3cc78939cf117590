package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookvault/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by the repository.
// Narrowed to an interface so tests can substitute a fake.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// dynamoUser mirrors the item layout of the users table. The password hash
// lives in the "password" attribute, matching the records already in the table.
type dynamoUser struct {
	Email     string    `dynamodbav:"email"`
	Name      string    `dynamodbav:"name"`
	Password  string    `dynamodbav:"password"`
	Role      string    `dynamodbav:"role"`
	CreatedAt time.Time `dynamodbav:"created_at,unixtime"`
}

type dynamoUserRepository struct {
	db    DynamoAPI
	table string
}

// NewDynamoUserRepository creates a UserRepository backed by a DynamoDB table
// keyed by email.
func NewDynamoUserRepository(db DynamoAPI, table string) UserRepository {
	return &dynamoUserRepository{db: db, table: table}
}

func emailKey(email string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"email": &types.AttributeValueMemberS{Value: email},
	}
}

// Create puts a new user item, failing with ErrAlreadyExists if the email key
// is already present. The conditional put makes the existence check and the
// write a single atomic operation.
func (r *dynamoUserRepository) Create(ctx context.Context, user *model.User) error {
	item, err := attributevalue.MarshalMap(dynamoUser{
		Email:     user.Email,
		Name:      user.Name,
		Password:  user.PasswordHash,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal user item: %w", err)
	}

	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user item by its email key.
func (r *dynamoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       emailKey(email),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var item dynamoUser
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user item: %w", err)
	}

	return &model.User{
		Email:        item.Email,
		Name:         item.Name,
		PasswordHash: item.Password,
		Role:         item.Role,
		CreatedAt:    item.CreatedAt,
	}, nil
}

// UpdatePassword replaces the stored password hash for an existing user.
func (r *dynamoUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	_, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 emailKey(email),
		UpdateExpression:    aws.String("SET password = :p"),
		ConditionExpression: aws.String("attribute_exists(email)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: passwordHash},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Delete removes the user item for the given email key.
func (r *dynamoUserRepository) Delete(ctx context.Context, email string) error {
	_, err := r.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 emailKey(email),
		ConditionExpression: aws.String("attribute_exists(email)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Ping checks that the users table is reachable.
func (r *dynamoUserRepository) Ping(ctx context.Context) error {
	_, err := r.db.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.table),
	})
	if err != nil {
		return fmt.Errorf("users table unreachable: %w", err)
	}
	return nil
}
