// Package dynamo implements the meal repository on Amazon DynamoDB. Items
// are keyed by user_id (hash) and meal_id (range); meal IDs are UUIDv7
// strings, so range order is capture order.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"nutrisnap/internal/domain"
)

// API is the subset of the DynamoDB client used here.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Store is a DynamoDB-backed meal repository.
type Store struct {
	client API
	table  string
	now    func() time.Time
}

var _ domain.MealRepository = (*Store)(nil)

// New creates a Store over table.
func New(client API, table string) *Store {
	return &Store{client: client, table: table, now: time.Now}
}

// WithClock overrides the clock used to evaluate fetch windows.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Save writes the meal item, replacing any item with the same key.
func (s *Store) Save(ctx context.Context, m domain.MealRecord) error {
	av, err := attributevalue.MarshalMap(toItem(m))
	if err != nil {
		return fmt.Errorf("marshal meal %s: %w", m.MealID, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	return err
}

// FetchRecent queries the user's partition newest first, starting at the
// UUIDv7 floor of the window start, and pages until limit items are read.
//
// Legacy items keyed by ISO timestamps sort above every UUIDv7, so they are
// read first whatever their age. They do not count toward limit while paging;
// the merged result is ordered by capture time before truncation.
func (s *Store) FetchRecent(ctx context.Context, userID string, windowDays, limit int) ([]domain.MealRecord, error) {
	cutoff := s.now().Add(-time.Duration(windowDays) * 24 * time.Hour)
	var legacy, current []domain.MealRecord

	var startKey map[string]types.AttributeValue
	for {
		resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			KeyConditionExpression: aws.String("user_id = :uid AND meal_id >= :cutoff"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid":    &types.AttributeValueMemberS{Value: userID},
				":cutoff": &types.AttributeValueMemberS{Value: CutoffKey(cutoff)},
			},
			ScanIndexForward:  aws.Bool(false),
			Limit:             aws.Int32(int32(limit - len(current))),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		for _, av := range resp.Items {
			m, err := decodeItem(av)
			if err != nil {
				return nil, err
			}
			if m.Timestamp.Before(cutoff) {
				continue
			}
			if isLegacyID(m.MealID) {
				legacy = append(legacy, m)
			} else {
				current = append(current, m)
			}
		}
		startKey = resp.LastEvaluatedKey
		if len(startKey) == 0 || len(current) >= limit {
			break
		}
	}

	out := append(current, legacy...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []domain.MealRecord{}
	}
	return out, nil
}

// isLegacyID reports whether id predates UUIDv7 meal IDs.
func isLegacyID(id string) bool {
	u, err := uuid.Parse(id)
	return err != nil || u.Version() != 7
}

// RecordFeeling overwrites the feedback attributes of an existing meal.
func (s *Store) RecordFeeling(ctx context.Context, userID, mealID string, feeling int, symptoms []string, at time.Time) error {
	if symptoms == nil {
		symptoms = []string{}
	}
	sym, err := attributevalue.Marshal(symptoms)
	if err != nil {
		return err
	}
	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
			"meal_id": &types.AttributeValueMemberS{Value: mealID},
		},
		UpdateExpression:    aws.String("SET feeling = :f, symptoms = :s, feeling_timestamp = :ft"),
		ConditionExpression: aws.String("attribute_exists(meal_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":f":  &types.AttributeValueMemberN{Value: fmt.Sprint(feeling)},
			":s":  sym,
			":ft": &types.AttributeValueMemberS{Value: at.Format(time.RFC3339Nano)},
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return domain.ErrMealNotFound
	}
	return err
}

// CutoffKey returns the smallest UUIDv7 string for the millisecond of t.
// Every meal ID generated at or after t sorts at or above it.
func CutoffKey(t time.Time) string {
	var u uuid.UUID
	ms := uint64(t.UnixMilli())
	u[0] = byte(ms >> 40)
	u[1] = byte(ms >> 32)
	u[2] = byte(ms >> 24)
	u[3] = byte(ms >> 16)
	u[4] = byte(ms >> 8)
	u[5] = byte(ms)
	u[6] = 0x70 // version 7
	u[8] = 0x80 // RFC 4122 variant
	return u.String()
}
