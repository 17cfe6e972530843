package repository

import (
	"context"
	"time"

	"cotizador/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultEventCalendarTableName = "event_calendar"

type calendarDateItem struct {
	Date    string `dynamodbav:"date"`
	EventID string `dynamodbav:"event_id"`
}

// AvailabilityDynamoRepository answers the date-availability question from
// the event calendar table.
//
// Table requirements:
//   - PK: date (string, YYYY-MM-DD)
//
// A date is free when nothing holds it, or when the holder is the event
// asking (re-checking its own date must not block its own commit).
type AvailabilityDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IDateAvailability = (*AvailabilityDynamoRepository)(nil)

func NewAvailabilityDynamoRepository(ddb *dynamodb.Client) *AvailabilityDynamoRepository {
	return &AvailabilityDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("EVENT_CALENDAR_TABLE", defaultEventCalendarTableName),
	}
}

func (r *AvailabilityDynamoRepository) IsDateAvailable(ctx context.Context, date time.Time, eventID string) (bool, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"date": &types.AttributeValueMemberS{Value: date.Format("2006-01-02")},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, err
	}
	if len(out.Item) == 0 {
		return true, nil
	}

	var it calendarDateItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return false, err
	}
	return it.EventID == "" || it.EventID == eventID, nil
}
