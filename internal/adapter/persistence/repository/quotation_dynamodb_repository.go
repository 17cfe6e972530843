package repository

import (
	"context"
	"errors"
	"time"

	"cotizador/internal/domain/entities"
	"cotizador/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultQuotationsTableName = "quotations"
	quotationsEventIDIndex     = "event_id-index"
)

type lineItemItem struct {
	ID             string  `dynamodbav:"id"`
	CategoryID     string  `dynamodbav:"category_id"`
	Cost           float64 `dynamodbav:"cost"`
	Expense        float64 `dynamodbav:"expense"`
	PublicPrice    float64 `dynamodbav:"public_price"`
	EmbeddedMargin float64 `dynamodbav:"embedded_margin"`
	Quantity       int     `dynamodbav:"quantity"`
	Position       int     `dynamodbav:"position"`
}

type quotationItem struct {
	ID                      string         `dynamodbav:"id"`
	EventID                 string         `dynamodbav:"event_id"`
	Name                    string         `dynamodbav:"name"`
	EventDate               string         `dynamodbav:"event_date"`
	ValidUntil              string         `dynamodbav:"valid_until"`
	Status                  string         `dynamodbav:"status"`
	LineItems               []lineItemItem `dynamodbav:"line_items"`
	SelectedConditionID     string         `dynamodbav:"selected_condition_id,omitempty"`
	SelectedPaymentMethodID string         `dynamodbav:"selected_payment_method_id,omitempty"`
	CreatedAt               string         `dynamodbav:"created_at"`
	UpdatedAt               string         `dynamodbav:"updated_at"`
}

// QuotationDynamoRepository persists Quotation entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: event_id-index (PK: event_id)
//
// Line items live inline on the quotation item; the quotation owns them and
// every surface reads them together with the header in one fetch.
type QuotationDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IQuotationRepository = (*QuotationDynamoRepository)(nil)

func NewQuotationDynamoRepository(ddb *dynamodb.Client) *QuotationDynamoRepository {
	return &QuotationDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("QUOTATIONS_TABLE", defaultQuotationsTableName),
	}
}

func (r *QuotationDynamoRepository) Create(ctx context.Context, q entities.Quotation) (entities.Quotation, error) {
	it := toQuotationItem(q)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Quotation{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Quotation{}, err
	}
	return q, nil
}

func (r *QuotationDynamoRepository) GetByID(ctx context.Context, id string) (entities.Quotation, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Quotation{}, err
	}
	if len(out.Item) == 0 {
		return entities.Quotation{}, nil
	}

	var it quotationItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Quotation{}, err
	}
	return fromQuotationItem(it), nil
}

func (r *QuotationDynamoRepository) GetByEventID(ctx context.Context, eventID string) (entities.Quotation, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(quotationsEventIDIndex),
		KeyConditionExpression: aws.String("event_id = :eid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":eid": &types.AttributeValueMemberS{Value: eventID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Quotation{}, err
	}
	if len(out.Items) == 0 {
		return entities.Quotation{}, nil
	}

	var it quotationItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return entities.Quotation{}, err
	}
	return fromQuotationItem(it), nil
}

func (r *QuotationDynamoRepository) UpdateLineItems(ctx context.Context, id string, items []entities.LineItem) (entities.Quotation, error) {
	lineItems := make([]lineItemItem, 0, len(items))
	for _, li := range items {
		lineItems = append(lineItems, toLineItemItem(li))
	}
	itemsAV, err := attributevalue.Marshal(lineItems)
	if err != nil {
		return entities.Quotation{}, err
	}

	return r.update(ctx, id, func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #line_items = :line_items, #updated_at = :updated_at"
		vals := map[string]types.AttributeValue{
			":line_items": itemsAV,
			":updated_at": &types.AttributeValueMemberS{Value: now},
		}
		names := map[string]string{
			"#line_items": "line_items",
			"#updated_at": "updated_at",
		}
		return expr, vals, names
	})
}

func (r *QuotationDynamoRepository) UpdateTerms(ctx context.Context, id, conditionID, paymentMethodID string) (entities.Quotation, error) {
	return r.update(ctx, id, func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #condition_id = :condition_id, #method_id = :method_id, #updated_at = :updated_at"
		vals := map[string]types.AttributeValue{
			":condition_id": &types.AttributeValueMemberS{Value: conditionID},
			":method_id":    &types.AttributeValueMemberS{Value: paymentMethodID},
			":updated_at":   &types.AttributeValueMemberS{Value: now},
		}
		names := map[string]string{
			"#condition_id": "selected_condition_id",
			"#method_id":    "selected_payment_method_id",
			"#updated_at":   "updated_at",
		}
		return expr, vals, names
	})
}

func (r *QuotationDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.QuotationStatus) (entities.Quotation, error) {
	return r.update(ctx, id, func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #status = :status, #updated_at = :updated_at"
		vals := map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(status)},
			":updated_at": &types.AttributeValueMemberS{Value: now},
		}
		names := map[string]string{
			"#status":     "status",
			"#updated_at": "updated_at",
		}
		return expr, vals, names
	})
}

func (r *QuotationDynamoRepository) update(
	ctx context.Context,
	id string,
	build func(now string) (updateExpr string, values map[string]types.AttributeValue, names map[string]string),
) (entities.Quotation, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	updateExpr, values, names := build(now)

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Quotation{}, nil
		}
		return entities.Quotation{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Quotation{}, nil
	}
	var it quotationItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Quotation{}, err
	}
	return fromQuotationItem(it), nil
}

func toLineItemItem(li entities.LineItem) lineItemItem {
	return lineItemItem{
		ID:             li.ID,
		CategoryID:     li.CategoryID,
		Cost:           li.Cost,
		Expense:        li.Expense,
		PublicPrice:    li.PublicPrice,
		EmbeddedMargin: li.EmbeddedMargin,
		Quantity:       li.Quantity,
		Position:       li.Position,
	}
}

func fromLineItemItem(it lineItemItem) entities.LineItem {
	return entities.LineItem{
		ID:             it.ID,
		CategoryID:     it.CategoryID,
		Cost:           it.Cost,
		Expense:        it.Expense,
		PublicPrice:    it.PublicPrice,
		EmbeddedMargin: it.EmbeddedMargin,
		Quantity:       it.Quantity,
		Position:       it.Position,
	}
}

func toQuotationItem(q entities.Quotation) quotationItem {
	lineItems := make([]lineItemItem, 0, len(q.LineItems))
	for _, li := range q.LineItems {
		lineItems = append(lineItems, toLineItemItem(li))
	}
	return quotationItem{
		ID:                      q.ID,
		EventID:                 q.EventID,
		Name:                    q.Name,
		EventDate:               q.EventDate.UTC().Format(time.RFC3339Nano),
		ValidUntil:              q.ValidUntil.UTC().Format(time.RFC3339Nano),
		Status:                  string(q.Status),
		LineItems:               lineItems,
		SelectedConditionID:     q.SelectedConditionID,
		SelectedPaymentMethodID: q.SelectedPaymentMethodID,
		CreatedAt:               q.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:               q.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromQuotationItem(it quotationItem) entities.Quotation {
	eventDate, _ := time.Parse(time.RFC3339Nano, it.EventDate)
	validUntil, _ := time.Parse(time.RFC3339Nano, it.ValidUntil)
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	lineItems := make([]entities.LineItem, 0, len(it.LineItems))
	for _, li := range it.LineItems {
		lineItems = append(lineItems, fromLineItemItem(li))
	}
	return entities.Quotation{
		ID:                      it.ID,
		EventID:                 it.EventID,
		Name:                    it.Name,
		EventDate:               eventDate,
		ValidUntil:              validUntil,
		Status:                  entities.QuotationStatus(it.Status),
		LineItems:               lineItems,
		SelectedConditionID:     it.SelectedConditionID,
		SelectedPaymentMethodID: it.SelectedPaymentMethodID,
		CreatedAt:               createdAt,
		UpdatedAt:               updatedAt,
	}
}
