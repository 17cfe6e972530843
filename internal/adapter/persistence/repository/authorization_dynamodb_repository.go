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

const defaultAuthorizationsTableName = "authorizations"

type adjustmentDiscountItem struct {
	Concept string  `dynamodbav:"concept"`
	Kind    string  `dynamodbav:"kind"`
	Value   float64 `dynamodbav:"value"`
}

type adjustmentItem struct {
	TotalOriginal   float64                  `dynamodbav:"total_original"`
	TotalFinal      float64                  `dynamodbav:"total_final"`
	AdvanceOriginal float64                  `dynamodbav:"advance_original"`
	AdvanceFinal    float64                  `dynamodbav:"advance_final"`
	AdvancePercent  float64                  `dynamodbav:"advance_percent"`
	Discounts       []adjustmentDiscountItem `dynamodbav:"discounts"`
	Notes           string                   `dynamodbav:"notes,omitempty"`
}

type methodSelectionItem struct {
	BankAccountID string `dynamodbav:"bank_account_id"`
	TransferKind  string `dynamodbav:"transfer_kind"`
	RequiresProof bool   `dynamodbav:"requires_proof"`
}

type calendarItem struct {
	AdvanceDueDate       string  `dynamodbav:"advance_due_date"`
	RevenueShareDueDate  string  `dynamodbav:"revenue_share_due_date"`
	PenaltyEnabled       bool    `dynamodbav:"penalty_enabled"`
	PenaltyDailyPercent  float64 `dynamodbav:"penalty_daily_percent,omitempty"`
	EarlyEnabled         bool    `dynamodbav:"early_payment_enabled"`
	EarlyPercent         float64 `dynamodbav:"early_payment_percent,omitempty"`
	EarlyDaysAhead       int     `dynamodbav:"early_payment_days_ahead,omitempty"`
}

type authorizationItem struct {
	QuotationID string              `dynamodbav:"quotation_id"`
	Adjustment  adjustmentItem      `dynamodbav:"adjustment"`
	Method      methodSelectionItem `dynamodbav:"method"`
	Calendar    calendarItem        `dynamodbav:"calendar"`
	CommittedAt string              `dynamodbav:"committed_at"`
	CommittedBy string              `dynamodbav:"committed_by,omitempty"`
}

// AuthorizationDynamoRepository persists the immutable wizard commit artifact.
//
// Table requirements:
//   - PK: quotation_id (string)
//
// The conditional put on quotation_id is the at-most-once commit guard: a
// second commit for the same quotation loses the condition and gets a zero
// record back, never a duplicate.
type AuthorizationDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IAuthorizationRecordRepository = (*AuthorizationDynamoRepository)(nil)

func NewAuthorizationDynamoRepository(ddb *dynamodb.Client) *AuthorizationDynamoRepository {
	return &AuthorizationDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("AUTHORIZATIONS_TABLE", defaultAuthorizationsTableName),
	}
}

func (r *AuthorizationDynamoRepository) Create(ctx context.Context, rec entities.AuthorizationRecord) (entities.AuthorizationRecord, error) {
	it := toAuthorizationItem(rec)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.AuthorizationRecord{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#qid)"),
		ExpressionAttributeNames: map[string]string{
			"#qid": "quotation_id",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.AuthorizationRecord{}, nil
		}
		return entities.AuthorizationRecord{}, err
	}
	return rec, nil
}

func (r *AuthorizationDynamoRepository) GetByQuotationID(ctx context.Context, quotationID string) (entities.AuthorizationRecord, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"quotation_id": &types.AttributeValueMemberS{Value: quotationID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.AuthorizationRecord{}, err
	}
	if len(out.Item) == 0 {
		return entities.AuthorizationRecord{}, nil
	}

	var it authorizationItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.AuthorizationRecord{}, err
	}
	return fromAuthorizationItem(it), nil
}

func toAuthorizationItem(rec entities.AuthorizationRecord) authorizationItem {
	discounts := make([]adjustmentDiscountItem, 0, len(rec.Adjustment.Discounts))
	for _, d := range rec.Adjustment.Discounts {
		discounts = append(discounts, adjustmentDiscountItem{
			Concept: d.Concept,
			Kind:    string(d.Kind),
			Value:   d.Value,
		})
	}
	return authorizationItem{
		QuotationID: rec.QuotationID,
		Adjustment: adjustmentItem{
			TotalOriginal:   rec.Adjustment.TotalOriginal,
			TotalFinal:      rec.Adjustment.TotalFinal,
			AdvanceOriginal: rec.Adjustment.AdvanceOriginal,
			AdvanceFinal:    rec.Adjustment.AdvanceFinal,
			AdvancePercent:  rec.Adjustment.AdvancePercent,
			Discounts:       discounts,
			Notes:           rec.Adjustment.Notes,
		},
		Method: methodSelectionItem{
			BankAccountID: rec.Method.BankAccountID,
			TransferKind:  string(rec.Method.TransferKind),
			RequiresProof: rec.Method.RequiresProof,
		},
		Calendar: calendarItem{
			AdvanceDueDate:      rec.Calendar.AdvanceDueDate.UTC().Format(time.RFC3339Nano),
			RevenueShareDueDate: rec.Calendar.RevenueShareDueDate.UTC().Format(time.RFC3339Nano),
			PenaltyEnabled:      rec.Calendar.Penalty.Enabled,
			PenaltyDailyPercent: rec.Calendar.Penalty.DailyPercent,
			EarlyEnabled:        rec.Calendar.EarlyPayment.Enabled,
			EarlyPercent:        rec.Calendar.EarlyPayment.Percent,
			EarlyDaysAhead:      rec.Calendar.EarlyPayment.DaysAhead,
		},
		CommittedAt: rec.CommittedAt.UTC().Format(time.RFC3339Nano),
		CommittedBy: rec.CommittedBy,
	}
}

func fromAuthorizationItem(it authorizationItem) entities.AuthorizationRecord {
	discounts := make([]entities.AdjustmentDiscount, 0, len(it.Adjustment.Discounts))
	for _, d := range it.Adjustment.Discounts {
		discounts = append(discounts, entities.AdjustmentDiscount{
			Concept: d.Concept,
			Kind:    entities.DiscountKind(d.Kind),
			Value:   d.Value,
		})
	}
	advanceDue, _ := time.Parse(time.RFC3339Nano, it.Calendar.AdvanceDueDate)
	revenueDue, _ := time.Parse(time.RFC3339Nano, it.Calendar.RevenueShareDueDate)
	committedAt, _ := time.Parse(time.RFC3339Nano, it.CommittedAt)
	return entities.AuthorizationRecord{
		QuotationID: it.QuotationID,
		Adjustment: entities.CommercialAdjustment{
			TotalOriginal:   it.Adjustment.TotalOriginal,
			TotalFinal:      it.Adjustment.TotalFinal,
			AdvanceOriginal: it.Adjustment.AdvanceOriginal,
			AdvanceFinal:    it.Adjustment.AdvanceFinal,
			AdvancePercent:  it.Adjustment.AdvancePercent,
			Discounts:       discounts,
			Notes:           it.Adjustment.Notes,
		},
		Method: entities.PaymentMethodSelection{
			BankAccountID: it.Method.BankAccountID,
			TransferKind:  entities.TransferKind(it.Method.TransferKind),
			RequiresProof: it.Method.RequiresProof,
		},
		Calendar: entities.PaymentCalendar{
			AdvanceDueDate:      advanceDue,
			RevenueShareDueDate: revenueDue,
			Penalty: entities.PenaltyTerms{
				Enabled:      it.Calendar.PenaltyEnabled,
				DailyPercent: it.Calendar.PenaltyDailyPercent,
			},
			EarlyPayment: entities.EarlyPaymentDiscount{
				Enabled:   it.Calendar.EarlyEnabled,
				Percent:   it.Calendar.EarlyPercent,
				DaysAhead: it.Calendar.EarlyDaysAhead,
			},
		},
		CommittedAt: committedAt,
		CommittedBy: it.CommittedBy,
	}
}
