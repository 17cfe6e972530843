package repository

import (
	"context"

	"cotizador/internal/domain/entities"
	"cotizador/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultConditionsTableName = "commercial_conditions"

type paymentMethodItem struct {
	ID                           string  `dynamodbav:"id"`
	Label                        string  `dynamodbav:"label"`
	InstallmentCount             int     `dynamodbav:"installment_count"`
	BaseCommissionPercent        float64 `dynamodbav:"base_commission_percent"`
	FixedCommissionAmount        float64 `dynamodbav:"fixed_commission_amount"`
	InstallmentCommissionPercent float64 `dynamodbav:"installment_commission_percent"`
	ProcessorKind                string  `dynamodbav:"processor_kind"`
}

type conditionItem struct {
	ID              string              `dynamodbav:"id"`
	Name            string              `dynamodbav:"name"`
	Description     string              `dynamodbav:"description,omitempty"`
	DiscountPercent float64             `dynamodbav:"discount_percent"`
	AdvancePercent  float64             `dynamodbav:"advance_percent"`
	PaymentMethods  []paymentMethodItem `dynamodbav:"payment_methods"`
}

// ConditionDynamoRepository reads the commercial-condition catalog.
//
// Table requirements:
//   - PK: id (string)
//   - Payment methods are embedded as a list attribute.
//
// Reference data only: the core never writes here, so a full-table Scan for
// List is fine (the catalog is a handful of named conditions).
type ConditionDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.ICommercialConditionCatalog = (*ConditionDynamoRepository)(nil)

func NewConditionDynamoRepository(ddb *dynamodb.Client) *ConditionDynamoRepository {
	return &ConditionDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("CONDITIONS_TABLE", defaultConditionsTableName),
	}
}

func (r *ConditionDynamoRepository) List(ctx context.Context) ([]entities.CommercialCondition, error) {
	out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}

	conditions := make([]entities.CommercialCondition, 0, len(out.Items))
	for _, raw := range out.Items {
		var it conditionItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		conditions = append(conditions, fromConditionItem(it))
	}
	return conditions, nil
}

func (r *ConditionDynamoRepository) GetByID(ctx context.Context, id string) (entities.CommercialCondition, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return entities.CommercialCondition{}, err
	}
	if len(out.Item) == 0 {
		return entities.CommercialCondition{}, nil
	}

	var it conditionItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.CommercialCondition{}, err
	}
	return fromConditionItem(it), nil
}

func fromConditionItem(it conditionItem) entities.CommercialCondition {
	methods := make([]entities.PaymentMethod, 0, len(it.PaymentMethods))
	for _, m := range it.PaymentMethods {
		methods = append(methods, entities.PaymentMethod{
			ID:                           m.ID,
			Label:                        m.Label,
			InstallmentCount:             m.InstallmentCount,
			BaseCommissionPercent:        m.BaseCommissionPercent,
			FixedCommissionAmount:        m.FixedCommissionAmount,
			InstallmentCommissionPercent: m.InstallmentCommissionPercent,
			ProcessorKind:                entities.ProcessorKind(m.ProcessorKind),
		})
	}
	return entities.CommercialCondition{
		ID:              it.ID,
		Name:            it.Name,
		Description:     it.Description,
		DiscountPercent: it.DiscountPercent,
		AdvancePercent:  it.AdvancePercent,
		PaymentMethods:  methods,
	}
}
