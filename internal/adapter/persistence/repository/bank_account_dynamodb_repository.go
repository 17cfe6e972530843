package repository

import (
	"context"

	"cotizador/internal/domain/entities"
	"cotizador/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const defaultBankAccountsTableName = "bank_accounts"

type bankAccountItem struct {
	ID        string `dynamodbav:"id"`
	Label     string `dynamodbav:"label"`
	Bank      string `dynamodbav:"bank"`
	CLABE     string `dynamodbav:"clabe"`
	Principal bool   `dynamodbav:"principal"`
}

// BankAccountDynamoRepository reads the receiving-account reference table.
type BankAccountDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IBankAccountCatalog = (*BankAccountDynamoRepository)(nil)

func NewBankAccountDynamoRepository(ddb *dynamodb.Client) *BankAccountDynamoRepository {
	return &BankAccountDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("BANK_ACCOUNTS_TABLE", defaultBankAccountsTableName),
	}
}

func (r *BankAccountDynamoRepository) List(ctx context.Context) ([]entities.BankAccount, error) {
	out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]entities.BankAccount, 0, len(out.Items))
	for _, raw := range out.Items {
		var it bankAccountItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		accounts = append(accounts, entities.BankAccount{
			ID:        it.ID,
			Label:     it.Label,
			Bank:      it.Bank,
			CLABE:     it.CLABE,
			Principal: it.Principal,
		})
	}
	return accounts, nil
}
