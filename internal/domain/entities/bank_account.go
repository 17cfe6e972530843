package entities

// BankAccount is read-only reference data for the wizard's payment-method
// selection step. The account flagged Principal is offered as the default.
type BankAccount struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Bank      string `json:"bank"`
	CLABE     string `json:"clabe"`
	Principal bool   `json:"principal"`
}
