package escrow

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoClient - the transaction was constructed without a client
	ErrNoClient = errors.New("transaction is not bound to a client")
)

const (
	// Me is the sentinel customer resolving to the authenticated account
	Me = "me"
	// DefaultCurrency is applied when a transaction is created without one
	DefaultCurrency = "usd"
)

// Transaction is an escrow deal between a buyer and a seller, built up from
// items before submission. It is not safe for concurrent mutation; build it
// from a single owner and submit it once built. The transaction keeps no
// server-assigned state after submission; the returned record is the only
// handle on the remote transaction.
type Transaction struct {
	// client is the submitter this transaction was created by. It is a
	// non-owning reference, deliberately unexported so the generic
	// serialization path can never pick it up.
	client Client

	BuyerEmail  string
	SellerEmail string
	Currency    string
	Description *string
	Items       []*TransactionItem
}

// TransactionOption configures optional transaction fields at construction
type TransactionOption func(*Transaction)

// WithCurrency overrides the default currency
func WithCurrency(currency string) TransactionOption {
	return func(t *Transaction) {
		t.Currency = currency
	}
}

// WithDescription sets the transaction description
func WithDescription(description string) TransactionOption {
	return func(t *Transaction) {
		t.Description = &description
	}
}

// NewTransaction builds an unbound transaction between the given parties.
// Use Client.NewTransaction to get one that can submit itself.
func NewTransaction(buyerEmail, sellerEmail string, opts ...TransactionOption) *Transaction {
	t := &Transaction{
		BuyerEmail:  buyerEmail,
		SellerEmail: sellerEmail,
		Currency:    DefaultCurrency,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddItem appends an item, preserving insertion order
func (t *Transaction) AddItem(item *TransactionItem) {
	t.Items = append(t.Items, item)
}

// NewItem constructs an item, appends it and returns it for further building
func (t *Transaction) NewItem(title, itemType string, inspectionPeriod, quantity int) *TransactionItem {
	item := NewTransactionItem(title, itemType, inspectionPeriod, quantity)
	t.AddItem(item)
	return item
}

// StructuredForm implements Serializable with the wire shape the api
// expects: the flat buyer/seller pair becomes a two-entry parties list, and
// the bound client is left out entirely. Generic field reflection would get
// both of those wrong, which is why transactions define their own form.
func (t *Transaction) StructuredForm() interface{} {
	var description interface{}
	if t.Description != nil {
		description = *t.Description
	}
	items := t.Items
	if items == nil {
		items = []*TransactionItem{}
	}
	return map[string]interface{}{
		"parties": []interface{}{
			map[string]interface{}{"role": "buyer", "customer": t.BuyerEmail},
			map[string]interface{}{"role": "seller", "customer": t.SellerEmail},
		},
		"currency":    t.Currency,
		"description": description,
		"items":       Structure(items),
	}
}

// Submit sends the transaction through the client that created it and
// returns the server's record of the created remote transaction.
func (t *Transaction) Submit(ctx context.Context) (*TransactionRecord, error) {
	if t.client == nil {
		return nil, ErrNoClient
	}
	return t.client.SubmitTransaction(ctx, t)
}

// TransactionItem is a good, service or domain name on a transaction, with
// its own payment schedule. Items are never shared between transactions.
type TransactionItem struct {
	Title            string
	Description      *string
	Type             string
	InspectionPeriod int
	Quantity         int
	Schedule         []*TransactionItemSchedule
}

// NewTransactionItem builds an item with an empty schedule
func NewTransactionItem(title, itemType string, inspectionPeriod, quantity int) *TransactionItem {
	return &TransactionItem{
		Title:            title,
		Type:             itemType,
		InspectionPeriod: inspectionPeriod,
		Quantity:         quantity,
	}
}

// AddSchedule appends a payment leg to the item, preserving insertion order
func (i *TransactionItem) AddSchedule(amount decimal.Decimal, payerCustomer, beneficiaryCustomer string) *TransactionItemSchedule {
	s := &TransactionItemSchedule{
		Amount:              amount,
		PayerCustomer:       payerCustomer,
		BeneficiaryCustomer: beneficiaryCustomer,
	}
	i.Schedule = append(i.Schedule, s)
	return s
}

// StructuredForm implements Serializable. Items carry no hidden state, so
// their form is just the recursive conversion of their own fields.
func (i *TransactionItem) StructuredForm() interface{} {
	var description interface{}
	if i.Description != nil {
		description = *i.Description
	}
	schedule := i.Schedule
	if schedule == nil {
		schedule = []*TransactionItemSchedule{}
	}
	return map[string]interface{}{
		"title":             i.Title,
		"description":       description,
		"type":              i.Type,
		"inspection_period": i.InspectionPeriod,
		"quantity":          i.Quantity,
		"schedule":          Structure(schedule),
	}
}

// TransactionItemSchedule is a single payment leg within an item: an amount
// moving from a payer to a beneficiary.
type TransactionItemSchedule struct {
	Amount              decimal.Decimal
	PayerCustomer       string
	BeneficiaryCustomer string
}

// StructuredForm implements Serializable
func (s *TransactionItemSchedule) StructuredForm() interface{} {
	return map[string]interface{}{
		"amount":               s.Amount,
		"payer_customer":       s.PayerCustomer,
		"beneficiary_customer": s.BeneficiaryCustomer,
	}
}
