package escrow

import (
	"context"
)

// MockClient is a test double whose behavior is overridden per method
type MockClient struct {
	FnCreateCustomer    func(ctx context.Context, customer *CustomerRequest) (*Customer, error)
	FnMe                func(ctx context.Context) (*Customer, error)
	FnGetTransaction    func(ctx context.Context, transactionID int64) (*TransactionRecord, error)
	FnListTransactions  func(ctx context.Context, params *ListTransactionsParams) (*TransactionList, error)
	FnActAsCustomer     func(ctx context.Context, transactionID int64, asCustomer, action string) (*TransactionRecord, error)
	FnSubmitTransaction func(ctx context.Context, transaction *Transaction) (*TransactionRecord, error)
}

// CreateCustomer implements Client
func (c *MockClient) CreateCustomer(ctx context.Context, customer *CustomerRequest) (*Customer, error) {
	if c.FnCreateCustomer == nil {
		return &Customer{}, nil
	}
	return c.FnCreateCustomer(ctx, customer)
}

// Me implements Client
func (c *MockClient) Me(ctx context.Context) (*Customer, error) {
	if c.FnMe == nil {
		return &Customer{}, nil
	}
	return c.FnMe(ctx)
}

// GetTransaction implements Client
func (c *MockClient) GetTransaction(ctx context.Context, transactionID int64) (*TransactionRecord, error) {
	if c.FnGetTransaction == nil {
		return &TransactionRecord{}, nil
	}
	return c.FnGetTransaction(ctx, transactionID)
}

// ListTransactions implements Client
func (c *MockClient) ListTransactions(ctx context.Context, params *ListTransactionsParams) (*TransactionList, error) {
	if c.FnListTransactions == nil {
		return &TransactionList{}, nil
	}
	return c.FnListTransactions(ctx, params)
}

// ActAsCustomer implements Client
func (c *MockClient) ActAsCustomer(ctx context.Context, transactionID int64, asCustomer, action string) (*TransactionRecord, error) {
	if c.FnActAsCustomer == nil {
		return &TransactionRecord{}, nil
	}
	return c.FnActAsCustomer(ctx, transactionID, asCustomer, action)
}

// SubmitTransaction implements Client
func (c *MockClient) SubmitTransaction(ctx context.Context, transaction *Transaction) (*TransactionRecord, error) {
	if c.FnSubmitTransaction == nil {
		return &TransactionRecord{}, nil
	}
	return c.FnSubmitTransaction(ctx, transaction)
}

// NewTransaction implements Client
func (c *MockClient) NewTransaction(sellerEmail string, opts ...TransactionOption) *Transaction {
	t := NewTransaction(Me, sellerEmail, opts...)
	t.client = c
	return t
}
