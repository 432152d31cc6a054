package escrow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/go-querystring/query"
	"github.com/shopspring/decimal"

	"github.com/leafcoder/escrow-go/clients"
	appctx "github.com/leafcoder/escrow-go/context"
	errorutils "github.com/leafcoder/escrow-go/errors"
	"github.com/leafcoder/escrow-go/inputs"
)

const (
	// ProductionURL is the base url of the production api
	ProductionURL = "https://api.escrow.com/2017-09-01/"
	// SandboxURL is the base url of the sandbox api
	SandboxURL = "https://api.escrow-sandbox.com/2017-09-01/"
)

func init() {
	// schedule amounts are numbers on the wire, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Client abstracts over the underlying client
type Client interface {
	// CreateCustomer creates a customer whose email is not yet registered;
	// a duplicate email surfaces as the api's 403 error
	CreateCustomer(ctx context.Context, customer *CustomerRequest) (*Customer, error)
	// Me returns the customer record of the authenticated account
	Me(ctx context.Context) (*Customer, error)
	// GetTransaction returns a transaction by id
	GetTransaction(ctx context.Context, transactionID int64) (*TransactionRecord, error)
	// ListTransactions pages through the account's transactions
	ListTransactions(ctx context.Context, params *ListTransactionsParams) (*TransactionList, error)
	// ActAsCustomer performs an action on a transaction on behalf of the
	// named party, via the As-Customer header
	ActAsCustomer(ctx context.Context, transactionID int64, asCustomer, action string) (*TransactionRecord, error)
	// SubmitTransaction creates the transaction remotely from its structured form
	SubmitTransaction(ctx context.Context, transaction *Transaction) (*TransactionRecord, error)
	// NewTransaction returns a transaction bound to this client with the
	// buyer fixed to the authenticated account
	NewTransaction(sellerEmail string, opts ...TransactionOption) *Transaction
}

// HTTPClient wraps http.Client for interacting with the escrow api
type HTTPClient struct {
	client      *clients.SimpleHTTPClient
	credentials Credentials
}

// New returns a new instrumented Client configured from the environment.
// ESCROW_SERVER overrides the base url; otherwise ESCROW_ENVIRONMENT selects
// production or sandbox.
func New() (Client, error) {
	serverURL := os.Getenv("ESCROW_SERVER")
	if serverURL == "" {
		if os.Getenv("ESCROW_ENVIRONMENT") == "production" {
			serverURL = ProductionURL
		} else {
			serverURL = SandboxURL
		}
	}

	creds := NewCredentials(
		os.Getenv("ESCROW_API_SECRET"),
		os.Getenv("ESCROW_API_KEY"),
		os.Getenv("ESCROW_EMAIL"),
	)

	authEmail, authKey := creds.BasicAuth()
	client, err := clients.NewWithProxy("escrow", serverURL, authEmail, authKey, os.Getenv("HTTP_PROXY"))
	if err != nil {
		return nil, err
	}
	return newInstrumentedClient("escrow_client", &HTTPClient{
		client:      client,
		credentials: creds,
	}), nil
}

// NewWithContext returns a new instrumented Client, retrieving the base url
// and credentials from the context
func NewWithContext(ctx context.Context) (Client, error) {
	serverURL, err := appctx.GetStringFromContext(ctx, appctx.EscrowServerCTXKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow server from context: %w", err)
	}
	apiKey, err := appctx.GetStringFromContext(ctx, appctx.EscrowAPIKeyCTXKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow api key from context: %w", err)
	}
	accountEmail, err := appctx.GetStringFromContext(ctx, appctx.EscrowAccountEmailCTXKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow account email from context: %w", err)
	}
	// the api secret is optional for basic-auth calls
	apiSecret, _ := appctx.GetStringFromContext(ctx, appctx.EscrowAPISecretCTXKey)

	hc, err := NewWithCredentials(serverURL, NewCredentials(apiSecret, apiKey, accountEmail))
	if err != nil {
		return nil, err
	}
	return newInstrumentedClient("escrow_context_client", hc), nil
}

// NewWithCredentials returns a plain HTTPClient against serverURL using
// explicitly injected credentials
func NewWithCredentials(serverURL string, credentials Credentials) (*HTTPClient, error) {
	authEmail, authKey := credentials.BasicAuth()
	client, err := clients.NewWithHTTPClient(serverURL, authEmail, authKey, &http.Client{
		Timeout: time.Second * 10,
	})
	if err != nil {
		return nil, err
	}
	return &HTTPClient{
		client:      client,
		credentials: credentials,
	}, nil
}

// Credentials returns the credentials the client authenticates with
func (c *HTTPClient) Credentials() Credentials {
	return c.credentials
}

// Address is the postal address nested on a customer
type Address struct {
	Line1    *string `json:"line1"`
	Line2    *string `json:"line2"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	Country  *string `json:"country"`
	PostCode *string `json:"post_code"`
}

// CustomerRequest is the payload for creating a customer
type CustomerRequest struct {
	Email       string  `json:"email"`
	FirstName   *string `json:"first_name"`
	MiddleName  *string `json:"middle_name"`
	LastName    *string `json:"last_name"`
	Address     Address `json:"address"`
	PhoneNumber *string `json:"phone_number"`
}

// Validate checks the fields the api will reject outright
func (cr *CustomerRequest) Validate(ctx context.Context) error {
	merr := new(errorutils.MultiError)
	if !govalidator.IsEmail(cr.Email) {
		merr.Append(fmt.Errorf("%w: %q", errorutils.ErrInvalidEmail, cr.Email))
	}
	if cr.Address.Country != nil && !govalidator.IsISO3166Alpha2(*cr.Address.Country) {
		merr.Append(fmt.Errorf("invalid country code: %q", *cr.Address.Country))
	}
	if merr.Count() > 0 {
		return merr
	}
	return nil
}

// Customer is a customer record as returned by the api
type Customer struct {
	ID          int64   `json:"id,omitempty"`
	Email       string  `json:"email"`
	FirstName   *string `json:"first_name"`
	MiddleName  *string `json:"middle_name"`
	LastName    *string `json:"last_name"`
	Address     Address `json:"address"`
	PhoneNumber *string `json:"phone_number"`
}

// Party is one side of a remote transaction
type Party struct {
	Role     string `json:"role"`
	Customer string `json:"customer"`
	Agreed   bool   `json:"agreed,omitempty"`
}

// ScheduleRecord is a payment leg on a remote transaction item
type ScheduleRecord struct {
	Amount              decimal.Decimal `json:"amount"`
	PayerCustomer       string          `json:"payer_customer"`
	BeneficiaryCustomer string          `json:"beneficiary_customer"`
	Status              *ScheduleStatus `json:"status,omitempty"`
}

// ScheduleStatus reports how far a payment leg has progressed
type ScheduleStatus struct {
	Secured bool `json:"secured"`
}

// ItemRecord is an item on a remote transaction
type ItemRecord struct {
	ID               int64            `json:"id,omitempty"`
	Title            string           `json:"title"`
	Description      *string          `json:"description"`
	Type             string           `json:"type"`
	InspectionPeriod int              `json:"inspection_period"`
	Quantity         int              `json:"quantity"`
	Schedule         []ScheduleRecord `json:"schedule"`
}

// TransactionRecord is the server's record of a transaction. The library
// does not retain it anywhere; callers own the returned value.
type TransactionRecord struct {
	ID          int64        `json:"id,omitempty"`
	Parties     []Party      `json:"parties"`
	Currency    string       `json:"currency"`
	Description *string      `json:"description"`
	Items       []ItemRecord `json:"items"`
}

// ListTransactionsParams are the paging params of the transaction listing
type ListTransactionsParams struct {
	Page    int `url:"page,omitempty"`
	PerPage int `url:"per_page,omitempty"`
}

// GenerateQueryString - implement the QueryStringBody interface
func (p *ListTransactionsParams) GenerateQueryString() (url.Values, error) {
	return query.Values(p)
}

// TransactionList is a page of transaction records
type TransactionList struct {
	Transactions []TransactionRecord `json:"transactions"`
}

// actionRequest is the body of an As-Customer action
type actionRequest struct {
	Action string `json:"action"`
}

// CreateCustomer creates a customer on the remote service
func (c *HTTPClient) CreateCustomer(ctx context.Context, customer *CustomerRequest) (*Customer, error) {
	if err := inputs.Validate(ctx, customer); err != nil {
		return nil, err
	}

	req, err := c.client.NewRequest(ctx, http.MethodPost, "customer", customer, nil)
	if err != nil {
		return nil, err
	}

	var resp Customer
	if _, err := c.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the authenticated account's own customer record
func (c *HTTPClient) Me(ctx context.Context) (*Customer, error) {
	req, err := c.client.NewRequest(ctx, http.MethodGet, "customer/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var resp Customer
	if _, err := c.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransaction returns the transaction with the given id
func (c *HTTPClient) GetTransaction(ctx context.Context, transactionID int64) (*TransactionRecord, error) {
	req, err := c.client.NewRequest(ctx, http.MethodGet, fmt.Sprintf("transaction/%d", transactionID), nil, nil)
	if err != nil {
		return nil, err
	}

	var resp TransactionRecord
	if _, err := c.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTransactions pages through the account's transactions
func (c *HTTPClient) ListTransactions(ctx context.Context, params *ListTransactionsParams) (*TransactionList, error) {
	var qsb clients.QueryStringBody
	if params != nil {
		qsb = params
	}

	req, err := c.client.NewRequest(ctx, http.MethodGet, "transaction", nil, qsb)
	if err != nil {
		return nil, err
	}

	var resp TransactionList
	if _, err := c.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ActAsCustomer performs an action on the transaction on behalf of the party
// named in the As-Customer header
func (c *HTTPClient) ActAsCustomer(ctx context.Context, transactionID int64, asCustomer, action string) (*TransactionRecord, error) {
	req, err := c.client.NewRequest(ctx, http.MethodPatch, fmt.Sprintf("transaction/%d", transactionID), &actionRequest{Action: action}, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("As-Customer", asCustomer)

	var resp TransactionRecord
	if _, err := c.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitTransaction creates the transaction remotely, posting its structured
// form. The local transaction is left untouched; the returned record is the
// only handle on the created remote transaction.
func (c *HTTPClient) SubmitTransaction(ctx context.Context, transaction *Transaction) (*TransactionRecord, error) {
	req, err := c.client.NewRequest(ctx, http.MethodPost, "transaction", Structure(transaction), nil)
	if err != nil {
		return nil, err
	}

	var resp TransactionRecord
	if _, err := c.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NewTransaction returns a transaction bound to this client, with the buyer
// fixed to the authenticated account and currency defaulting to usd
func (c *HTTPClient) NewTransaction(sellerEmail string, opts ...TransactionOption) *Transaction {
	t := NewTransaction(Me, sellerEmail, opts...)
	t.client = c
	return t
}
