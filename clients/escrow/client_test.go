package escrow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafcoder/escrow-go/clients"
	errorutils "github.com/leafcoder/escrow-go/errors"
	"github.com/leafcoder/escrow-go/ptr"
)

func testCredentials() Credentials {
	return NewCredentials("api-secret", "api-key", "john.wick@escrow.com")
}

func requireBasicAuth(t *testing.T, r *http.Request) {
	t.Helper()
	user, pass, ok := r.BasicAuth()
	require.True(t, ok, "requests must carry basic auth")
	require.Equal(t, "john.wick@escrow.com", user)
	require.Equal(t, "api-key", pass)
}

func TestMe(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/customer/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 1, "email": "john.wick@escrow.com"}`))
	}))
	defer ts.Close()

	client, err := NewWithCredentials(ts.URL, testCredentials())
	require.NoError(t, err)

	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), me.ID)
	assert.Equal(t, "john.wick@escrow.com", me.Email)
}

func TestCreateCustomer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customer", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("content-type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "john@escrow.com", body["email"])
		address, ok := body["address"].(map[string]interface{})
		require.True(t, ok, "address must be nested")
		assert.Equal(t, "San Francisco", address["city"])

		_, _ = w.Write([]byte(`{"id": 7, "email": "john@escrow.com"}`))
	}))
	defer ts.Close()

	client, err := NewWithCredentials(ts.URL, testCredentials())
	require.NoError(t, err)

	customer, err := client.CreateCustomer(context.Background(), &CustomerRequest{
		Email:     "john@escrow.com",
		FirstName: ptr.FromString("John"),
		LastName:  ptr.FromString("Smith"),
		Address: Address{
			Line1:    ptr.FromString("1829 West Lane"),
			City:     ptr.FromString("San Francisco"),
			State:    ptr.FromString("CA"),
			Country:  ptr.FromString("US"),
			PostCode: ptr.FromString("10203"),
		},
		PhoneNumber: ptr.FromString("8885118600"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), customer.ID)
}

func TestCreateCustomer_InvalidInput(t *testing.T) {
	client, err := NewWithCredentials("https://api.escrow-sandbox.com/2017-09-01/", testCredentials())
	require.NoError(t, err)

	_, err = client.CreateCustomer(context.Background(), &CustomerRequest{
		Email:   "not-an-email",
		Address: Address{Country: ptr.FromString("USA")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorutils.ErrInvalidEmail))

	var merr *errorutils.MultiError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, 2, merr.Count())
}

func TestCreateCustomer_DuplicateEmailForbidden(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	client, err := NewWithCredentials(ts.URL, testCredentials())
	require.NoError(t, err)

	_, err = client.CreateCustomer(context.Background(), &CustomerRequest{Email: "john@escrow.com"})
	require.Error(t, err)
	assert.Equal(t,
		"You are trying to perform an action that you are not permitted to perform",
		err.Error())

	state, ok := clients.HTTPStateFromError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, state.Status)
}

func TestGetTransaction(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/100", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": 100,
			"currency": "usd",
			"parties": [
				{"role": "buyer", "customer": "me"},
				{"role": "seller", "customer": "keanu.reaves@escrow.com"}
			],
			"items": [{"title": "johnwick.com", "type": "domain_name",
				"inspection_period": 259200, "quantity": 1,
				"schedule": [{"amount": 1000, "payer_customer": "me",
					"beneficiary_customer": "keanu.reaves@escrow.com"}]}]
		}`))
	}))
	defer ts.Close()

	client, err := NewWithCredentials(ts.URL, testCredentials())
	require.NoError(t, err)

	record, err := client.GetTransaction(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), record.ID)
	require.Len(t, record.Parties, 2)
	require.Len(t, record.Items, 1)
	require.Len(t, record.Items[0].Schedule, 1)
	assert.True(t, record.Items[0].Schedule[0].Amount.Equal(decimal.NewFromInt(1000)))
}

func TestGetTransaction_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client, err := NewWithCredentials(ts.URL, testCredentials())
	require.NoError(t, err)

	_, err = client.GetTransaction(context.Background(), 100)
	require.Error(t, err)
	assert.Equal(t, "You are trying to access a resource that doesn't exist", err.Error())
}

func TestListTransactions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		assert.Equal(t, "/transaction", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "25", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`{"transactions": [{"id": 1}, {"id": 2}]}`))
	}))
	defer ts.Close()

	client, err := NewWithCredentials(ts.URL, testCredentials())
	require.NoError(t, err)

	list, err := client.ListTransactions(context.Background(), &ListTransactionsParams{Page: 2, PerPage: 25})
	require.NoError(t, err)
	require.Len(t, list.Transactions, 2)
	assert.Equal(t, int64(2), list.Transactions[1].ID)
}

func TestActAsCustomer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/transaction/100", r.URL.Path)
		assert.Equal(t, "keanu.reaves@escrow.com", r.Header.Get("As-Customer"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "agree", body["action"])

		_, _ = w.Write([]byte(`{"id": 100}`))
	}))
	defer ts.Close()

	client, err := NewWithCredentials(ts.URL, testCredentials())
	require.NoError(t, err)

	record, err := client.ActAsCustomer(context.Background(), 100, "keanu.reaves@escrow.com", "agree")
	require.NoError(t, err)
	assert.Equal(t, int64(100), record.ID)
}

func TestSubmitTransaction(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		parties, ok := body["parties"].([]interface{})
		require.True(t, ok)
		assert.Len(t, parties, 2)
		items, ok := body["items"].([]interface{})
		require.True(t, ok)
		assert.Len(t, items, 1)
		// the bound client never appears in the payload
		_, leaked := body["client"]
		assert.False(t, leaked)

		_, _ = w.Write([]byte(`{"id": 3300003}`))
	}))
	defer ts.Close()

	client, err := NewWithCredentials(ts.URL, testCredentials())
	require.NoError(t, err)

	tx := client.NewTransaction("keanu.reaves@escrow.com", WithDescription("domain sale"))
	item := tx.NewItem("johnwick.com", "domain_name", 259200, 1)
	item.AddSchedule(decimal.NewFromInt(1000), Me, "keanu.reaves@escrow.com")

	record, err := tx.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3300003), record.ID)
}

func TestNewWithCredentials_Accessors(t *testing.T) {
	creds := NewCredentialsWithPassword("secret", "key", "me@escrow.com", "hunter2")
	client, err := NewWithCredentials(SandboxURL, creds)
	require.NoError(t, err)

	got := client.Credentials()
	assert.Equal(t, "secret", got.APISecret())
	assert.Equal(t, "key", got.APIKey())
	assert.Equal(t, "me@escrow.com", got.AccountEmail())
	assert.Equal(t, "hunter2", got.Password())

	user, pass := got.BasicAuth()
	assert.Equal(t, "me@escrow.com", user)
	assert.Equal(t, "key", pass, "basic auth uses the api key, not the password")
}
