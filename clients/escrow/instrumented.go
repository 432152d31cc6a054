package escrow

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// InstrumentedClient decorates a Client with a prometheus summary metric
// per method.
type InstrumentedClient struct {
	name string
	cl   Client
	vec  *prometheus.SummaryVec
}

// newInstrumentedClient returns an instance of the Client decorated with prometheus summary metric.
func newInstrumentedClient(name string, cl Client) *InstrumentedClient {
	result := &InstrumentedClient{
		name: name,
		cl:   cl,
		vec: promauto.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "client_duration_seconds",
			Help:       "client runtime duration and result",
			MaxAge:     time.Minute,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
			[]string{"instance_name", "method", "result"},
		),
	}

	return result
}

func (_d *InstrumentedClient) observe(method string, since time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	_d.vec.WithLabelValues(_d.name, method, result).Observe(time.Since(since).Seconds())
}

// CreateCustomer implements Client
func (_d *InstrumentedClient) CreateCustomer(ctx context.Context, cp1 *CustomerRequest) (cp2 *Customer, err error) {
	_since := time.Now()
	defer func() { _d.observe("CreateCustomer", _since, err) }()
	return _d.cl.CreateCustomer(ctx, cp1)
}

// Me implements Client
func (_d *InstrumentedClient) Me(ctx context.Context) (cp1 *Customer, err error) {
	_since := time.Now()
	defer func() { _d.observe("Me", _since, err) }()
	return _d.cl.Me(ctx)
}

// GetTransaction implements Client
func (_d *InstrumentedClient) GetTransaction(ctx context.Context, i1 int64) (tp1 *TransactionRecord, err error) {
	_since := time.Now()
	defer func() { _d.observe("GetTransaction", _since, err) }()
	return _d.cl.GetTransaction(ctx, i1)
}

// ListTransactions implements Client
func (_d *InstrumentedClient) ListTransactions(ctx context.Context, lp1 *ListTransactionsParams) (tp1 *TransactionList, err error) {
	_since := time.Now()
	defer func() { _d.observe("ListTransactions", _since, err) }()
	return _d.cl.ListTransactions(ctx, lp1)
}

// ActAsCustomer implements Client
func (_d *InstrumentedClient) ActAsCustomer(ctx context.Context, i1 int64, s1 string, s2 string) (tp1 *TransactionRecord, err error) {
	_since := time.Now()
	defer func() { _d.observe("ActAsCustomer", _since, err) }()
	return _d.cl.ActAsCustomer(ctx, i1, s1, s2)
}

// SubmitTransaction implements Client
func (_d *InstrumentedClient) SubmitTransaction(ctx context.Context, tp1 *Transaction) (tp2 *TransactionRecord, err error) {
	_since := time.Now()
	defer func() { _d.observe("SubmitTransaction", _since, err) }()
	return _d.cl.SubmitTransaction(ctx, tp1)
}

// NewTransaction implements Client, binding the transaction to the
// instrumented client so submissions are observed too
func (_d *InstrumentedClient) NewTransaction(sellerEmail string, opts ...TransactionOption) *Transaction {
	t := NewTransaction(Me, sellerEmail, opts...)
	t.client = _d
	return t
}
