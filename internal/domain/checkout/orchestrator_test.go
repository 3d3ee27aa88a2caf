package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

// MockCart implements CartStore in memory
type MockCart struct {
	mu          sync.Mutex
	lines       []cart.Line
	unavailable int
	loadErr     error
	clearErr    error
	cleared     int
}

func (m *MockCart) Contents(_ context.Context, _ cart.Owner) (cart.Contents, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return cart.Contents{}, m.loadErr
	}
	return cart.Contents{Lines: append([]cart.Line(nil), m.lines...), Unavailable: m.unavailable}, nil
}

func (m *MockCart) ClearCart(ctx context.Context, _ cart.Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.clearErr != nil {
		return m.clearErr
	}
	m.lines = nil
	m.cleared++
	return nil
}

func (m *MockCart) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.lines {
		n += l.Quantity
	}
	return n
}

// MockOrders implements OrderCreator
type MockOrders struct {
	mu       sync.Mutex
	calls    int
	payloads []*order.Payload
	keys     []string
	err      error
	block    chan struct{}
	started  chan struct{}
	// onCreate runs after the call is recorded, before the result is returned
	onCreate func()
}

func (m *MockOrders) CreateOrder(ctx context.Context, userID uint, payload *order.Payload, key string) (*order.Order, error) {
	m.mu.Lock()
	m.calls++
	m.payloads = append(m.payloads, payload)
	m.keys = append(m.keys, key)
	m.mu.Unlock()

	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.onCreate != nil {
		m.onCreate()
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &order.Order{ID: 99, UserID: userID, Status: order.OrderStatusPending, TotalAmount: payload.Total}, nil
}

// recorder implements Notifier and Navigator
type recorder struct {
	mu      sync.Mutex
	notices []Notice
	routes  []string
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *recorder) lastNotice() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

// manualScheduler captures continuations so tests decide when they run
type manualScheduler struct {
	delays  []time.Duration
	pending []func()
}

func (s *manualScheduler) schedule(d time.Duration, fn func()) {
	s.delays = append(s.delays, d)
	s.pending = append(s.pending, fn)
}

func (s *manualScheduler) runAll() {
	for _, fn := range s.pending {
		fn()
	}
	s.pending = nil
}

func sampleLines() []cart.Line {
	added := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []cart.Line{
		{ProductID: 1, Name: "Shirt", Image: "shirt.png", UnitPrice: 30000, Quantity: 1, AddedAt: added},
		{ProductID: 2, Name: "Mug", Variant: "Blue", UnitPrice: 15000, Quantity: 2, AddedAt: added},
	}
}

func newTestOrchestrator(carts CartStore, orders OrderCreator, sched *manualScheduler) *Orchestrator {
	return NewOrchestrator(carts, orders, NewFormValidator(), pricing.DefaultRule(), OrchestratorConfig{
		RedirectDelay: 1500 * time.Millisecond,
		SubmitTimeout: time.Second,
		Scheduler:     sched.schedule,
	}, logger.Discard())
}

func TestSubmit_Success(t *testing.T) {
	carts := &MockCart{lines: sampleLines()}
	orders := &MockOrders{}
	sched := &manualScheduler{}
	rec := &recorder{}
	o := newTestOrchestrator(carts, orders, sched)

	result, err := o.Submit(context.Background(), 7, validForm(), rec, rec)
	require.NoError(t, err)

	assert.Equal(t, 1, orders.calls)
	payload := orders.payloads[0]
	assert.Equal(t, int64(60000), payload.Subtotal)
	assert.Equal(t, int64(0), payload.Shipping)
	assert.Equal(t, int64(60000), payload.Total)
	assert.Equal(t, order.OrderStatusPending, payload.Status)
	assert.Equal(t, "credit", payload.PaymentMethod)
	assert.Equal(t, "12345", payload.ShippingAddress.PostalCode)
	require.Len(t, payload.Items, 2)
	assert.Equal(t, order.PayloadItem{ProductID: 2, Name: "Mug", Price: 15000, Quantity: 2, Variant: "Blue"}, payload.Items[1])
	assert.NotEmpty(t, orders.keys[0])

	assert.Equal(t, 0, carts.count())
	assert.Equal(t, 1, carts.cleared)
	assert.Equal(t, NoticeSuccess, rec.lastNotice().Level)
	assert.Equal(t, uint(99), result.Order.ID)
	assert.Equal(t, RouteAccount, result.Redirect.Route)
	assert.Equal(t, int64(1500), result.Redirect.DelayMS)

	// navigation happens only once the delay elapses
	assert.Empty(t, rec.routes)
	assert.Equal(t, StateSucceeded, o.State(7))
	require.Equal(t, []time.Duration{1500 * time.Millisecond}, sched.delays)

	sched.runAll()
	assert.Equal(t, []string{RouteAccount}, rec.routes)
	assert.Equal(t, StateIdle, o.State(7))
}

func TestSubmit_FlatShippingBelowThreshold(t *testing.T) {
	carts := &MockCart{lines: []cart.Line{{ProductID: 3, Name: "Card", UnitPrice: 10000, Quantity: 1}}}
	orders := &MockOrders{}
	rec := &recorder{}

	result, err := newTestOrchestrator(carts, orders, &manualScheduler{}).Submit(context.Background(), 7, validForm(), rec, rec)
	require.NoError(t, err)
	assert.Equal(t, pricing.Result{Subtotal: 10000, Shipping: 2500, Total: 12500}, result.Pricing)
	assert.Equal(t, int64(12500), orders.payloads[0].Total)
}

func TestSubmit_EmptyCart(t *testing.T) {
	orders := &MockOrders{}
	rec := &recorder{}
	o := newTestOrchestrator(&MockCart{}, orders, &manualScheduler{})

	for _, form := range []CustomerForm{validForm(), {}} {
		_, err := o.Submit(context.Background(), 7, form, rec, rec)
		assert.ErrorIs(t, err, ErrEmptyCart)
	}

	assert.Equal(t, 0, orders.calls)
	assert.Equal(t, NoticeInfo, rec.lastNotice().Level)
	assert.Equal(t, StateIdle, o.State(7))
}

func TestSubmit_InvalidForm(t *testing.T) {
	carts := &MockCart{lines: sampleLines()}
	orders := &MockOrders{}
	rec := &recorder{}
	o := newTestOrchestrator(carts, orders, &manualScheduler{})

	form := validForm()
	form.Email = "not-an-email"
	_, err := o.Submit(context.Background(), 7, form, rec, rec)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "email", verr.Fields[0].Field)
	assert.Equal(t, 0, orders.calls)
	assert.Equal(t, 3, carts.count())
	assert.Equal(t, NoticeError, rec.lastNotice().Level)
}

func TestSubmit_OrderFailureLeavesCart(t *testing.T) {
	carts := &MockCart{lines: sampleLines()}
	orders := &MockOrders{err: errors.New("500 internal server error")}
	sched := &manualScheduler{}
	rec := &recorder{}
	o := newTestOrchestrator(carts, orders, sched)

	form := validForm()
	_, err := o.Submit(context.Background(), 7, form, rec, rec)

	var serr *OrderSubmissionError
	require.ErrorAs(t, err, &serr)
	assert.EqualError(t, serr.Unwrap(), "500 internal server error")
	assert.Equal(t, 1, orders.calls)
	assert.Equal(t, 3, carts.count())
	assert.Equal(t, 0, carts.cleared)
	assert.Equal(t, validForm(), form)
	assert.Equal(t, NoticeError, rec.lastNotice().Level)
	assert.Empty(t, sched.pending)
	assert.Empty(t, rec.routes)
	assert.Equal(t, StateIdle, o.State(7))

	// explicit resubmission is allowed and reuses the key for the same cart
	orders.err = nil
	_, err = o.Submit(context.Background(), 7, form, rec, rec)
	require.NoError(t, err)
	assert.Equal(t, 2, orders.calls)
	assert.Equal(t, orders.keys[0], orders.keys[1])
}

func TestSubmit_ClearFailureBlocksNavigation(t *testing.T) {
	carts := &MockCart{lines: sampleLines(), clearErr: errors.New("redis down")}
	sched := &manualScheduler{}
	rec := &recorder{}
	o := newTestOrchestrator(carts, &MockOrders{}, sched)

	_, err := o.Submit(context.Background(), 7, validForm(), rec, rec)

	var serr *OrderSubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Empty(t, sched.pending)
	assert.Empty(t, rec.routes)
	assert.Equal(t, StateIdle, o.State(7))
}

func TestSubmit_CartLoadFailure(t *testing.T) {
	orders := &MockOrders{}
	rec := &recorder{}
	o := newTestOrchestrator(&MockCart{loadErr: errors.New("db down")}, orders, &manualScheduler{})

	_, err := o.Submit(context.Background(), 7, validForm(), rec, rec)
	assert.Error(t, err)
	assert.Equal(t, 0, orders.calls)
	assert.Equal(t, NoticeError, rec.lastNotice().Level)
}

func TestSubmit_OneInFlightPerSession(t *testing.T) {
	carts := &MockCart{lines: sampleLines()}
	orders := &MockOrders{block: make(chan struct{}), started: make(chan struct{}, 2)}
	o := newTestOrchestrator(carts, orders, &manualScheduler{})

	submit := func(userID uint, done chan<- error) {
		rec := &recorder{}
		_, err := o.Submit(context.Background(), userID, validForm(), rec, rec)
		done <- err
	}

	first := make(chan error, 1)
	go submit(7, first)
	<-orders.started
	assert.Equal(t, StateSubmitting, o.State(7))

	rec := &recorder{}
	_, err := o.Submit(context.Background(), 7, validForm(), rec, rec)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.Equal(t, NoticeInfo, rec.lastNotice().Level)

	// another session is not blocked by user 7's submission
	second := make(chan error, 1)
	go submit(8, second)
	<-orders.started
	assert.Equal(t, StateSubmitting, o.State(8))

	close(orders.block)
	require.NoError(t, <-first)
	<-second
	assert.Equal(t, 2, orders.calls)
}

func TestSubmit_Timeout(t *testing.T) {
	carts := &MockCart{lines: sampleLines()}
	orders := &MockOrders{block: make(chan struct{})}
	rec := &recorder{}
	o := NewOrchestrator(carts, orders, NewFormValidator(), pricing.DefaultRule(), OrchestratorConfig{
		SubmitTimeout: 20 * time.Millisecond,
		Scheduler:     Immediate,
	}, logger.Discard())

	_, err := o.Submit(context.Background(), 7, validForm(), rec, rec)

	var serr *OrderSubmissionError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 3, carts.count())
	assert.Equal(t, StateIdle, o.State(7))
}

func TestSubmit_CallerCancelledAfterOrderCreated(t *testing.T) {
	carts := &MockCart{lines: sampleLines()}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	orders := &MockOrders{onCreate: cancel}
	sched := &manualScheduler{}
	rec := &recorder{}
	o := newTestOrchestrator(carts, orders, sched)

	result, err := o.Submit(ctx, 7, validForm(), rec, rec)
	require.NoError(t, err)

	assert.Equal(t, uint(99), result.Order.ID)
	assert.Equal(t, 0, carts.count())
	assert.Equal(t, 1, carts.cleared)
	assert.Equal(t, NoticeSuccess, rec.lastNotice().Level)
	assert.Len(t, sched.pending, 1)
}

func TestSubmit_CallerCancelledBeforeOrderCall(t *testing.T) {
	carts := &MockCart{lines: sampleLines()}
	orders := &MockOrders{}
	rec := &recorder{}
	o := newTestOrchestrator(carts, orders, &manualScheduler{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Submit(ctx, 7, validForm(), rec, rec)
	require.NoError(t, err)
	assert.Equal(t, 1, orders.calls)
	assert.Equal(t, 0, carts.count())
}

func TestSubmit_UnavailableItemsAreNoticed(t *testing.T) {
	carts := &MockCart{lines: sampleLines(), unavailable: 2}
	orders := &MockOrders{}
	rec := &recorder{}

	_, err := newTestOrchestrator(carts, orders, &manualScheduler{}).Submit(context.Background(), 7, validForm(), rec, rec)
	require.NoError(t, err)

	require.Len(t, orders.payloads[0].Items, 2)
	notice := rec.lastNotice()
	assert.Equal(t, NoticeSuccess, notice.Level)
	assert.Contains(t, notice.Message, "2 items that are no longer available were removed")
}

func TestSubmit_OnlyUnavailableItems(t *testing.T) {
	orders := &MockOrders{}
	rec := &recorder{}

	_, err := newTestOrchestrator(&MockCart{unavailable: 1}, orders, &manualScheduler{}).Submit(context.Background(), 7, validForm(), rec, rec)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, orders.calls)
	assert.Equal(t, "The items in your cart are no longer available", rec.lastNotice().Message)
}

func TestNewOrchestrator_DefaultsSubmitTimeout(t *testing.T) {
	carts := &MockCart{lines: sampleLines()}
	rec := &recorder{}
	o := NewOrchestrator(carts, &MockOrders{}, NewFormValidator(), pricing.DefaultRule(), OrchestratorConfig{
		Scheduler: Immediate,
	}, logger.Discard())

	assert.Equal(t, DefaultSubmitTimeout, o.cfg.SubmitTimeout)

	_, err := o.Submit(context.Background(), 7, validForm(), rec, rec)
	require.NoError(t, err)
	assert.Equal(t, 0, carts.count())
}

func TestSubmit_ImmediateScheduler(t *testing.T) {
	carts := &MockCart{lines: sampleLines()}
	rec := &recorder{}
	o := NewOrchestrator(carts, &MockOrders{}, NewFormValidator(), pricing.DefaultRule(), OrchestratorConfig{
		RedirectDelay: 2 * time.Second,
		SubmitTimeout: time.Second,
		Scheduler:     Immediate,
	}, logger.Discard())

	result, err := o.Submit(context.Background(), 7, validForm(), rec, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{RouteAccount}, rec.routes)
	assert.Equal(t, int64(2000), result.Redirect.DelayMS)
}

func TestIdempotencyKey(t *testing.T) {
	lines := sampleLines()
	key := IdempotencyKey(7, lines, 60000)

	assert.Equal(t, key, IdempotencyKey(7, sampleLines(), 60000))
	assert.NotEqual(t, key, IdempotencyKey(8, lines, 60000))

	changed := sampleLines()
	changed[1].Quantity = 3
	assert.NotEqual(t, key, IdempotencyKey(7, changed, 75000))

	readded := sampleLines()
	readded[0].AddedAt = readded[0].AddedAt.Add(time.Hour)
	assert.NotEqual(t, key, IdempotencyKey(7, readded, 60000))
}
