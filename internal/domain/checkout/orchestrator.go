// internal/domain/checkout/orchestrator.go
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
)

// Navigation targets
const (
	RouteLogin    = "/login"
	RouteProducts = "/products"
	RouteAccount  = "/account"
)

// State of a session's checkout submission
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// NoticeLevel classifies a notice shown to the shopper
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-visible message
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// CartStore is the cart as seen by checkout
type CartStore interface {
	Contents(ctx context.Context, owner cart.Owner) (cart.Contents, error)
	ClearCart(ctx context.Context, owner cart.Owner) error
}

// OrderCreator persists a submitted order
type OrderCreator interface {
	CreateOrder(ctx context.Context, userID uint, payload *order.Payload, idempotencyKey string) (*order.Order, error)
}

// Notifier shows notices to the shopper
type Notifier interface {
	Notify(n Notice)
}

// Navigator moves the shopper to another view
type Navigator interface {
	Navigate(route string)
}

// Scheduler runs fn after delay
type Scheduler func(delay time.Duration, fn func())

// AfterFunc schedules on a timer goroutine
func AfterFunc(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}

// Immediate runs fn right away. Used where the delay is applied by the client.
func Immediate(_ time.Duration, fn func()) {
	fn()
}

// Redirect is a pending navigation
type Redirect struct {
	Route string        `json:"route"`
	Delay time.Duration `json:"-"`
	// DelayMS mirrors Delay for JSON clients
	DelayMS int64 `json:"delay_ms"`
}

func newRedirect(route string, delay time.Duration) *Redirect {
	return &Redirect{Route: route, Delay: delay, DelayMS: delay.Milliseconds()}
}

// Result describes a successful submission
type Result struct {
	Order    *order.Order   `json:"order"`
	Pricing  pricing.Result `json:"pricing"`
	Redirect *Redirect      `json:"redirect"`
}

// DefaultSubmitTimeout bounds the order-creation call when none is configured
const DefaultSubmitTimeout = 10 * time.Second

// OrchestratorConfig holds the submission timing settings
type OrchestratorConfig struct {
	RedirectDelay time.Duration
	SubmitTimeout time.Duration
	Scheduler     Scheduler
}

// Orchestrator turns a validated form and the cart into an order. Each
// session moves Idle -> Submitting -> Succeeded or Failed, and only one
// submission per session can be in flight.
type Orchestrator struct {
	carts     CartStore
	orders    OrderCreator
	validator *FormValidator
	rule      pricing.Rule
	cfg       OrchestratorConfig
	logger    *logrus.Logger

	mu     sync.Mutex
	states map[uint]State
}

// NewOrchestrator creates an order submission orchestrator
func NewOrchestrator(carts CartStore, orders OrderCreator, validator *FormValidator, rule pricing.Rule, cfg OrchestratorConfig, logger *logrus.Logger) *Orchestrator {
	if cfg.Scheduler == nil {
		cfg.Scheduler = AfterFunc
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DefaultSubmitTimeout
	}
	return &Orchestrator{
		carts:     carts,
		orders:    orders,
		validator: validator,
		rule:      rule,
		cfg:       cfg,
		logger:    logger,
		states:    make(map[uint]State),
	}
}

// State returns the session's current submission state
func (o *Orchestrator) State(userID uint) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.states[userID]; ok {
		return s
	}
	return StateIdle
}

func (o *Orchestrator) begin(userID uint) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.states[userID] == StateSubmitting {
		return false
	}
	o.states[userID] = StateSubmitting
	return true
}

func (o *Orchestrator) set(userID uint, s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s == StateIdle {
		delete(o.states, userID)
		return
	}
	o.states[userID] = s
}

// Submit places an order for the user's cart. The cart is checked before the
// form, and neither an empty cart nor an invalid form reaches the order
// service. On success the cart is cleared, a success notice is shown and
// navigation to the account view is scheduled. On failure the cart is left
// as it was and the session returns to Idle. Once Submitting begins the
// caller's cancellation no longer applies; only the submit timeout bounds the
// order call.
func (o *Orchestrator) Submit(ctx context.Context, userID uint, form CustomerForm, notifier Notifier, nav Navigator) (*Result, error) {
	owner := cart.UserOwner(userID)
	log := o.logger.WithField("user_id", userID)

	contents, err := o.carts.Contents(ctx, owner)
	if err != nil {
		notifier.Notify(Notice{Level: NoticeError, Message: "We couldn't load your cart. Please try again."})
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	lines := contents.Lines
	if len(lines) == 0 {
		notifier.Notify(emptyCartNotice(contents.Unavailable))
		return nil, ErrEmptyCart
	}

	if err := o.validator.Validate(form).Err(); err != nil {
		notifier.Notify(Notice{Level: NoticeError, Message: "Please correct the highlighted fields"})
		return nil, err
	}

	if !o.begin(userID) {
		notifier.Notify(Notice{Level: NoticeInfo, Message: "Your order is already being placed"})
		return nil, ErrSubmissionInProgress
	}
	ctx = context.WithoutCancel(ctx)

	priced := o.rule.Evaluate(cart.PricingLines(lines))
	payload := BuildPayload(lines, form, priced)
	key := IdempotencyKey(userID, lines, priced.Total)

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.SubmitTimeout)
	created, err := o.orders.CreateOrder(callCtx, userID, payload, key)
	cancel()
	if err != nil {
		return nil, o.fail(userID, notifier, log, err, "We couldn't place your order. Please try again.")
	}

	if err := o.carts.ClearCart(ctx, owner); err != nil {
		return nil, o.fail(userID, notifier, log, fmt.Errorf("failed to clear cart: %w", err),
			"Your order was received but we couldn't update your cart. Please try again.")
	}

	o.set(userID, StateSucceeded)
	log.WithFields(logrus.Fields{
		"order_id": created.ID,
		"total":    priced.Total,
	}).Info("checkout succeeded")

	notifier.Notify(Notice{Level: NoticeSuccess, Message: "Order placed successfully!" + unavailableSuffix(contents.Unavailable)})
	o.cfg.Scheduler(o.cfg.RedirectDelay, func() {
		nav.Navigate(RouteAccount)
		o.set(userID, StateIdle)
	})

	return &Result{
		Order:    created,
		Pricing:  priced,
		Redirect: newRedirect(RouteAccount, o.cfg.RedirectDelay),
	}, nil
}

func emptyCartNotice(unavailable int) Notice {
	if unavailable > 0 {
		return Notice{Level: NoticeInfo, Message: "The items in your cart are no longer available"}
	}
	return Notice{Level: NoticeInfo, Message: "Your cart is empty"}
}

// unavailableSuffix tells the shopper that items no longer sold were left
// out of the order and removed with the rest of the cart.
func unavailableSuffix(unavailable int) string {
	switch {
	case unavailable == 1:
		return " 1 item that is no longer available was removed from your cart."
	case unavailable > 1:
		return fmt.Sprintf(" %d items that are no longer available were removed from your cart.", unavailable)
	}
	return ""
}

func (o *Orchestrator) fail(userID uint, notifier Notifier, log *logrus.Entry, err error, message string) error {
	o.set(userID, StateFailed)
	log.WithError(err).Warn("checkout submission failed")
	notifier.Notify(Notice{Level: NoticeError, Message: message})
	o.set(userID, StateIdle)
	return &OrderSubmissionError{Err: err}
}

// BuildPayload assembles the order from cart lines, the validated form and
// the pricing computed from those same lines.
func BuildPayload(lines []cart.Line, form CustomerForm, priced pricing.Result) *order.Payload {
	items := make([]order.PayloadItem, len(lines))
	for i, l := range lines {
		items[i] = order.PayloadItem{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Name:      l.Name,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
			Variant:   l.Variant,
			Image:     l.Image,
		}
	}

	return &order.Payload{
		Subtotal:        priced.Subtotal,
		Shipping:        priced.Shipping,
		Total:           priced.Total,
		Status:          order.OrderStatusPending,
		PaymentMethod:   string(form.PaymentMethod),
		ShippingAddress: form.ShippingAddress(),
		Items:           items,
	}
}

var idempotencyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("storefront/checkout"))

// IdempotencyKey derives a stable key for a submission of these lines. A
// retry of the same cart produces the same key; changing or re-adding a line
// produces a new one.
func IdempotencyKey(userID uint, lines []cart.Line, total int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%d", userID, total)
	for _, l := range lines {
		variant := uint(0)
		if l.VariantID != nil {
			variant = *l.VariantID
		}
		fmt.Fprintf(&b, "|%d:%d:%d:%d:%d", l.ProductID, variant, l.Quantity, l.UnitPrice, l.AddedAt.UnixNano())
	}
	return uuid.NewSHA1(idempotencyNamespace, []byte(b.String())).String()
}
