package orders

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/ammargroup/storefront-backend/pkg/config"
	pkgerrors "github.com/ammargroup/storefront-backend/pkg/errors"
	"github.com/ammargroup/storefront-backend/pkg/logger"
	"github.com/ammargroup/storefront-backend/pkg/mail"
	"github.com/shopspring/decimal"
)

// Service turns checkout submissions into fulfilment emails. Orders are not
// persisted; the mailbox is the order book.
type Service interface {
	Place(ctx context.Context, input PlaceOrderInput) (*OrderReceipt, error)
}

// CustomerInfo identifies the shopper placing an order.
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	GST     string `json:"gst"`
}

// OrderItem is one checkout line.
type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PlaceOrderInput is the checkout payload.
type PlaceOrderInput struct {
	Customer CustomerInfo
	Items    []OrderItem
	Total    decimal.Decimal
}

// OrderReceipt confirms the notification went out.
type OrderReceipt struct {
	Reference string    `json:"reference"`
	PlacedAt  time.Time `json:"placed_at"`
}

type service struct {
	mailer   mail.Sender
	ordersTo string
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the order service.
func NewService(mailer mail.Sender, smtpCfg config.SMTPConfig, logg *logger.Logger) (Service, error) {
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	ordersTo := smtpCfg.OrdersTo
	if ordersTo == "" {
		ordersTo = smtpCfg.Username
	}
	if ordersTo == "" {
		return nil, fmt.Errorf("orders recipient required")
	}
	return &service{
		mailer:   mailer,
		ordersTo: ordersTo,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Place validates the submission and emails it to fulfilment.
func (s *service) Place(ctx context.Context, input PlaceOrderInput) (*OrderReceipt, error) {
	if err := validateOrder(input); err != nil {
		return nil, err
	}

	placedAt := s.now()
	reference := fmt.Sprintf("ORD-%d", placedAt.UnixMilli())

	html, err := renderOrderEmail(orderEmailData{
		Reference: reference,
		PlacedAt:  placedAt,
		Customer:  input.Customer,
		Items:     input.Items,
		Total:     input.Total,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering order email")
	}

	msg := mail.Message{
		To:      []string{s.ordersTo},
		Subject: fmt.Sprintf("New Order %s from %s", reference, input.Customer.Name),
		HTML:    html,
	}
	if err := s.mailer.Send(msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending order email")
	}

	orderCtx := s.logg.WithFields(ctx, map[string]any{
		"reference": reference,
		"items":     len(input.Items),
		"total":     input.Total.String(),
	})
	s.logg.Info(orderCtx, "order notification sent")

	return &OrderReceipt{Reference: reference, PlacedAt: placedAt}, nil
}

func validateOrder(input PlaceOrderInput) error {
	if strings.TrimSpace(input.Customer.Name) == "" ||
		strings.TrimSpace(input.Customer.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customerInfo with name and email is required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "items are required")
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.Name) == "" || item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "each item needs a name and a positive quantity")
		}
		if item.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
		}
	}
	if input.Total.IsNegative() || input.Total.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "total is required")
	}
	return nil
}

type orderEmailData struct {
	Reference string
	PlacedAt  time.Time
	Customer  CustomerInfo
	Items     []OrderItem
	Total     decimal.Decimal
}

var orderEmailTemplate = template.Must(template.New("order").Parse(`<h2>New Order {{.Reference}}</h2>
<p>Placed {{.PlacedAt.Format "2006-01-02 15:04:05 MST"}}</p>
<h3>Customer</h3>
<ul>
  <li><strong>Name:</strong> {{.Customer.Name}}</li>
  <li><strong>Email:</strong> {{.Customer.Email}}</li>
  {{if .Customer.Phone}}<li><strong>Phone:</strong> {{.Customer.Phone}}</li>{{end}}
  {{if .Customer.Address}}<li><strong>Address:</strong> {{.Customer.Address}}</li>{{end}}
  {{if .Customer.GST}}<li><strong>GST:</strong> {{.Customer.GST}}</li>{{end}}
</ul>
<h3>Items</h3>
<table border="1" cellpadding="6" cellspacing="0">
  <tr><th>Product</th><th>Qty</th><th>Price</th></tr>
  {{range .Items}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>${{.Price}}</td></tr>
  {{end}}
</table>
<h3>Total: ${{.Total}}</h3>
`))

func renderOrderEmail(data orderEmailData) (string, error) {
	var b strings.Builder
	if err := orderEmailTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
