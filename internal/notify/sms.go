package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/tailor-pos/api/internal/database"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// MessageSender is the part of the Twilio API client used for SMS.
type MessageSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// CustomerReader looks up the customer an invoice belongs to.
type CustomerReader interface {
	GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
}

// SMS texts the customer their invoice number.
type SMS struct {
	sender    MessageSender
	from      string
	customers CustomerReader
	log       *zap.Logger
}

// NewTwilioClient builds the Twilio REST client used by SMS.
func NewTwilioClient(accountSID, authToken string) *twilio.RestClient {
	return twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
}

func NewSMS(sender MessageSender, from string, customers CustomerReader, log *zap.Logger) *SMS {
	return &SMS{sender: sender, from: from, customers: customers, log: log}
}

func (s *SMS) InvoiceReady(ctx context.Context, ev InvoiceEvent) {
	log := s.log.With(zap.String("order_id", ev.OrderID.String()), zap.Int32("invoice_number", ev.InvoiceNumber))

	customer, err := s.customers.GetCustomer(ctx, database.GetCustomerParams{ID: ev.CustomerID, Brand: ev.Brand})
	if err != nil {
		log.Warn("invoice sms: load customer", zap.Error(err))
		return
	}
	to := strings.TrimSpace(customer.Phone)
	if to == "" {
		log.Debug("invoice sms: customer has no phone")
		return
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(invoiceMessage(customer.Name, ev))

	resp, err := s.sender.CreateMessage(params)
	if err != nil {
		log.Warn("invoice sms: send", zap.Error(err))
		return
	}
	if resp != nil && resp.Sid != nil {
		log.Info("invoice sms sent", zap.String("sid", *resp.Sid))
	}
}

func invoiceMessage(name string, ev InvoiceEvent) string {
	return fmt.Sprintf("Dear %s, your order is confirmed. Invoice #%d, total %s KWD.",
		name, ev.InvoiceNumber, ev.Total.StringFixed(3))
}
