package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/bazaar/pkg/mail"
)

// SendConfirmationEmail tells the customer their order went through.
type SendConfirmationEmail struct {
	Email   string `json:"email"`
	OrderID uint   `json:"order_id"`

	mailer mail.Mailer
}

func (SendConfirmationEmail) Name() string { return NameSendConfirmationEmail }

func (j *SendConfirmationEmail) Handle() error {
	body := fmt.Sprintf("Your order #%d has been placed successfully.", j.OrderID)
	if err := j.mailer.Send(j.Email, "Order Confirmation", body); err != nil {
		return fmt.Errorf("send confirmation for order %d: %w", j.OrderID, err)
	}
	return nil
}
