package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airbooking-modify/internal/kafka"
	"github.com/sirupsen/logrus"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender turns booking events into customer notifications. Delivery is a
// structured log line; the relay in front of the worker picks those up.
type Sender struct {
	log *logrus.Logger
}

func NewSender(log *logrus.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	msg, ok := Compose(event)
	if !ok {
		s.log.WithFields(logrus.Fields{"type": event.Type, "booking_id": event.BookingID}).Debug("no notification for event")
		return nil
	}

	s.log.WithFields(logrus.Fields{
		"to":         msg.To,
		"subject":    msg.Subject,
		"booking_id": event.BookingID,
		"request_id": event.RequestID,
	}).Info(msg.Body)
	return nil
}

// Compose reports false for events that do not notify the customer or have no
// recipient.
func Compose(event kafka.BookingEvent) (Message, bool) {
	if event.Email == "" {
		return Message{}, false
	}

	msg := Message{To: event.Email}
	switch event.Type {
	case kafka.EventRequestApproved:
		msg.Subject = fmt.Sprintf("Your %s request was approved", event.Kind)
		msg.Body = fmt.Sprintf("Your %s request for booking %s was approved.", event.Kind, event.BookingID)
		if event.Amount != nil {
			msg.Body += fmt.Sprintf(" Amount: %s.", event.Amount.String())
		}
	case kafka.EventRequestRejected:
		msg.Subject = fmt.Sprintf("Your %s request was declined", event.Kind)
		msg.Body = fmt.Sprintf("Your %s request for booking %s was declined.", event.Kind, event.BookingID)
	case kafka.EventBookingModified:
		msg.Subject = "Your booking was updated"
		msg.Body = fmt.Sprintf("Booking %s was modified. New total: %s.", event.BookingID, event.TotalPrice.String())
	case kafka.EventBookingCancelled:
		msg.Subject = "Your booking was cancelled"
		msg.Body = fmt.Sprintf("Booking %s was cancelled.", event.BookingID)
	default:
		return Message{}, false
	}

	if event.AdminNote != "" {
		msg.Body += " Note: " + event.AdminNote
	}
	return msg, true
}
