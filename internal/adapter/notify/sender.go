package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"gorm.io/gorm"

	"lendmatch/internal/domain/notification"
	"lendmatch/internal/infrastructure/logger"
)

// ErrNoAddress means the recipient has no deliverable contact.
var ErrNoAddress = errors.New("recipient has no contact address")

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// EmailSender delivers through SES to the address found in the contact directory.
type EmailSender struct {
	client   SESService
	contacts notification.ContactDirectory
	from     string
}

func NewEmailSender(client SESService, contacts notification.ContactDirectory, from string) *EmailSender {
	return &EmailSender{client: client, contacts: contacts, from: from}
}

func (s *EmailSender) Send(ctx context.Context, m Message) error {
	c, err := s.contacts.Lookup(ctx, m.To)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoAddress
		}
		return fmt.Errorf("contact lookup: %w", err)
	}
	if c.Email == "" {
		return ErrNoAddress
	}
	_, err = s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{ToAddresses: []string{c.Email}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(m.Subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(m.Body)},
			},
		},
		Source: aws.String(s.from),
	})
	return err
}

// InAppSender publishes to an SNS topic consumed by the in-app inbox.
type InAppSender struct {
	client   SNSService
	topicARN string
}

func NewInAppSender(client SNSService, topicARN string) *InAppSender {
	return &InAppSender{client: client, topicARN: topicARN}
}

func (s *InAppSender) Send(ctx context.Context, m Message) error {
	attr := func(v string) snstypes.MessageAttributeValue {
		return snstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	}
	attrs := map[string]snstypes.MessageAttributeValue{
		"intent_id":  attr(m.Intent.ID),
		"kind":       attr(string(m.Intent.Kind)),
		"loan_id":    attr(m.Intent.LoanID),
		"party_kind": attr(string(m.To.Kind)),
		"party_id":   attr(m.To.ID),
	}
	if m.Intent.MatchID != "" {
		attrs["match_id"] = attr(m.Intent.MatchID)
	}
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Subject:           aws.String(m.Subject),
		Message:           aws.String(m.Body),
		MessageAttributes: attrs,
	})
	return err
}

// LogSender only logs; it backs the service when delivery is disabled.
type LogSender struct{ log logger.Logger }

func NewLogSender(log logger.Logger) *LogSender { return &LogSender{log: log} }

func (s *LogSender) Send(_ context.Context, m Message) error {
	s.log.Info("notification", map[string]interface{}{
		"intent_id": m.Intent.ID,
		"kind":      string(m.Intent.Kind),
		"loan_id":   m.Intent.LoanID,
		"to":        string(m.To.Kind) + ":" + m.To.ID,
		"subject":   m.Subject,
	})
	return nil
}

// MultiSender tries every channel and joins their errors.
type MultiSender []Sender

func (ms MultiSender) Send(ctx context.Context, m Message) error {
	var errs []error
	for _, s := range ms {
		if err := s.Send(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
