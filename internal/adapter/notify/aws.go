package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"lendmatch/internal/domain/notification"
)

// NewAWSSender builds the production channel pair: SES email to the
// contact directory and SNS in-app publishes.
func NewAWSSender(ctx context.Context, region, from, topicARN string, contacts notification.ContactDirectory) (MultiSender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return MultiSender{
		NewEmailSender(ses.NewFromConfig(cfg), contacts, from),
		NewInAppSender(sns.NewFromConfig(cfg), topicARN),
	}, nil
}
