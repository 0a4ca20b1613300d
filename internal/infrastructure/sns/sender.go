package sns

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-market-api/internal/config"
	"github.com/go-market-api/internal/domain"
)

// Sender delivers push notifications as SMS via AWS SNS. It implements the
// same operations as the LINE client; since SMS has no buttons, links are
// folded into the message body.
type Sender struct {
	client *sns.Client
}

func NewSender(cfg *config.Config) (*Sender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &Sender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *Sender) SendText(ctx context.Context, to, text string, _ domain.Priority) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &text,
	})
	return err
}

func (s *Sender) SendTextWithLink(ctx context.Context, to, text, linkURL, linkLabel string, priority domain.Priority) error {
	return s.SendText(ctx, to, fmt.Sprintf("%s\n%s: %s", text, linkLabel, linkURL), priority)
}
