package ses

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/go-user-registration/internal/config"
	"github.com/go-user-registration/internal/domain"
)

type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Sender delivers registration confirmations through AWS SES.
type Sender struct {
	client  sesAPI
	from    string
	subject string
}

// NewSender loads AWS configuration for cfg.SESRegion, using static
// credentials when they are configured.
func NewSender(ctx context.Context, cfg *config.Config) (*Sender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SESRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	var clientOpts []func(*sesv2.Options)
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sesv2.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return newSender(sesv2.NewFromConfig(awsCfg, clientOpts...), cfg.SESFrom, cfg.RegistrationSubject), nil
}

func newSender(client sesAPI, from, subject string) *Sender {
	return &Sender{client: client, from: from, subject: subject}
}

// SendRegistrationEmail reports an SES API failure as false, not as an error.
func (s *Sender) SendRegistrationEmail(ctx context.Context, msg domain.RegistrationEmail) (bool, error) {
	to := msg.DestinationEmailAddress
	if to == "" {
		return false, fmt.Errorf("ses: %w", domain.ErrMissingDestination)
	}
	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(s.subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String("Thanks for registering. This address (" + to + ") is now pending confirmation."),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("message_id"), Value: aws.String(msg.MessageID)},
		},
	})
	if err != nil {
		slog.Warn("registration email not delivered", "to", to, "message_id", msg.MessageID, "err", err)
		return false, nil
	}
	slog.Info("registration email sent", "to", to, "message_id", msg.MessageID, "ses_message_id", aws.ToString(out.MessageId))
	return true, nil
}
