package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"eventgate/config"
	"eventgate/internal/domain"
)

// NewMailer builds a domain.Mailer from the app config. Provider "ses" sends
// through AWS SES; "noop" or anything else logs instead of sending.
func NewMailer(cfg config.MailerConfig) (domain.Mailer, error) {
	switch cfg.Provider {
	case "ses":
		return newSESMailer(cfg), nil
	case "noop":
		return &noopMailer{}, nil
	default:
		log.Printf("[MAILER] unknown provider %q, falling back to noop", cfg.Provider)
		return &noopMailer{}, nil
	}
}

type sesMailer struct {
	client   *ses.Client
	from     string
	fromName string
}

func newSESMailer(cfg config.MailerConfig) *sesMailer {
	if cfg.SES.InsecureSkipVerify {
		log.Printf("[MAILER] WARNING: TLS verification disabled for SES, development only")
	}
	awsCfg := aws.Config{
		Region: cfg.SES.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.SES.AccessKeyID, cfg.SES.SecretAccessKey, ""),
		),
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: cfg.SES.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		},
	}
	return &sesMailer{
		client:   ses.NewFromConfig(awsCfg),
		from:     cfg.FromAddress,
		fromName: cfg.FromName,
	}
}

func (s *sesMailer) Send(to, subject, html, text string) error {
	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}
	body := &types.Body{}
	if html != "" {
		body.Html = &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")}
	}
	if text != "" {
		body.Text = &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")}
	}
	out, err := s.client.SendEmail(context.Background(), &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	})
	if err != nil {
		return fmt.Errorf("send email via SES: %w", err)
	}
	log.Printf("[MAILER] sent via SES, message id %s", aws.ToString(out.MessageId))
	return nil
}

type noopMailer struct{}

func (n *noopMailer) Send(to, subject, html, text string) error {
	log.Printf("[MAILER] noop send to=%s subject=%q", to, subject)
	return nil
}
