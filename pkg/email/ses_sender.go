package email

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the subset of the SES client used by the sender.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type sesSender struct {
	api SESAPI
	cfg Config
}

// NewSESSender loads AWS credentials from the default chain for cfg.SESRegion.
func NewSESSender(ctx context.Context, cfg Config) (EmailSender, error) {
	if err := requireSender(cfg); err != nil {
		return nil, err
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SESRegion))
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return NewSESSenderWithClient(ses.NewFromConfig(awsCfg), cfg), nil
}

// NewSESSenderWithClient wraps an existing SES client.
func NewSESSenderWithClient(api SESAPI, cfg Config) EmailSender {
	return &sesSender{api: api, cfg: cfg}
}

func (s *sesSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	body := &types.Body{Html: utf8(params.BodyHTML)}
	if params.BodyText != "" {
		body.Text = utf8(params.BodyText)
	}
	input := &ses.SendEmailInput{
		Source:      aws.String(s.cfg.SenderEmail),
		Destination: &types.Destination{ToAddresses: []string{params.SendTo}},
		Message: &types.Message{
			Subject: utf8(params.Subject),
			Body:    body,
		},
	}
	if s.cfg.ReplyTo != "" {
		input.ReplyToAddresses = []string{s.cfg.ReplyTo}
	}
	if params.Tag != "" {
		input.Tags = []types.MessageTag{{Name: aws.String("tag"), Value: aws.String(params.Tag)}}
	}

	if _, err := s.api.SendEmail(ctx, input); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	return nil
}

func utf8(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}
