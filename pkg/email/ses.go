package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
)

const charsetUTF8 = "UTF-8"

// SESClient is the part of *sesv2.Client the sender uses.
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers through Amazon SES v2.
type SESSender struct {
	client SESClient
}

// NewSESSender loads AWS credentials from the default chain.
func NewSESSender(ctx context.Context, cfg Config) (*SESSender, error) {
	if cfg.AWSRegion == "" {
		return nil, fmt.Errorf("%w: AWS_REGION is required", ErrInvalidConfig)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &SESSender{client: sesv2.NewFromConfig(awsCfg)}, nil
}

// NewSESSenderWithClient wraps an existing client.
func NewSESSenderWithClient(client SESClient) *SESSender {
	return &SESSender{client: client}
}

func (s *SESSender) Name() string { return ProviderSES }

// Send implements Sender.
func (s *SESSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	body := &types.Body{}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String(charsetUTF8)}
	}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(charsetUTF8)}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charsetUTF8)},
				Body:    body,
			},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		pe := &ProviderError{Provider: ProviderSES, Err: err}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			pe.Code = apiErr.ErrorCode()
			pe.Message = apiErr.ErrorMessage()
		}
		return "", pe
	}
	return aws.ToString(out.MessageId), nil
}
