package email

import (
	"context"
	"fmt"
)

// New builds the sender selected by cfg.Provider.
func New(ctx context.Context, cfg Config) (Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.ProviderName() {
	case ProviderMailgun:
		return NewMailgunSender(cfg, nil)
	case ProviderPostmark:
		return NewPostmarkSender(cfg)
	case ProviderSendGrid:
		return NewSendGridSender(cfg)
	case ProviderSES:
		return NewSESSender(ctx, cfg)
	case ProviderSMTP:
		return NewSMTPSender(cfg)
	case ProviderDev:
		return NewDevSender(cfg.DevDir), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// Disabled is the Sender used when configuration is invalid. Every call
// fails with ErrMailDisabled.
type Disabled struct {
	Reason error
}

func (d Disabled) Send(context.Context, Message) (string, error) {
	if d.Reason != nil {
		return "", fmt.Errorf("%w: %v", ErrMailDisabled, d.Reason)
	}
	return "", ErrMailDisabled
}
