package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/contactrelay/pkg/sanitizer"
)

// DevSender writes messages to a directory instead of sending them. Each
// message produces <timestamp>_<id>.eml and, when present, a matching
// .html file for viewing in a browser.
type DevSender struct {
	dir string
	now func() time.Time
}

// NewDevSender creates a sink writing into dir. The directory is created
// on first use.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir, now: time.Now}
}

func (d *DevSender) Name() string { return ProviderDev }

// Send implements Sender.
func (d *DevSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", &ProviderError{Provider: ProviderDev, Err: err}
	}

	id := uuid.NewString()
	now := d.now()
	base := filepath.Join(d.dir, now.Format("20060102_150405")+"_"+id)

	if err := os.WriteFile(base+".eml", []byte(renderEML(msg, id, now)), 0o644); err != nil {
		return "", &ProviderError{Provider: ProviderDev, Err: err}
	}
	if msg.HTML != "" {
		if err := os.WriteFile(base+".html", []byte(msg.HTML), 0o644); err != nil {
			return "", &ProviderError{Provider: ProviderDev, Err: err}
		}
	}
	return id, nil
}

// Verify checks that the directory can be created.
func (d *DevSender) Verify(context.Context) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return &ProviderError{Provider: ProviderDev, Err: err}
	}
	return nil
}

func renderEML(msg Message, id string, now time.Time) string {
	var b strings.Builder
	header := func(k, v string) {
		if v = sanitizer.PreventHeaderInjection(v); v != "" {
			fmt.Fprintf(&b, "%s: %s\r\n", k, v)
		}
	}
	header("Message-ID", "<"+id+">")
	header("Date", now.Format(time.RFC1123Z))
	header("From", msg.From)
	header("To", msg.To)
	header("Reply-To", msg.ReplyTo)
	header("Subject", msg.Subject)
	header("X-Tag", msg.Tag)
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	b.WriteString(msg.Text)
	return b.String()
}
