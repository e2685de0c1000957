package logger

import (
	"log/slog"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under "error". A nil error yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Provider names the mail provider handling a message.
func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}

func MessageID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("message_id", id)
}

func Topic(topic string) slog.Attr {
	return slog.String("topic", topic)
}

// Recipient records an already masked address.
func Recipient(masked string) slog.Attr {
	return slog.String("recipient", masked)
}

func ClientIP(ip string) slog.Attr {
	if ip == "" {
		return slog.Attr{}
	}
	return slog.String("client_ip", ip)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func Status(code int) slog.Attr {
	return slog.Int("status", code)
}

// Diagnosis groups a classified failure.
func Diagnosis(code, category, hint string) slog.Attr {
	return Group("diagnosis",
		slog.String("code", code),
		slog.String("category", category),
		slog.String("hint", hint),
	)
}
