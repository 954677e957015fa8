package model

import "time"

// UnknownMeta is stored when the originating request did not carry a client
// address or user agent.
const UnknownMeta = "unknown"

// ContactMessage represents a message submitted via the contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"isRead"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
}

// ContactInput is the raw contact form payload. A nil field means the key was
// absent (or null) in the request, which is reported differently from an
// empty value.
type ContactInput struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Subject *string `json:"subject"`
	Message *string `json:"message"`
}

// ContactFields holds the normalized, validated contact form values.
type ContactFields struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// RequestMeta is diagnostic data captured from the submitting request.
type RequestMeta struct {
	ClientAddress string
	UserAgent     string
}

// ContactListOptions carries pagination parameters for listing contact messages.
type ContactListOptions struct {
	Skip  int
	Limit int
}

// ContactPage is one page of contact messages plus the unfiltered total.
type ContactPage struct {
	Items []*ContactMessage `json:"items"`
	Total int64             `json:"total"`
	Skip  int               `json:"skip"`
	Limit int               `json:"limit"`
}

// NewContactMessage builds a new unread message from validated fields. The id
// and creation time are supplied by the caller; metadata is copied verbatim,
// with empty values replaced by UnknownMeta.
func NewContactMessage(fields ContactFields, meta RequestMeta, id string, now time.Time) *ContactMessage {
	return &ContactMessage{
		ID:        id,
		Name:      fields.Name,
		Email:     fields.Email,
		Subject:   fields.Subject,
		Message:   fields.Message,
		Timestamp: now,
		IsRead:    false,
		IPAddress: orUnknown(meta.ClientAddress),
		UserAgent: orUnknown(meta.UserAgent),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownMeta
	}
	return s
}
