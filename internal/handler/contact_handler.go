package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Deekshi23/portfolio/internal/model"
	"github.com/Deekshi23/portfolio/internal/service"
	"github.com/Deekshi23/portfolio/internal/validation"
)

// SubmissionRecorder observes contact form submissions.
type SubmissionRecorder interface {
	ContactSubmitted(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ContactSubmitted(string) {}

// ContactConfig holds the request limits applied by ContactHandler.
type ContactConfig struct {
	DefaultLimit      int
	MaxLimit          int
	MaxBodyBytes      int64
	TrustedProxyCount int
}

// ContactHandler handles contact form submission, listing and read state.
type ContactHandler struct {
	contactService service.ContactService
	cfg            ContactConfig
	recorder       SubmissionRecorder
}

// NewContactHandler creates a ContactHandler. recorder may be nil.
func NewContactHandler(contactService service.ContactService, cfg ContactConfig, recorder SubmissionRecorder) *ContactHandler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ContactHandler{contactService: contactService, cfg: cfg, recorder: recorder}
}

// submitResponse is the data payload of a successful submission.
type submitResponse struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// Submit handles POST /api/contact/message.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	}

	in, typeErrs, err := decodeContactInput(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if len(typeErrs) > 0 {
		h.recorder.ContactSubmitted(OutcomeInvalid)
		writeError(w, http.StatusBadRequest, "Validation error", mergeTypeErrors(in, typeErrs).Messages()...)
		return
	}

	msg, err := h.contactService.Submit(r.Context(), in, h.requestMeta(r))
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			h.recorder.ContactSubmitted(OutcomeInvalid)
			writeError(w, http.StatusBadRequest, "Validation error", verrs.Messages()...)
			return
		}
		h.recorder.ContactSubmitted(OutcomeError)
		slog.Error("contact submit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send message. Please try again later.")
		return
	}

	h.recorder.ContactSubmitted(OutcomeAccepted)
	slog.Info("contact message stored", "id", msg.ID)
	writeSuccess(w, http.StatusCreated, "Message sent successfully", submitResponse{
		ID:        msg.ID,
		Timestamp: msg.Timestamp,
	})
}

var contactFields = []string{"name", "email", "subject", "message"}

// decodeContactInput reads a JSON object from the body. Absent and null
// fields stay nil; non-string values are reported as FieldInvalid.
func decodeContactInput(r *http.Request) (model.ContactInput, validation.Errors, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return model.ContactInput{}, nil, err
	}
	if raw == nil {
		return model.ContactInput{}, nil, errors.New("request body must be a JSON object")
	}

	var (
		in       model.ContactInput
		typeErrs validation.Errors
	)
	dst := map[string]**string{
		"name":    &in.Name,
		"email":   &in.Email,
		"subject": &in.Subject,
		"message": &in.Message,
	}
	for _, field := range contactFields {
		v, ok := raw[field]
		if !ok || string(v) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			typeErrs = append(typeErrs, validation.Invalid(field, "must be a string"))
			continue
		}
		*dst[field] = &s
	}
	return in, typeErrs, nil
}

// mergeTypeErrors combines type mismatches with the rule violations of the
// remaining fields.
func mergeTypeErrors(in model.ContactInput, typeErrs validation.Errors) validation.Errors {
	mistyped := make(map[string]bool, len(typeErrs))
	for _, fe := range typeErrs {
		mistyped[fe.Field] = true
	}

	merged := append(validation.Errors{}, typeErrs...)
	_, err := validation.Contact(in)
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if !mistyped[fe.Field] {
				merged = append(merged, fe)
			}
		}
	}
	return merged
}

func (h *ContactHandler) requestMeta(r *http.Request) model.RequestMeta {
	return model.RequestMeta{
		ClientAddress: clientIP(r, h.cfg.TrustedProxyCount),
		UserAgent:     r.UserAgent(),
	}
}

// List handles GET /api/contact/messages?skip=&limit=.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := model.ContactListOptions{Skip: 0, Limit: h.cfg.DefaultLimit}

	q := r.URL.Query()
	if s := q.Get("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid query parameter", "skip: must be a non-negative integer")
			return
		}
		opts.Skip = n
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid query parameter", "limit: must be a non-negative integer")
			return
		}
		opts.Limit = n
	}
	if h.cfg.MaxLimit > 0 && opts.Limit > h.cfg.MaxLimit {
		opts.Limit = h.cfg.MaxLimit
	}

	page, err := h.contactService.List(r.Context(), opts)
	if err != nil {
		slog.Error("contact list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve messages")
		return
	}

	writeSuccess(w, http.StatusOK, "Messages retrieved successfully", page)
}

// MarkRead handles PATCH /api/contact/messages/{id}/read.
func (h *ContactHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	changed, err := h.contactService.MarkRead(r.Context(), id)
	if err != nil {
		slog.Error("contact mark read failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to update message")
		return
	}
	if !changed {
		writeError(w, http.StatusNotFound, "Message not found")
		return
	}

	writeSuccess(w, http.StatusOK, "Message marked as read", nil)
}

// Delete handles DELETE /api/contact/messages/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := h.contactService.Delete(r.Context(), id)
	if err != nil {
		slog.Error("contact delete failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete message")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Message not found")
		return
	}

	writeSuccess(w, http.StatusOK, "Message deleted", nil)
}
