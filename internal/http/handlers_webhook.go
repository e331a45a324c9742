package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/posbridge/notifier/internal/domain/model"
	"github.com/posbridge/notifier/internal/service"
)

// WebhookHandlers serves the inbound event endpoints.
type WebhookHandlers struct {
	Svc *service.IngestService
}

type webhookAccepted struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	WebhookID string `json:"webhookId"`
}

// HandleEvent accepts an inbound business event and fans it out to the
// notification queue. Responds 202 on acceptance.
func (h *WebhookHandlers) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Authorize(r.Header.Get("Authorization")); err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "unauthorized",
			Err:     errors.New("invalid or missing bearer token"),
		})
		return
	}

	var event model.InboundEvent
	if !DecodeJSON(w, r, &event) {
		return
	}

	submitted, err := h.Svc.Accept(r.Context(), &event)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_payload",
			Err:     err,
		})
		return
	}

	WriteJSON(w, http.StatusAccepted, webhookAccepted{
		Success:   true,
		Message:   fmt.Sprintf("queued %d notification job(s)", submitted),
		WebhookID: event.ID,
	})
}
