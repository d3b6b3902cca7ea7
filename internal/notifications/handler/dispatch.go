package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tutorhub/internal/notifications/dispatcher"
	httputil "tutorhub/pkg/http"
	"tutorhub/pkg/logger"
)

// DispatchHandler exposes the dispatch trigger. The bearer secret check
// sits in the middleware chain ahead of this handler and fails closed, so
// an unauthorized request never reaches a dispatch cycle.
type DispatchHandler struct {
	dispatcher *dispatcher.Dispatcher
	log        *logger.Logger
}

func NewDispatchHandler(dispatcher *dispatcher.Dispatcher, log *logger.Logger) *DispatchHandler {
	return &DispatchHandler{
		dispatcher: dispatcher,
		log:        log,
	}
}

func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	result, err := h.dispatcher.Run(r.Context())
	if err != nil {
		h.log.Error("Dispatch run failed", "error", err)
		if writeErr := httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{
			Error: "Dispatch run failed",
		}); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Dispatch", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, result); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Dispatch", "operation", "WriteJSON", "error", err)
	}
}

func (h *DispatchHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/notifications/dispatch", h.Dispatch)
}
