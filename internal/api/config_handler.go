package api

import (
	"net/http"

	"github.com/crewdesk/crewdesk-api/internal/api/shared"
	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/service"
)

// ConfigHandler serves the Telegram notification settings.
type ConfigHandler struct {
	configs service.ConfigService
}

// NewConfigHandler creates a ConfigHandler.
func NewConfigHandler(configs service.ConfigService) (*ConfigHandler, error) {
	if configs == nil {
		return nil, domain.NewValidationError("configs", "cannot be nil")
	}
	return &ConfigHandler{configs: configs}, nil
}

// Get handles GET /config.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	cfg, err := h.configs.Get(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toConfigResponse(cfg))
}

// Update handles PUT /config.
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdateConfigRequest
	if _, ok := decodeRequest(w, r, &req); !ok {
		return
	}

	cfg, err := h.configs.Update(r.Context(), user.ID, domain.ConfigPatch{
		BotToken: req.BotToken,
		ChatID:   req.ChatID,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toConfigResponse(cfg))
}

// TestTelegram handles POST /config/test-telegram. An empty body tests the
// stored settings.
func (h *ConfigHandler) TestTelegram(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req TestTelegramRequest
	body, err := shared.ReadBody(w, r)
	if err != nil {
		HandleAPIError(w, r, errInvalid(err))
		return
	}
	if len(body) > 0 {
		if err := shared.Unmarshal(body, &req); err != nil {
			HandleAPIError(w, r, errInvalid(err))
			return
		}
		if err := shared.ValidateRequest(&req); err != nil {
			HandleAPIError(w, r, err)
			return
		}
	}

	if err := h.configs.TestNotification(r.Context(), user.ID, req.BotToken, req.ChatID); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TestTelegramResponse{
		Success: true,
		Message: "Test message sent",
	})
}
