package controllers

import (
	"net/http"

	"github.com/tillpoint/pos-backend/api/responses"
	"github.com/tillpoint/pos-backend/api/validators"
	"github.com/tillpoint/pos-backend/internal/settings"
	"github.com/tillpoint/pos-backend/pkg/logger"
)

type telegramSettingsRequest struct {
	BotToken string `json:"botToken" validate:"required"`
	ChatID   string `json:"chatId" validate:"required"`
}

type telegramSettingsResponse struct {
	Configured bool   `json:"configured"`
	ChatID     string `json:"chatId,omitempty"`
}

// TelegramSettingsGet reports whether report delivery is configured. The bot
// token never leaves the settings table.
func TelegramSettingsGet(store settings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := settings.GetString(r.Context(), store, settings.KeyTelegramBotToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		chatID, err := settings.GetString(r.Context(), store, settings.KeyTelegramChatID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, telegramSettingsResponse{
			Configured: token != "" && chatID != "",
			ChatID:     chatID,
		})
	}
}

func TelegramSettingsPut(store settings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload telegramSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := settings.PutJSON(r.Context(), store, settings.KeyTelegramBotToken, payload.BotToken); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := settings.PutJSON(r.Context(), store, settings.KeyTelegramChatID, payload.ChatID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, telegramSettingsResponse{Configured: true, ChatID: payload.ChatID})
	}
}
