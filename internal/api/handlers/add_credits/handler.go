package add_credits

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SkiBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/wallet"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidAmount      = "сумма пополнения должна быть положительной"
	msgNotFound           = "пользователь не найден"
)

type Handler struct {
	service WalletService
	logger  Logger
}

func NewHandler(service WalletService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/wallet/credits
// Защищен сервисным ключом, а не токеном пользователя
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req AddCreditsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	balance, err := h.service.AddCredits(r.Context(), req.UserID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount):
			handlers.RespondBadRequest(w, msgInvalidAmount)
		case errors.Is(err, wallet.ErrUserNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		default:
			h.logger.Error("POST /wallet/credits - Failed: user_id=%d, error=%v", req.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /wallet/credits - user_id=%d +%d, wallet=%d", req.UserID, req.Amount, balance)
	handlers.RespondJSON(w, http.StatusOK, AddCreditsResponse{UserID: req.UserID, Wallet: balance})
}
