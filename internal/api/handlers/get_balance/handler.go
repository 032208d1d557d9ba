package get_balance

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SkiBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SkiBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/wallet"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgNotFound      = "пользователь не найден"
)

// BalanceResponse HTTP response model
type BalanceResponse struct {
	UserID int64 `json:"userId"`
	Wallet int64 `json:"wallet"`
}

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

// Handle GET /api/v1/wallet
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	balance, err := h.service.Balance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, wallet.ErrUserNotFound) {
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("GET /wallet - Failed: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, BalanceResponse{UserID: userID, Wallet: balance})
}
