package handler

import (
	"log/slog"
	"net/http"

	"github.com/mycloudbox/mycloudbox/internal/ctxkeys"
	"github.com/mycloudbox/mycloudbox/internal/service"
)

type AccountHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAccountHandler(authService *service.AuthService, userService *service.UserService) *AccountHandler {
	return &AccountHandler{
		authService: authService,
		userService: userService,
	}
}

// DeleteAccount removes every stored object first and only then the user.
// A storage failure leaves the account in place so the user can retry.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.userService.DeleteAccount(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.authService.ClearJWTCookie(w)
	slog.Info("account deleted", "user_id", user.ID)

	writeJSON(w, http.StatusOK, messageResponse{Message: "account deleted"})
}
