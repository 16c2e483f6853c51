package handler

import (
	"net/http"

	"github.com/rcampos/loanbook/internal/errHandler"
	"github.com/rcampos/loanbook/internal/response"
	"github.com/rcampos/loanbook/internal/version"
)

type healthHandler struct {
	errHandler *errHandler.ErrorHandler
}

func NewHealthHandler(errHandler *errHandler.ErrorHandler) *healthHandler {
	return &healthHandler{errHandler: errHandler}
}

func (h *healthHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "OK",
		"version": version.Get(),
	}

	err := response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
