// Package respond padroniza as respostas JSON dos handlers e middlewares.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

// Handle processa erros de serviço e envia respostas padronizadas ao cliente.
// Com err == nil escreve data com successStatus; caso contrário traduz o erro.
func Handle(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err != nil {
		Error(w, r, log, err)
		return
	}
	JSON(w, log, data, successStatus)
}

// JSON escreve data como corpo JSON.
func JSON(w http.ResponseWriter, log logger.Logger, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
		log.Error("Falha ao codificar JSON de resposta", jsonErr)
	}
}

// Error traduz o erro para {code, category, message} com o status HTTP correspondente.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	JSON(w, log, domain.ErrorResponse{Code: status, Category: category, Message: message}, status)
}

// Decode lê o corpo JSON da requisição. Campos desconhecidos são recusados.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidationError("Payload JSON inválido.")
	}
	return nil
}
