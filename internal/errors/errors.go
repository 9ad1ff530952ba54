package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError é a interface central para todos os erros customizados do GoPOS.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION", "NOT_FOUND", "INTERNAL")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// Motivos de rejeição de uma venda. Nenhum deles produz efeitos colaterais.
const (
	ReasonEmptyCart         = "EMPTY_CART"
	ReasonNoPaymentMethod   = "NO_PAYMENT_METHOD"
	ReasonInsufficientStock = "INSUFFICIENT_STOCK"
)

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito na regra de negócio (e.g., recurso duplicado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// UnauthorizedError representa credenciais ausentes ou inválidas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError representa um operador autenticado sem o papel necessário.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("Acesso negado: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError cria um novo erro de autorização.
func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// OutOfStockError é devolvido pelo carrinho quando a quantidade pedida excede o estoque
// capturado no momento da adição. O carrinho permanece inalterado.
type OutOfStockError struct {
	ItemID string
	Name   string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("Sem estoque: o item %s (%s) não tem unidades disponíveis suficientes", e.ItemID, e.Name)
}
func (e *OutOfStockError) Category() string { return "OUT_OF_STOCK" }
func (e *OutOfStockError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *OutOfStockError) Unwrap() error    { return nil }

// NewOutOfStockError cria um erro de falta de estoque para um item do catálogo.
func NewOutOfStockError(itemID, name string) AppError {
	return &OutOfStockError{ItemID: itemID, Name: name}
}

// RejectionError representa uma venda rejeitada na fase de validação.
// Reason é um dos Reason* deste pacote; ItemID só é preenchido para INSUFFICIENT_STOCK.
type RejectionError struct {
	Reason string
	ItemID string
	Msg    string
}

func (e *RejectionError) Error() string { return fmt.Sprintf("Venda rejeitada (%s): %s", e.Reason, e.Msg) }
func (e *RejectionError) Category() string {
	return e.Reason
}
func (e *RejectionError) HTTPStatus() int {
	if e.Reason == ReasonInsufficientStock {
		return http.StatusConflict // 409
	}
	return http.StatusUnprocessableEntity // 422
}
func (e *RejectionError) Unwrap() error { return nil }

// Is permite comparar rejeições apenas pelo motivo: errors.Is(err, ErrEmptyCart).
func (e *RejectionError) Is(target error) bool {
	t, ok := target.(*RejectionError)
	if !ok {
		return false
	}
	return t.Reason == e.Reason && (t.ItemID == "" || t.ItemID == e.ItemID)
}

var (
	// ErrEmptyCart é o alvo de comparação para rejeições por carrinho vazio.
	ErrEmptyCart = &RejectionError{Reason: ReasonEmptyCart, Msg: "o carrinho está vazio"}
	// ErrNoPaymentMethod é o alvo de comparação para rejeições sem forma de pagamento.
	ErrNoPaymentMethod = &RejectionError{Reason: ReasonNoPaymentMethod, Msg: "nenhuma forma de pagamento selecionada"}
)

// NewInsufficientStockError cria a rejeição INSUFFICIENT_STOCK para um item.
func NewInsufficientStockError(itemID string, requested int, available string) AppError {
	return &RejectionError{
		Reason: ReasonInsufficientStock,
		ItemID: itemID,
		Msg:    fmt.Sprintf("item %s: solicitado %d, disponível %s", itemID, requested, available),
	}
}

// --- Tipos de Erro de Transporte (colaborador de persistência) ---

// SaleNotRecordedError indica que o registro da venda falhou. Nenhum estado foi alterado
// e a operação pode ser repetida com o mesmo carrinho.
type SaleNotRecordedError struct {
	Err error
}

func (e *SaleNotRecordedError) Error() string {
	return fmt.Sprintf("Venda não registrada: %v", e.Err)
}
func (e *SaleNotRecordedError) Category() string { return "SALE_NOT_RECORDED" }
func (e *SaleNotRecordedError) HTTPStatus() int  { return http.StatusBadGateway } // 502
func (e *SaleNotRecordedError) Unwrap() error    { return e.Err }

// NewSaleNotRecordedError encapsula a falha de gravação da venda.
func NewSaleNotRecordedError(err error) AppError {
	return &SaleNotRecordedError{Err: err}
}

// StockUpdateFailedError indica que a atualização de estoque de um item falhou.
type StockUpdateFailedError struct {
	ItemID string
	Err    error
}

func (e *StockUpdateFailedError) Error() string {
	return fmt.Sprintf("Falha ao atualizar o estoque do item %s: %v", e.ItemID, e.Err)
}
func (e *StockUpdateFailedError) Category() string { return "STOCK_UPDATE_FAILED" }
func (e *StockUpdateFailedError) HTTPStatus() int  { return http.StatusBadGateway } // 502
func (e *StockUpdateFailedError) Unwrap() error    { return e.Err }

// NewStockUpdateFailedError encapsula a falha de atualização de estoque de um item.
func NewStockUpdateFailedError(itemID string, err error) AppError {
	return &StockUpdateFailedError{ItemID: itemID, Err: err}
}

// PartialFailureError descreve uma venda gravada cujas baixas de estoque não foram
// todas aplicadas. Succeeded e Failed trazem os IDs dos itens para reconciliação.
type PartialFailureError struct {
	SaleID    string
	Succeeded []string
	Failed    []string
	Causes    []error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("Venda %s parcialmente aplicada: baixas concluídas [%s], baixas com falha [%s]",
		e.SaleID, strings.Join(e.Succeeded, ", "), strings.Join(e.Failed, ", "))
}
func (e *PartialFailureError) Category() string { return "PARTIALLY_FAILED" }
func (e *PartialFailureError) HTTPStatus() int  { return http.StatusBadGateway } // 502
func (e *PartialFailureError) Unwrap() error    { return stderrors.Join(e.Causes...) }

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
// Erros embrulhados com fmt.Errorf("%w") também são reconhecidos.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratado como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
