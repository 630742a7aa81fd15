package handler

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/domain/repository"
	"skipfurther/internal/usecase"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/response"
	"skipfurther/pkg/utils"
)

const defaultTransactionPageSize = 20

type TransactionHandler struct {
	transactionUseCase *usecase.TransactionUseCase
}

func NewTransactionHandler(transactionUseCase *usecase.TransactionUseCase) *TransactionHandler {
	return &TransactionHandler{
		transactionUseCase: transactionUseCase,
	}
}

type createTransactionRequest struct {
	ListingID string `json:"listingId" validate:"required"`
	BidID     string `json:"bidId"`
}

type updateTransactionStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *TransactionHandler) Create(c echo.Context) error {
	var req createTransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	txn, err := h.transactionUseCase.CreateTransaction(c.Request().Context(), currentUser(c), req.ListingID, req.BidID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, txn)
}

func (h *TransactionHandler) List(c echo.Context) error {
	role := c.QueryParam("role")
	if role != "" && role != repository.RoleBuyer && role != repository.RoleSeller {
		return response.Error(c, errors.BadRequest("role must be buyer or seller", nil))
	}

	pagination := utils.GetPaginationParams(c, defaultTransactionPageSize)
	txns, total, err := h.transactionUseCase.ListTransactions(c.Request().Context(), currentUser(c), repository.TransactionFilter{
		Role:   role,
		Status: c.QueryParam("status"),
		Limit:  pagination.PageSize,
		Offset: pagination.Offset,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, txns, total, pagination.Page, pagination.PageSize)
}

func (h *TransactionHandler) Get(c echo.Context) error {
	detail, err := h.transactionUseCase.GetTransaction(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *TransactionHandler) UpdateStatus(c echo.Context) error {
	var req updateTransactionStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	txn, err := h.transactionUseCase.UpdateStatus(c.Request().Context(), currentUser(c), c.Param("id"), req.Status)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, txn)
}

// Verify takes multipart verificationMethod, verificationData and an optional proofImage.
func (h *TransactionHandler) Verify(c echo.Context) error {
	method := c.FormValue("verificationMethod")
	if method == "" {
		return response.Error(c, errors.BadRequest("verificationMethod is required", nil))
	}

	proof, err := formFile(c, "proofImage", false)
	if err != nil {
		return response.Error(c, err)
	}
	defer proof.close()

	input := usecase.SubmitVerificationInput{
		Method: method,
		Data:   c.FormValue("verificationData"),
	}
	if proof != nil {
		input.Proof = proof.reader()
		input.ProofContentType = proof.contentType
	}

	result, err := h.transactionUseCase.SubmitVerification(c.Request().Context(), currentUser(c), c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

func (h *TransactionHandler) ListVerifications(c echo.Context) error {
	verifications, err := h.transactionUseCase.ListVerifications(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, verifications)
}
