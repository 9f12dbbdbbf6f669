package service_interfaces

import (
	"context"

	"github.com/securebank/payment-core/internal/adapter/http/models"
	"github.com/securebank/payment-core/internal/commons"
)

type TransferService interface {
	SendMoney(ctx context.Context, req models.SendMoneyRequest) (commons.Response[models.TransferResponse], error)
	Deposit(ctx context.Context, req models.DepositRequest) (commons.Response[models.TransferResponse], error)
	PayToken(ctx context.Context, req models.PayTokenRequest) (commons.Response[models.TransferResponse], error)
	RequestMoney(ctx context.Context, req models.MoneyRequestRequest) (commons.Response[models.MoneyRequestResponse], error)
}
