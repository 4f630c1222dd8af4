package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-receipts/app/access"
	"github.com/vibast-solutions/ms-go-receipts/app/types"
)

const (
	accessTokenHeader = "X-Access-Token"
	accessTokenQuery  = "token"
)

type linkSigner interface {
	Sign(scope string, id uint64) (string, error)
	Verify(token, scope string, id uint64) error
}

// RequireLinkToken guards customer-facing routes keyed by :id. The request
// must carry a link token issued for that id and scope.
func RequireLinkToken(links linkSigner, scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 64)
			if err != nil || id == 0 {
				return writeError(ctx, http.StatusBadRequest, "invalid id")
			}
			if err := links.Verify(linkToken(ctx), scope, id); err != nil {
				return writeError(ctx, http.StatusUnauthorized, err.Error())
			}
			return next(ctx)
		}
	}
}

func linkToken(ctx echo.Context) string {
	if token := strings.TrimSpace(ctx.Request().Header.Get(accessTokenHeader)); token != "" {
		return token
	}
	return strings.TrimSpace(ctx.QueryParam(accessTokenQuery))
}

func signPayment(links linkSigner, payment *types.Payment) {
	if links == nil || payment == nil || payment.Id == 0 {
		return
	}
	if token, err := links.Sign(access.ScopePayment, payment.Id); err == nil {
		payment.AccessToken = token
	}
}

func signReceipt(links linkSigner, receipt *types.Receipt) {
	if links == nil || receipt == nil || receipt.Id == 0 {
		return
	}
	if token, err := links.Sign(access.ScopeReceipt, receipt.Id); err == nil {
		receipt.AccessToken = token
	}
}

func signCustomer(links linkSigner, user *types.User) {
	if links == nil || user == nil || user.Id == 0 {
		return
	}
	if token, err := links.Sign(access.ScopeCustomer, user.Id); err == nil {
		user.AccessToken = token
	}
}
