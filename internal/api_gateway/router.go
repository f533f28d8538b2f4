package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/p2p-lending-ledger/internal/api_gateway/handler"
	"github.com/p2p-lending-ledger/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	loanHandler *handler.LoanHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Wallet account operations
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.GET("/:id/balance", accountHandler.GetBalance)
			accounts.GET("/:id/transactions", accountHandler.GetTransactions)
			accounts.POST("/:id/deposit", accountHandler.Deposit)
			accounts.POST("/:id/withdraw", accountHandler.Withdraw)
			accounts.POST("/:id/transfer", accountHandler.Transfer)
		}

		// Peer-to-peer lending operations
		p2p := v1.Group("/p2p")
		{
			p2p.GET("/opportunities", loanHandler.Opportunities)
			p2p.GET("/investments", loanHandler.ListInvestments)

			loans := p2p.Group("/loans")
			{
				loans.POST("", loanHandler.Create)
				loans.GET("", loanHandler.ListByBorrower)
				loans.GET("/:id", loanHandler.GetByID)
				loans.POST("/:id/invest", loanHandler.Invest)
				loans.POST("/:id/repay", loanHandler.Repay)
				loans.POST("/:id/disburse", loanHandler.Disburse)
				loans.POST("/:id/cancel", loanHandler.Cancel)
				loans.POST("/:id/accrue", loanHandler.Accrue)
				loans.POST("/:id/default", loanHandler.MarkDefaulted)
			}
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
