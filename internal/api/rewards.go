package api

import (
	"net/http"
	"time"

	"study_garden/internal/middleware"
	"study_garden/internal/model"
	"study_garden/internal/service"
	"study_garden/pkg/auth"
	"study_garden/pkg/logger"

	"github.com/gin-gonic/gin"
)

type rewardRoutes struct {
	rs service.RewardServiceI
	a  *auth.TelegramAuth
}

func NewRewardRoutes(handler *gin.RouterGroup, rs service.RewardServiceI, a *auth.TelegramAuth) {
	r := &rewardRoutes{rs: rs, a: a}
	h := handler.Group("/rewards")
	h.Use(a.TelegramAuthMiddleware(), middleware.RequireUser())
	{
		h.GET("/balance", r.GetBalance)
		h.GET("/progress", r.GetProgress)
		h.GET("/owned", r.ListOwned)
		h.GET("/catalog", r.ListCatalog)
		h.GET("/history", r.GetHistory)
		h.POST("/roll", r.Roll)
		h.POST("/free-awards", r.GrantFreeAwards)
	}
}

type RollResponse struct {
	RollID       string `json:"roll_id"`
	Result       string `json:"result"`
	Name         string `json:"name"`
	Rarity       string `json:"rarity"`
	Cost         int    `json:"cost"`
	Refund       int    `json:"refund,omitempty"`
	BalanceAfter int    `json:"balance_after"`
}

type OwnedRewardResponse struct {
	Name       string    `json:"name"`
	Rarity     string    `json:"rarity"`
	Source     string    `json:"source"`
	AcquiredAt time.Time `json:"acquired_at"`
	Duplicates int       `json:"duplicates"`
}

type LedgerEntryResponse struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	Name       string    `json:"name,omitempty"`
	Rarity     string    `json:"rarity,omitempty"`
	Cost       int       `json:"cost"`
	Source     string    `json:"source"`
	RollID     string    `json:"roll_id,omitempty"`
	AcquiredAt time.Time `json:"acquired_at"`
}

func (r *rewardRoutes) GetBalance(c *gin.Context) {
	log := logger.Logger()

	b, err := r.rs.Balance(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, log, "failed to get balance", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"earned":    b.Earned,
		"spent":     b.Spent,
		"balance":   b.Balance,
		"roll_cost": service.RollCost,
	})
}

func (r *rewardRoutes) GetProgress(c *gin.Context) {
	log := logger.Logger()

	p, err := r.rs.Progress(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, log, "failed to get progress", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_completed":     p.TotalCompleted,
		"free_awards_due":     p.FreeAwardsDue,
		"next_free_award_in":  p.NextFreeAwardIn,
		"owned":               p.Owned,
		"catalog_size":        p.CatalogSize,
		"collection_complete": p.CollectionComplete,
	})
}

func (r *rewardRoutes) ListOwned(c *gin.Context) {
	log := logger.Logger()

	owned, err := r.rs.ListOwned(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, log, "failed to list owned rewards", err)
		return
	}

	out := make([]OwnedRewardResponse, len(owned))
	for i, o := range owned {
		out[i] = OwnedRewardResponse{
			Name:       o.Name,
			Rarity:     string(o.Rarity),
			Source:     string(o.Source),
			AcquiredAt: o.AcquiredAt,
			Duplicates: o.Duplicates,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (r *rewardRoutes) ListCatalog(c *gin.Context) {
	log := logger.Logger()

	items, err := r.rs.ListCatalog(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, log, "failed to list catalog", err)
		return
	}

	out := make([]gin.H, len(items))
	for i, item := range items {
		out[i] = gin.H{
			"name":   item.Name,
			"rarity": item.Rarity,
			"weight": item.Rarity.Weight(),
			"owned":  item.Owned,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (r *rewardRoutes) GetHistory(c *gin.Context) {
	log := logger.Logger()

	entries, err := r.rs.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, log, "failed to get reward history", err)
		return
	}

	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = newLedgerEntryResponse(e)
	}
	c.JSON(http.StatusOK, out)
}

func newLedgerEntryResponse(e *model.LedgerEntry) LedgerEntryResponse {
	resp := LedgerEntryResponse{
		ID:         e.ID,
		Kind:       string(e.Kind),
		Name:       e.Name,
		Rarity:     string(e.Rarity),
		Cost:       e.Cost,
		Source:     string(e.Source),
		AcquiredAt: e.AcquiredAt,
	}
	if e.RollID.Valid {
		resp.RollID = e.RollID.UUID.String()
	}
	return resp
}

func (r *rewardRoutes) Roll(c *gin.Context) {
	log := logger.Logger()

	outcome, err := r.rs.Roll(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, log, "failed to roll", err)
		return
	}

	c.JSON(http.StatusOK, RollResponse{
		RollID:       outcome.RollID.String(),
		Result:       string(outcome.Result),
		Name:         outcome.Name,
		Rarity:       string(outcome.Rarity),
		Cost:         outcome.Cost,
		Refund:       outcome.Refund,
		BalanceAfter: outcome.BalanceAfter,
	})
}

func (r *rewardRoutes) GrantFreeAwards(c *gin.Context) {
	log := logger.Logger()

	result, err := r.rs.GrantFreeAwards(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, log, "failed to grant free awards", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rewards":           result.Granted,
		"catalog_exhausted": result.Exhausted,
	})
}
