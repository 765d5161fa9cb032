package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"autofilter-bot/internal/app"
	"autofilter-bot/internal/model"
	"autofilter-bot/internal/repository"
	"autofilter-bot/internal/transport/http/response"
)

// PremiumAdmin is the slice of the premium service the admin API drives.
type PremiumAdmin interface {
	Grant(ctx context.Context, userID int64, days int) (*model.PremiumRecord, error)
	Revoke(ctx context.Context, userID int64) error
	ListPremium(ctx context.Context) ([]model.PremiumRecord, error)
	CountPremium(ctx context.Context) (int64, error)
	TrialEnabled() bool
	SetTrialEnabled(on bool)
}

// FileAdmin is the slice of the file store the admin API drives.
type FileAdmin interface {
	DeleteByQuery(ctx context.Context, selector model.Tier, rawQuery string) (int64, error)
	Move(ctx context.Context, rawQuery string, from, to model.Tier) (int64, error)
	CountAll(ctx context.Context) (repository.TierCounts, error)
	ListByTier(ctx context.Context, tier model.Tier, offset, limit int) ([]model.FileRecord, error)
}

// UserAdmin is the slice of the user registry the admin API drives.
type UserAdmin interface {
	Count(ctx context.Context) (int64, error)
	Ban(ctx context.Context, id int64, reason string) error
	Unban(ctx context.Context, id int64) error
}

// ChatAdmin is the slice of the chat registry the admin API drives.
type ChatAdmin interface {
	Count(ctx context.Context) (int64, error)
	Disable(ctx context.Context, id int64, reason string) error
}

type AdminHandler struct {
	premium   PremiumAdmin
	files     FileAdmin
	users     UserAdmin
	chats     ChatAdmin
	startedAt time.Time
}

func NewAdminHandler(premium PremiumAdmin, files FileAdmin, users UserAdmin, chats ChatAdmin, startedAt time.Time) *AdminHandler {
	return &AdminHandler{
		premium:   premium,
		files:     files,
		users:     users,
		chats:     chats,
		startedAt: startedAt,
	}
}

type GrantRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	Days   int   `json:"days" binding:"required,min=1"`
}

func (h *AdminHandler) GrantPremium(c *gin.Context) {
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	rec, err := h.premium.Grant(c.Request.Context(), req.UserID, req.Days)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrFeatureDisabled):
			response.Error(c, http.StatusBadRequest, response.CodeFeatureDisabled, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "grant premium failed")
		}
		return
	}

	response.OK(c, gin.H{
		"user_id": rec.UserID,
		"plan":    rec.Plan,
		"expire":  rec.Expire,
	})
}

type RevokeRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

func (h *AdminHandler) RevokePremium(c *gin.Context) {
	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.premium.Revoke(c.Request.Context(), req.UserID); err != nil {
		switch {
		case errors.Is(err, app.ErrFeatureDisabled):
			response.Error(c, http.StatusBadRequest, response.CodeFeatureDisabled, err.Error())
		case errors.Is(err, app.ErrNotPremium):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "revoke premium failed")
		}
		return
	}

	response.OK(c, nil)
}

func (h *AdminHandler) ListPremiumUsers(c *gin.Context) {
	recs, err := h.premium.ListPremium(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list premium users failed")
		return
	}

	users := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		users = append(users, gin.H{
			"user_id": rec.UserID,
			"plan":    rec.Plan,
			"expire":  rec.Expire,
			"trial":   rec.Trial,
		})
	}
	response.OK(c, gin.H{"users": users, "count": len(users)})
}

type TrialToggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (h *AdminHandler) ToggleTrial(c *gin.Context) {
	var req TrialToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	h.premium.SetTrialEnabled(*req.Enabled)
	response.OK(c, gin.H{"trial_enabled": h.premium.TrialEnabled()})
}

type BanUserRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Reason string `json:"reason"`
}

func (h *AdminHandler) BanUser(c *gin.Context) {
	var req BanUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.users.Ban(c.Request.Context(), req.UserID, req.Reason); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ban user failed")
		return
	}
	response.OK(c, nil)
}

func (h *AdminHandler) UnbanUser(c *gin.Context) {
	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.users.Unban(c.Request.Context(), req.UserID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "unban user failed")
		return
	}
	response.OK(c, nil)
}

type DisableChatRequest struct {
	ChatID int64  `json:"chat_id" binding:"required"`
	Reason string `json:"reason"`
}

func (h *AdminHandler) DisableChat(c *gin.Context) {
	var req DisableChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.chats.Disable(c.Request.Context(), req.ChatID, req.Reason); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "disable chat failed")
		return
	}
	response.OK(c, nil)
}

type DeleteFilesRequest struct {
	Tier  string `json:"tier"`
	Query string `json:"query" binding:"required"`
}

func (h *AdminHandler) DeleteFiles(c *gin.Context) {
	var req DeleteFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	selector := model.TierAll
	if req.Tier != "" {
		selector = model.ParseTier(req.Tier)
	}

	deleted, err := h.files.DeleteByQuery(c.Request.Context(), selector, req.Query)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete files failed")
		return
	}
	response.OK(c, gin.H{"deleted": deleted})
}

type MoveFilesRequest struct {
	From  string `json:"from" binding:"required"`
	To    string `json:"to" binding:"required"`
	Query string `json:"query" binding:"required"`
}

func (h *AdminHandler) MoveFiles(c *gin.Context) {
	var req MoveFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	from := model.Tier(req.From)
	to := model.Tier(req.To)
	if !from.IsStorage() || !to.IsStorage() || from == to {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "from and to must be distinct storage tiers")
		return
	}

	moved, err := h.files.Move(c.Request.Context(), req.Query, from, to)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "move files failed")
		return
	}
	response.OK(c, gin.H{"moved": moved})
}

func (h *AdminHandler) ListFiles(c *gin.Context) {
	tier := model.ParseTier(c.Query("tier"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	files, err := h.files.ListByTier(c.Request.Context(), tier, offset, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list files failed")
		return
	}
	response.OK(c, gin.H{"tier": tier, "files": files})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.files.CountAll(ctx)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "count files failed")
		return
	}

	userCount, err := h.users.Count(ctx)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "count users failed")
		return
	}
	chatCount, err := h.chats.Count(ctx)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "count chats failed")
		return
	}
	premiumCount, err := h.premium.CountPremium(ctx)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "count premium failed")
		return
	}

	response.OK(c, gin.H{
		"files": gin.H{
			"primary": counts.Primary,
			"cloud":   counts.Cloud,
			"archive": counts.Archive,
			"total":   counts.Total,
		},
		"users":      userCount,
		"chats":      chatCount,
		"premium":    premiumCount,
		"uptime_sec": int(time.Since(h.startedAt).Seconds()),
	})
}
