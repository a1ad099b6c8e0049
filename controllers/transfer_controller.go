package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferRequest is the payload for starting a catalog transfer. The
// boolean pointers distinguish "not provided" from an explicit false so the
// variant defaults still apply.
type TransferRequest struct {
	SourceID       string `json:"source_id" validate:"required,uuid"`
	TargetID       string `json:"target_id" validate:"required,uuid"`
	Fast           bool   `json:"fast"`
	CopyCategories *bool  `json:"copy_categories"`
	CopyProducts   *bool  `json:"copy_products"`
	CopyImages     *bool  `json:"copy_images"`
}

// TransferController exposes the transfer operation over HTTP, both
// synchronously and as a Redis-queued background job.
type TransferController struct {
	transferService TransferServiceAPI
	redis           *redis.Client
	validate        *validator.Validate
}

func NewTransferController(ts TransferServiceAPI, rdb *redis.Client) *TransferController {
	return &TransferController{
		transferService: ts,
		redis:           rdb,
		validate:        validator.New(),
	}
}

func (tc *TransferController) parseRequest(c *gin.Context) (*TransferRequest, uuid.UUID, uuid.UUID, services.TransferOptions, bool) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, uuid.Nil, uuid.Nil, services.TransferOptions{}, false
	}
	if err := tc.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, uuid.Nil, uuid.Nil, services.TransferOptions{}, false
	}

	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source_id"})
		return nil, uuid.Nil, uuid.Nil, services.TransferOptions{}, false
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_id"})
		return nil, uuid.Nil, uuid.Nil, services.TransferOptions{}, false
	}
	if sourceID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source and target must be different tenants"})
		return nil, uuid.Nil, uuid.Nil, services.TransferOptions{}, false
	}

	opts := services.DefaultTransferOptions()
	if req.Fast {
		opts = services.FastTransferOptions()
	}
	if req.CopyCategories != nil {
		opts.CopyCategories = *req.CopyCategories
	}
	if req.CopyProducts != nil {
		opts.CopyProducts = *req.CopyProducts
	}
	if req.CopyImages != nil {
		opts.CopyImages = *req.CopyImages
	}

	return &req, sourceID, targetID, opts, true
}

// CreateTransfer starts a transfer. With ?async=true the job is queued and
// a job id is returned; otherwise the transfer runs within the request.
func (tc *TransferController) CreateTransfer(c *gin.Context) {
	_, sourceID, targetID, opts, ok := tc.parseRequest(c)
	if !ok {
		return
	}

	if strings.ToLower(strings.TrimSpace(c.Query("async"))) == "true" {
		tc.enqueue(c, sourceID, targetID, opts)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTransferTimeout)
	defer cancel()

	result := tc.transferService.Transfer(ctx, sourceID, targetID, opts, nil)

	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Não foi possível copiar os produtos",
			"result":  result,
		})
		return
	}

	resp := gin.H{
		"message": summaryMessage(result),
		"result":  result,
	}
	if len(result.Errors) > 0 {
		resp["warning"] = fmt.Sprintf("%d itens tiveram problemas durante a cópia", len(result.Errors))
	}
	c.JSON(http.StatusOK, resp)
}

func (tc *TransferController) enqueue(c *gin.Context, sourceID, targetID uuid.UUID, opts services.TransferOptions) {
	job := &services.TransferJob{
		ID:       uuid.New().String(),
		SourceID: sourceID,
		TargetID: targetID,
		Options:  opts,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := services.EnqueueTransfer(ctx, tc.redis, job); err != nil {
		zap.L().Error("failed to enqueue transfer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue transfer"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID, "status": services.JobQueued})
}

// GetTransferJob returns the status, live progress and (when finished)
// result of an async transfer job.
func (tc *TransferController) GetTransferJob(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job ID required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	job, err := services.GetTransferJob(ctx, tc.redis, id)
	if err != nil {
		if err == redis.Nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		zap.L().Error("failed to read transfer job", zap.String("job", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func summaryMessage(r *models.TransferResult) string {
	return fmt.Sprintf("%d categorias, %d produtos e %d imagens copiados", r.CategoriesCloned, r.ProductsCloned, r.ImagesCloned)
}
