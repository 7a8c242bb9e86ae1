// Package mirror 将采购需求镜像推送到外部采购协同系统
// 推送是尽力而为的：失败由调用方记日志，不阻断本地流程
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/asalman45/ERP-Project-My-Edit-sub000/internal/erp/entity"
	"go.uber.org/zap"
)

// Client 采购镜像客户端
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient baseURL为空时返回nil，调用方按未配置处理
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type prPayload struct {
	PRCode       string  `json:"pr_code"`
	MaterialID   string  `json:"material_id"`
	MaterialCode string  `json:"material_code"`
	MaterialName string  `json:"material_name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Priority     string  `json:"priority"`
	RequiredDate string  `json:"required_date,omitempty"`
	Source       string  `json:"source"`
	SourceID     string  `json:"source_id"`
}

// PushPR 推送一条采购需求
func (c *Client) PushPR(ctx context.Context, pr *entity.PurchaseRequisition) error {
	payload := prPayload{
		PRCode:       pr.PRCode,
		MaterialID:   pr.MaterialID,
		MaterialCode: pr.MaterialCode,
		MaterialName: pr.MaterialName,
		Quantity:     pr.Quantity,
		Unit:         pr.Unit,
		Priority:     pr.Priority,
		Source:       pr.Source,
		SourceID:     pr.SourceID,
	}
	if pr.RequiredDate != nil {
		payload.RequiredDate = pr.RequiredDate.Format("2006-01-02")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化采购需求失败: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/procurement/requisitions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("推送采购需求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("镜像系统返回 %d: %s", resp.StatusCode, string(raw))
	}
	c.logger.Debug("采购需求已推送镜像", zap.String("pr_code", pr.PRCode))
	return nil
}
