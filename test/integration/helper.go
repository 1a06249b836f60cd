package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 测试依赖本地运行的完整服务(MySQL、Redis、RabbitMQ):
//
//	go run ./cmd/api
//	go test ./test/integration/...
//
// 测试全部通过HTTP入口操作,每个测试用唯一的商品ID隔离数据。

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second

	// 运维账号(config/config.yaml中的开发环境默认值)
	TestOperator = "admin"
	TestPassword = "admin123"
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// LoginData 登录响应数据
type LoginData struct {
	Operator     string `json:"operator"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// PurchaseData 采购入账响应数据
type PurchaseData struct {
	BatchID           uint   `json:"batch_id"`
	ProductID         string `json:"product_id"`
	Quantity          int    `json:"quantity"`
	RemainingQuantity int    `json:"remaining_quantity"`
	UnitPrice         string `json:"unit_price"`
}

// SaleData 销售处理响应数据
type SaleData struct {
	SaleID          uint             `json:"sale_id"`
	SaleNo          string           `json:"sale_no"`
	ProductID       string           `json:"product_id"`
	Quantity        int              `json:"quantity"`
	TotalCost       string           `json:"total_cost"`
	AverageUnitCost string           `json:"average_unit_cost"`
	Details         []SaleDetailData `json:"details"`
}

// SaleDetailData 批次扣减明细
type SaleDetailData struct {
	BatchID   uint   `json:"batch_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Cost      string `json:"cost"`
}

// StatusData 库存状态响应数据
type StatusData struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	TotalQuantity   int    `json:"total_quantity"`
	TotalValue      string `json:"total_value"`
	WeightedAvgCost string `json:"weighted_avg_cost"`
	ActiveBatches   int    `json:"active_batches"`
}

// BatchListData 批次列表响应数据
type BatchListData struct {
	List  []BatchData `json:"list"`
	Total int64       `json:"total"`
}

// BatchData 批次数据
type BatchData struct {
	ID                uint   `json:"id"`
	Quantity          int    `json:"quantity"`
	RemainingQuantity int    `json:"remaining_quantity"`
	UnitPrice         string `json:"unit_price"`
	Exhausted         bool   `json:"exhausted"`
}

// TransactionListData 流水列表响应数据
type TransactionListData struct {
	List  []TransactionData `json:"list"`
	Total int64             `json:"total"`
}

// TransactionData 流水数据
type TransactionData struct {
	Type        string `json:"type"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalAmount string `json:"total_amount"`
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	jsonData, err := json.Marshal(data)
	require.NoError(t, err, "JSON序列化失败")

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(body))

	return &result
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err, "创建HTTP请求失败")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(body))

	return &result
}

// LoginTestOperator 登录运维账号并返回Token
func LoginTestOperator(t *testing.T) string {
	loginReq := map[string]string{
		"operator": TestOperator,
		"password": TestPassword,
	}

	loginResp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return loginData.AccessToken
}

// GenerateTestProductID 生成唯一的测试商品ID
// 使用纳秒时间戳隔离不同测试运行的数据。
func GenerateTestProductID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// RecordTestPurchase 采购入账并返回批次数据
func RecordTestPurchase(t *testing.T, token, productID string, quantity int, unitPrice string) PurchaseData {
	purchaseReq := map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
		"unit_price": unitPrice,
	}

	resp := PostJSON(t, BaseURL+"/purchases", purchaseReq, token)
	require.Equal(t, 0, resp.Code, "采购入账失败: %s", resp.Message)

	var data PurchaseData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析采购响应失败")

	return data
}

// GetTestStatus 查询商品库存状态
func GetTestStatus(t *testing.T, productID string) StatusData {
	resp := GetJSON(t, BaseURL+"/inventory/"+productID, "")
	require.Equal(t, 0, resp.Code, "查询库存状态失败: %s", resp.Message)

	var data StatusData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析库存状态失败")

	return data
}
