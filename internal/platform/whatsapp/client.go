package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// Dispatcher は請求書・レポート等のメッセージ送信窓口。
// 配信そのものはコアの責務外なので、インターフェースの背後に隠す。
type Dispatcher interface {
	Send(ctx context.Context, phone, message string) error
}

// Client: 社内のWhatsApp中継APIを叩く実装
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// 0xxxxxxxxx 形式は国番号91に正規化する
func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "0") && len(phone) == 11 {
		return "91" + phone[1:]
	}
	return phone
}

func (c *Client) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(sendRequest{Phone: normalizePhone(phone), Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp relay returned status %d", resp.StatusCode)
	}
	return nil
}

// NopDispatcher: 中継API未設定の環境用。送信内容をログに残すだけ。
type NopDispatcher struct{}

func (NopDispatcher) Send(_ context.Context, phone, message string) error {
	log.Printf("[INFO] whatsapp disabled: would send to %s: %s", phone, message)
	return nil
}
