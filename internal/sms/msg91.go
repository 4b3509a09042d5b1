package sms

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const defaultBaseURL = "https://control.msg91.com/api/v5"

// MSG91Client sends OTP codes through the MSG91 flow API.
type MSG91Client struct {
	authKey    string
	templateID string
	baseURL    string
	httpClient *http.Client
}

func NewMSG91Client(authKey, templateID string) *MSG91Client {
	return &MSG91Client{
		authKey:    authKey,
		templateID: templateID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type msg91FlowRequest struct {
	TemplateID string               `json:"template_id"`
	Recipients []msg91FlowRecipient `json:"recipients"`
}

type msg91FlowRecipient struct {
	Mobiles string `json:"mobiles"`
	OTP     string `json:"otp"`
}

type msg91FlowResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (c *MSG91Client) Send(phone, code string) error {
	payload := msg91FlowRequest{
		TemplateID: c.templateID,
		Recipients: []msg91FlowRecipient{{Mobiles: phone, OTP: code}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode sms request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/flow/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authkey", c.authKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, raw)
	}

	var flowResp msg91FlowResponse
	if err := json.Unmarshal(raw, &flowResp); err == nil && flowResp.Type == "error" {
		return fmt.Errorf("sms gateway rejected message: %s", flowResp.Message)
	}

	return nil
}

// ConsoleSender logs the code instead of sending it. Used when no MSG91
// auth key is configured.
type ConsoleSender struct{}

func (ConsoleSender) Send(phone, code string) error {
	log.Printf("[SMS] (console) OTP for %s: %s", phone, code)
	return nil
}
