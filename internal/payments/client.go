package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"skyfare/internal/shared/config"
)

// InvoiceRequest is the CREATE_INVOICE payload sent to the gateway.
type InvoiceRequest struct {
	TransactionType   string   `json:"transactionType"`
	MerchantAccount   string   `json:"merchantAccount"`
	MerchantDomain    string   `json:"merchantDomainName"`
	MerchantSignature string   `json:"merchantSignature"`
	APIVersion        int      `json:"apiVersion"`
	Language          string   `json:"language"`
	ServiceURL        string   `json:"serviceUrl"`
	OrderReference    string   `json:"orderReference"`
	OrderDate         int64    `json:"orderDate"`
	Amount            int      `json:"amount"`
	Currency          string   `json:"currency"`
	OrderTimeout      int      `json:"orderTimeout"`
	ProductName       []string `json:"productName"`
	ProductPrice      []int    `json:"productPrice"`
	ProductCount      []int    `json:"productCount"`
	PaymentSystems    string   `json:"paymentSystems"`
	ClientEmail       string   `json:"clientEmail"`
}

// InvoiceResponse is the subset of the gateway reply the caller needs.
type InvoiceResponse struct {
	Reason         string `json:"reason"`
	ReasonCode     int    `json:"reasonCode"`
	InvoiceURL     string `json:"invoiceUrl"`
	QRCode         string `json:"qrCode"`
	OrderReference string `json:"orderReference,omitempty"`
}

// GatewayClient creates payment invoices at the WayForPay API.
type GatewayClient interface {
	CreateInvoice(ctx context.Context, orderReference string, amount, ticketCount int, clientEmail string) (*InvoiceResponse, error)
}

type gatewayClient struct {
	cfg        config.GatewayConfig
	httpClient *http.Client
}

func NewGatewayClient(cfg config.GatewayConfig) GatewayClient {
	return &gatewayClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *gatewayClient) CreateInvoice(ctx context.Context, orderReference string, amount, ticketCount int, clientEmail string) (*InvoiceResponse, error) {
	req := InvoiceRequest{
		TransactionType: "CREATE_INVOICE",
		MerchantAccount: c.cfg.MerchantAccount,
		MerchantDomain:  c.cfg.MerchantDomain,
		APIVersion:      1,
		Language:        "en",
		ServiceURL:      c.cfg.ServiceURL,
		OrderReference:  orderReference,
		OrderDate:       time.Now().Unix(),
		Amount:          amount,
		Currency:        c.cfg.Currency,
		OrderTimeout:    c.cfg.InvoiceTimeout,
		ProductName:     []string{"Air Ticket"},
		ProductPrice:    []int{amount},
		ProductCount:    []int{ticketCount},
		PaymentSystems:  "card;privat24",
		ClientEmail:     clientEmail,
	}
	req.MerchantSignature = c.signInvoice(&req)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build invoice request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var invoice InvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&invoice); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return &invoice, nil
}

// signInvoice joins the signed fields in the order the gateway
// expects: account, domain, reference, date, amount, currency, then
// each product name, count, and price.
func (c *gatewayClient) signInvoice(req *InvoiceRequest) string {
	fields := []string{
		req.MerchantAccount,
		req.MerchantDomain,
		req.OrderReference,
		strconv.FormatInt(req.OrderDate, 10),
		strconv.Itoa(req.Amount),
		req.Currency,
	}
	for _, name := range req.ProductName {
		fields = append(fields, name)
	}
	for _, count := range req.ProductCount {
		fields = append(fields, strconv.Itoa(count))
	}
	for _, price := range req.ProductPrice {
		fields = append(fields, strconv.Itoa(price))
	}
	return Sign(fields, c.cfg.SecretKey)
}
