// Package qbo provides a client for the QuickBooks Online accounting API.
package qbo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/eccentricworkshop/receiptflow/internal/common"
	"github.com/eccentricworkshop/receiptflow/internal/config"
	"github.com/eccentricworkshop/receiptflow/internal/model"
	"github.com/eccentricworkshop/receiptflow/internal/service"
)

// BearerTokenURL is Intuit's OAuth2 refresh endpoint.
const BearerTokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"

// Client implements the ReceiptFetcher interface for QuickBooks Online.
type Client struct {
	cfg         config.Config
	httpClient  *http.Client
	baseURL     string
	tokenURL    string
	accessToken string
	rawReceipts json.RawMessage
}

// NewClient creates a QuickBooks Online client. Call Authenticate before
// fetching.
func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:  apiBaseURL(cfg.Sandbox),
		tokenURL: BearerTokenURL,
	}
}

func apiBaseURL(sandbox bool) string {
	host := "quickbooks.api.intuit.com"
	if sandbox {
		host = "sandbox-" + host
	}
	return "https://" + host
}

// Authenticate exchanges the stored refresh token for a fresh access token.
// QuickBooks access tokens live about an hour; one per run is plenty.
func (c *Client) Authenticate(ctx context.Context) error {
	oauthConfig := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	source := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: c.cfg.RefreshToken})

	token, err := source.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrAuthFailed, err)
	}

	c.accessToken = token.AccessToken
	slog.Debug("Refreshed QuickBooks access token")
	return nil
}

// FetchReceipts issues a single date-filtered query and returns the matching
// sales receipts. Results beyond the platform's first page are not fetched.
func (c *Client) FetchReceipts(ctx context.Context, window service.DateRange) ([]model.Receipt, error) {
	if c.accessToken == "" {
		return nil, fmt.Errorf("%w: client not authenticated", common.ErrFetchFailed)
	}

	query := fmt.Sprintf("select * from SalesReceipt where TxnDate >= '%s' and TxnDate <= '%s'",
		window.Start.Format("2006-01-02"),
		window.End.Format("2006-01-02"))

	endpoint := fmt.Sprintf("%s/v3/company/%s/query", c.baseURL, url.PathEscape(c.cfg.RealmID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", common.ErrFetchFailed, err)
	}

	params := req.URL.Query()
	params.Set("query", query)
	req.URL.RawQuery = params.Encode()

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("Requesting sales receipts",
		"start_date", window.Start.Format("2006-01-02"),
		"end_date", window.End.Format("2006-01-02"),
		"sandbox", c.cfg.Sandbox)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %d - %s", common.ErrFetchFailed, resp.StatusCode, string(body))
	}

	var envelope queryEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", common.ErrFetchFailed, err)
	}

	c.rawReceipts = envelope.QueryResponse.SalesReceipt

	var wire []salesReceipt
	if len(c.rawReceipts) > 0 {
		if err := json.Unmarshal(c.rawReceipts, &wire); err != nil {
			return nil, fmt.Errorf("%w: decoding receipts: %v", common.ErrFetchFailed, err)
		}
	}

	receipts := make([]model.Receipt, 0, len(wire))
	for _, sr := range wire {
		receipts = append(receipts, sr.toModel())
	}

	return receipts, nil
}

// DumpRaw writes the last fetched receipts as indented JSON, exactly as the
// platform returned them. Used by the receipt_debug config flag.
func (c *Client) DumpRaw(path string) error {
	raw := c.rawReceipts
	if len(raw) == 0 {
		raw = json.RawMessage("[]")
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return fmt.Errorf("formatting receipt dump: %w", err)
	}
	buf.WriteByte('\n')

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing receipt dump: %w", err)
	}

	slog.Info("Wrote raw receipt dump", "path", path)
	return nil
}
