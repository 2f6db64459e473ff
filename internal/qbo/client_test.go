package qbo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eccentricworkshop/receiptflow/internal/common"
	"github.com/eccentricworkshop/receiptflow/internal/config"
	"github.com/eccentricworkshop/receiptflow/internal/service"
)

const sampleQueryResponse = `{
	"QueryResponse": {
		"SalesReceipt": [
			{
				"TxnDate": "2024-06-01",
				"TotalAmt": 52.49,
				"CustomerRef": {"value": "77", "name": "Acme"},
				"ShipAddr": {
					"Line1": "Acme",
					"Line2": "100 Main St",
					"Line3": "Los Angeles CA 90001"
				},
				"Line": [
					{
						"DetailType": "SalesItemLineDetail",
						"Amount": 40.0,
						"SalesItemLineDetail": {
							"ItemRef": {"value": "12", "name": "Parts:WIDGET-1"},
							"Qty": 2
						}
					},
					{
						"DetailType": "SalesItemLineDetail",
						"Amount": 12.49,
						"SalesItemLineDetail": {
							"ItemRef": {"value": "SHIPPING_ITEM_ID", "name": "Shipping"}
						}
					},
					{
						"DetailType": "SubTotalLineDetail",
						"Amount": 52.49
					}
				]
			}
		],
		"startPosition": 1,
		"maxResults": 1
	},
	"time": "2024-06-02T08:00:00.000-07:00"
}`

func testConfig() config.Config {
	return config.Config{
		ClientID:       "client",
		ClientSecret:   "secret",
		RefreshToken:   "refresh-token",
		RealmID:        "1234567890",
		ShippingItemID: "SHIPPING_ITEM_ID",
	}
}

func testWindow() service.DateRange {
	return service.DateRange{
		Start: time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestAuthenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "expected HTTP basic auth")
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-token", r.PostForm.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "fresh-token", "token_type": "bearer", "expires_in": 3600}`))
	}))
	defer server.Close()

	client := NewClient(testConfig())
	client.tokenURL = server.URL

	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, "fresh-token", client.accessToken)
}

func TestAuthenticateRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig())
	client.tokenURL = server.URL

	err := client.Authenticate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAuthFailed)
	assert.Empty(t, client.accessToken)
}

func TestFetchReceipts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/company/1234567890/query", r.URL.Path)
		assert.Equal(t, "Bearer fresh-token", r.Header.Get("Authorization"))
		assert.Equal(t,
			"select * from SalesReceipt where TxnDate >= '2024-05-25' and TxnDate <= '2024-06-02'",
			r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleQueryResponse))
	}))
	defer server.Close()

	client := NewClient(testConfig())
	client.baseURL = server.URL
	client.accessToken = "fresh-token"

	receipts, err := client.FetchReceipts(context.Background(), testWindow())
	require.NoError(t, err)
	require.Len(t, receipts, 1)

	receipt := receipts[0]
	assert.Equal(t, "2024-06-01", receipt.TxnDate)
	assert.Equal(t, "Acme", receipt.Customer)
	assert.InDelta(t, 52.49, receipt.TotalAmount, 0.001)
	require.NotNil(t, receipt.ShipAddr)
	assert.Equal(t, "Los Angeles CA 90001", receipt.ShipAddr.Line3)
	assert.Nil(t, receipt.BillAddr)

	// The subtotal line is dropped; only sales-item lines survive.
	require.Len(t, receipt.Lines, 2)
	assert.Equal(t, "Parts:WIDGET-1", receipt.Lines[0].ItemName)
	assert.InDelta(t, 2, receipt.Lines[0].Quantity, 0.001)
	assert.InDelta(t, 40.0, receipt.Lines[0].Amount, 0.001)
	assert.Equal(t, "SHIPPING_ITEM_ID", receipt.Lines[1].ItemID)
	assert.InDelta(t, 1, receipt.Lines[1].Quantity, 0.001, "missing Qty defaults to 1")
}

func TestFetchReceiptsEmptyWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"QueryResponse": {}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig())
	client.baseURL = server.URL
	client.accessToken = "fresh-token"

	receipts, err := client.FetchReceipts(context.Background(), testWindow())
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

func TestFetchReceiptsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"Fault": {"type": "SystemFault"}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig())
	client.baseURL = server.URL
	client.accessToken = "fresh-token"

	receipts, err := client.FetchReceipts(context.Background(), testWindow())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFetchFailed)
	assert.Nil(t, receipts)
}

func TestFetchReceiptsRequiresAuthentication(t *testing.T) {
	client := NewClient(testConfig())

	_, err := client.FetchReceipts(context.Background(), testWindow())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFetchFailed)
}

func TestDumpRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleQueryResponse))
	}))
	defer server.Close()

	client := NewClient(testConfig())
	client.baseURL = server.URL
	client.accessToken = "fresh-token"

	_, err := client.FetchReceipts(context.Background(), testWindow())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sales_receipts.json")
	require.NoError(t, client.DumpRaw(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var dumped []map[string]any
	require.NoError(t, json.Unmarshal(data, &dumped))
	require.Len(t, dumped, 1)
	assert.Equal(t, "2024-06-01", dumped[0]["TxnDate"])
	assert.Contains(t, dumped[0], "Line", "dump keeps fields the pipeline does not read")
}

func TestDumpRawWithoutFetch(t *testing.T) {
	client := NewClient(testConfig())

	path := filepath.Join(t.TempDir(), "sales_receipts.json")
	require.NoError(t, client.DumpRaw(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestAPIBaseURL(t *testing.T) {
	assert.Equal(t, "https://quickbooks.api.intuit.com", apiBaseURL(false))
	assert.Equal(t, "https://sandbox-quickbooks.api.intuit.com", apiBaseURL(true))
}
