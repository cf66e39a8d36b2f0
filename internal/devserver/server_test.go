package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/KaramelBytes/custinsights-cli/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const retailCSV = "Customer ID,Invoice,InvoiceDate,Quantity,Price\n12346,536365,2010-12-01,6,2.55\n"

func postForm(t *testing.T, url string, config string, fileName string, data []byte) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if config != "" {
		require.NoError(t, w.WriteField("config", config))
	}
	if fileName != "-" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	resp, err := http.Post(url, w.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	return resp, doc
}

func TestHealth(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHeaderDiscoveryErrors(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()

	cases := []struct {
		name, file string
		data       []byte
		status     int
		msg        string
	}{
		{"no file part", "-", nil, http.StatusBadRequest, MsgNoFilePart},
		{"unsupported", "orders.pdf", []byte("%PDF"), http.StatusBadRequest, MsgUnsupported},
		{"empty csv", "orders.csv", nil, http.StatusInternalServerError, "spreadsheet has no header row"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp, doc := postForm(t, ts.URL+"/get-headers", "", c.file, c.data)
			assert.Equal(t, c.status, resp.StatusCode)
			assert.Equal(t, c.msg, doc["error"])
		})
	}
}

func TestRootDispatchesByPayload(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()

	_, doc := postForm(t, ts.URL+"/", "", "orders.csv", []byte(retailCSV))
	assert.Equal(t, []any{"Customer ID", "Invoice", "InvoiceDate", "Quantity", "Price"}, doc["headers"])

	_, doc = postForm(t, ts.URL+"/", `{"use_default":true,"cluster_count":4}`, "-", nil)
	personas, ok := doc["personaData"].([]any)
	require.True(t, ok)
	require.Len(t, personas, 1)
	assert.Equal(t, "Test Persona", personas[0].(map[string]any)["persona"])
}

func TestAnalyzeValidatesUploads(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()

	resp, doc := postForm(t, ts.URL+"/analyze", `not json`, "-", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, MsgInvalidConfig, doc["error"])

	cfg := `{"use_default":false,"cluster_count":3,"mappings":{"customer_id":"Customer ID","invoice_id":"Invoice","invoice_date":"InvoiceDate","quantity":"Qty","price":"Price"}}`
	resp, _ = postForm(t, ts.URL+"/analyze", cfg, "-", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, doc = postForm(t, ts.URL+"/analyze", cfg, "orders.csv", []byte(retailCSV))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Column 'Qty' not found in file", doc["error"])
}

func TestClientAgainstDevServer(t *testing.T) {
	ts := httptest.NewServer(New(Config{}).Handler())
	defer ts.Close()
	c := service.NewClient(ts.URL, 5*time.Second)
	ctx := context.Background()

	status, err := service.NewClient(ts.URL, 0).Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", status)

	headers, err := c.DiscoverHeaders(ctx, segment.UploadedFile{Name: "orders.csv", Data: []byte(retailCSV)})
	require.NoError(t, err)
	require.Len(t, headers, 5)

	_, err = c.DiscoverHeaders(ctx, segment.UploadedFile{Name: "orders.txt", Data: []byte("x")})
	var se *service.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, MsgUnsupported, se.Message)

	mapping := segment.FieldMapping{}
	for _, f := range segment.RequiredFields {
		mapping[f.Key] = headers[0]
	}
	res, err := c.Analyze(ctx, segment.AnalysisConfig{ClusterCount: 4, Mappings: mapping},
		&segment.UploadedFile{Name: "orders.csv", Data: []byte(retailCSV)})
	require.NoError(t, err)
	assert.Empty(t, res.PlotData.Data)
	require.Len(t, res.PersonaData, 1)
	assert.Equal(t, PlaceholderPersona.Persona, res.PersonaData[0].Persona)
}

func TestStartStopsOnCancel(t *testing.T) {
	srv := New(Config{Address: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx, ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Skipf("cannot listen locally: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}
	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
