package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defi-credit-scorer/internal/domain"
	"defi-credit-scorer/internal/pipeline"
	"defi-credit-scorer/internal/scoring"
	"defi-credit-scorer/internal/storage/memory"
)

const sampleExport = `[
	{"userWallet": "0xaaa", "action": "deposit", "timestamp": 1629000000,
	 "actionData": {"amount": "1000000000", "assetSymbol": "USDC"}},
	{"userWallet": "0xaaa", "action": "borrow", "timestamp": 1629086400,
	 "actionData": {"amount": "500000000", "assetSymbol": "DAI"}},
	{"userWallet": "0xbbb", "action": "liquidationcall", "timestamp": 1629100000,
	 "actionData": {"assetSymbol": "WETH"}},
	{"action": "deposit"}
]`

func newTestServer(t *testing.T) (*httptest.Server, *memory.ScoreStore) {
	t.Helper()

	scoreStore := memory.NewScoreStore()
	featureStore := memory.NewFeatureStore()
	runner := pipeline.NewRunner(scoring.DefaultConfig()).WithStores(scoreStore, featureStore)

	srv := New(scoreStore, runner, nil, zerolog.Nop())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, scoreStore
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestRunThenGetScores(t *testing.T) {
	ts, _ := newTestServer(t)

	// Trigger a scoring run.
	resp, err := http.Post(ts.URL+"/runs", "application/json", strings.NewReader(sampleExport))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary runSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Len(t, summary.BatchID, 64)
	assert.Equal(t, 3, summary.TransactionsIn)
	assert.Equal(t, 1, summary.RecordsSkipped)
	assert.Equal(t, 2, summary.WalletsScored)

	// Full table reflects the run.
	resp, err = http.Get(ts.URL + "/scores")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var table struct {
		BatchID string                `json:"batch_id"`
		Scores  []*domain.CreditScore `json:"scores"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&table))
	assert.Equal(t, summary.BatchID, table.BatchID)
	require.Len(t, table.Scores, 2)
	assert.Equal(t, "0xaaa", table.Scores[0].Wallet)
	assert.Equal(t, "0xbbb", table.Scores[1].Wallet)

	// Single-wallet lookup.
	resp, err = http.Get(ts.URL + "/scores/0xaaa")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var one domain.CreditScore
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&one))
	assert.Equal(t, "0xaaa", one.Wallet)
	assert.GreaterOrEqual(t, one.CreditScore, 0)
	assert.LessOrEqual(t, one.CreditScore, 1000)
}

func TestGetScore_NotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/scores/0xmissing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRun_BadBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/runs", "application/json", strings.NewReader(`{"not": "an array"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRun_EmptyBatchReplacesSnapshot(t *testing.T) {
	ts, scoreStore := newTestServer(t)

	// Seed a snapshot.
	require.NoError(t, scoreStore.ReplaceAll(context.Background(), "old",
		[]*domain.CreditScore{{Wallet: "0xold", CreditScore: 500}}))

	resp, err := http.Post(ts.URL+"/runs", "application/json", strings.NewReader(`[]`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	scores, err := scoreStore.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, scores, "empty run should wipe the previous snapshot")
}

func TestWebsocketBroadcast(t *testing.T) {
	ts, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the handler a moment to register the subscriber.
	time.Sleep(50 * time.Millisecond)

	resp, err := http.Post(ts.URL+"/runs", "application/json", strings.NewReader(sampleExport))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var summary runSummary
	require.NoError(t, conn.ReadJSON(&summary))
	assert.Equal(t, 2, summary.WalletsScored)
	assert.Len(t, summary.BatchID, 64)
}
