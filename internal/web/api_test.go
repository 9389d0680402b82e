package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etsetup/internal/config"
	"etsetup/internal/download"
	"etsetup/internal/storage"
)

func TestAPIDriveCheck(t *testing.T) {
	srv, _ := testServer(t)
	srv.checkWritable = func(path string) bool { return path == "/media/op/GOOD" }
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/api/drive/check?path=/media/op/GOOD")
	require.NoError(t, err)
	var ok struct {
		Writable bool `json:"writable"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ok))
	resp.Body.Close()
	assert.True(t, ok.Writable)

	resp, err = client.Get(ts.URL + "/api/drive/check?path=/media/op/BAD")
	require.NoError(t, err)
	var bad struct {
		Writable bool   `json:"writable"`
		Error    string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bad))
	resp.Body.Close()
	assert.False(t, bad.Writable)
	assert.NotEmpty(t, bad.Error)
}

func TestAPIDrives(t *testing.T) {
	srv, _ := testServer(t)
	srv.listCandidates = func(string) []storage.Candidate {
		return []storage.Candidate{{Name: "USB64", Mount: "/media/op/USB64", Size: "57.3G"}}
	}
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/api/drives")
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload struct {
		Drives []storage.Candidate `json:"drives"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Drives, 1)
	assert.Equal(t, "USB64", payload.Drives[0].Name)
}

func TestAPIRegions(t *testing.T) {
	listing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<a href="canada/quebec-latest.osm.pbf">quebec-latest.osm.pbf</a>
			<a href="canada/canada-latest.osm.pbf">canada-latest.osm.pbf</a>
		</body></html>`))
	}))
	defer listing.Close()

	srv, _ := testServer(t)
	srv.settings.Regions = map[string]config.CatalogSource{
		"canada": {ListingURL: listing.URL, BaseURL: listing.URL, Aggregate: "canada"},
	}
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/api/regions/canada")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Regions []struct {
			ID      string `json:"id"`
			Display string `json:"display"`
		} `json:"regions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Regions, 1, "aggregate must be excluded")
	assert.Equal(t, "quebec", payload.Regions[0].ID)
	assert.Equal(t, "Quebec", payload.Regions[0].Display)
}

func TestAPIRegionsUnknownCountry(t *testing.T) {
	srv, _ := testServer(t)
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/api/regions/atlantis")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPISelectAndStatusFlow(t *testing.T) {
	srv, _ := testServer(t)
	ts, client := wizardClient(t, srv)

	// Establish the session.
	resp, err := client.Get(ts.URL + "/lang/en")
	require.NoError(t, err)
	resp.Body.Close()

	body, _ := json.Marshal(map[string]interface{}{
		"items": []map[string]string{
			{"name": "quebec-latest.osm.pbf", "url": "http://example.com/quebec-latest.osm.pbf"},
			{"name": "", "url": "dropped"},
		},
	})
	resp, err = client.Post(ts.URL+"/api/select/regions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var sel struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sel))
	resp.Body.Close()
	assert.Equal(t, 1, sel.Count, "items without a name or URL are dropped")

	// Status before any batch is empty.
	resp, err = client.Get(ts.URL + "/api/download/status")
	require.NoError(t, err)
	var st struct {
		Kind   string          `json:"kind"`
		Status download.Status `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	resp.Body.Close()
	assert.Equal(t, "", st.Kind)
	assert.Zero(t, st.Status.Total)
}

func TestAPISelectUnknownKind(t *testing.T) {
	srv, _ := testServer(t)
	ts, client := wizardClient(t, srv)

	resp, err := client.Post(ts.URL+"/api/select/videos", "application/json",
		bytes.NewReader([]byte(`{"items":[]}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIDownloadStartEmptyBatch(t *testing.T) {
	srv, _ := testServer(t)
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/lang/en")
	require.NoError(t, err)
	resp.Body.Close()

	// No regions selected: the batch resolves immediately with zero items.
	resp, err = client.Post(ts.URL+"/api/download/start", "application/json",
		bytes.NewReader([]byte(`{"kind":"regions"}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := client.Get(ts.URL + "/api/download/status")
		require.NoError(t, err)
		var st struct {
			Kind   string          `json:"kind"`
			Status download.Status `json:"status"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
		resp.Body.Close()
		if !st.Status.Running && st.Kind == "regions" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("batch never settled")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestAPIDownloadStartRejectsSecondBatch(t *testing.T) {
	srv, _ := testServer(t)
	srv.echo = true

	optsCh := make(chan download.Options, 1)
	// The stub never runs the batch, so its items stay pending and a second
	// start must be refused.
	srv.runBatch = func(kind string, batch *download.Batch, opts download.Options) {
		optsCh <- opts
	}
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/lang/en")
	require.NoError(t, err)
	resp.Body.Close()

	sel, _ := json.Marshal(map[string]interface{}{
		"items": []map[string]string{
			{"name": "quebec-latest.osm.pbf", "url": "http://example.com/quebec-latest.osm.pbf"},
		},
	})
	resp, err = client.Post(ts.URL+"/api/select/regions", "application/json", bytes.NewReader(sel))
	require.NoError(t, err)
	resp.Body.Close()

	start := []byte(`{"kind":"regions"}`)
	resp, err = client.Post(ts.URL+"/api/download/start", "application/json", bytes.NewReader(start))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	// Console echo reaches the batch options when the server runs in debug.
	select {
	case opts := <-optsCh:
		assert.True(t, opts.Echo)
	case <-time.After(time.Second):
		t.Fatal("batch runner was never invoked")
	}

	resp, err = client.Post(ts.URL+"/api/download/start", "application/json", bytes.NewReader(start))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPIDownloadStartUnknownKind(t *testing.T) {
	srv, _ := testServer(t)
	ts, client := wizardClient(t, srv)

	resp, err := client.Post(ts.URL+"/api/download/start", "application/json",
		bytes.NewReader([]byte(`{"kind":"videos"}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserAppletSave(t *testing.T) {
	srv, cfg := testServer(t)
	ts := httptest.NewServer(srv.UserMux())
	defer ts.Close()

	body := []byte(`{"callsign":"va2ops","grid_square":"fn35at","name":"Sylvain","password":"hunter2"}`)
	resp, err := http.Post(ts.URL+"/save", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result struct {
		Success  bool   `json:"success"`
		Callsign string `json:"callsign"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "VA2OPS", result.Callsign)

	saved := readUserConf(t, cfg)
	assert.Equal(t, "VA2OPS", saved["callsign"])
	assert.Equal(t, "FN35AT", saved["grid"])
}

func TestUserAppletRejectsEmptyCallsign(t *testing.T) {
	srv, _ := testServer(t)
	ts := httptest.NewServer(srv.UserMux())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/save", "application/json",
		bytes.NewReader([]byte(`{"callsign":""}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestRadioAppletEndpoints(t *testing.T) {
	srv, cfg := testServer(t)
	ts := httptest.NewServer(srv.RadioMux())
	defer ts.Close()

	profile := `{"manufacturer":"Yaesu","model":"FT-891"}`
	require.NoError(t, writeFile(cfg.RadiosDir()+"/ft-891.json", profile))

	resp, err := http.Post(ts.URL+"/select", "application/json",
		bytes.NewReader([]byte(`{"radio":"ft-891"}`)))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/radios")
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload struct {
		Radios []struct {
			ID    string `json:"id"`
			Model string `json:"model"`
		} `json:"radios"`
		Active string `json:"active"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Radios, 1)
	assert.Equal(t, "ft-891", payload.Radios[0].ID)
	assert.Equal(t, "ft-891", payload.Active)
}

func readUserConf(t *testing.T, cfg *config.Config) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(cfg.UserConfPath())
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
