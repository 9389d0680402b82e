package web

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etsetup/internal/config"
	"etsetup/internal/storage"
	"etsetup/internal/userconf"
)

// testServer builds a Server rooted in temp directories with all external
// probes stubbed.
func testServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()

	cfg := &config.Config{}
	cfg.SetHomeDir(t.TempDir())
	cfg.SetRadiosDir(t.TempDir())
	cfg.SetMediaRoot(t.TempDir())

	srv, err := New(cfg, config.DefaultSettings(), Options{})
	require.NoError(t, err)

	srv.online = func() bool { return true }
	srv.listCandidates = func(string) []storage.Candidate { return nil }
	srv.checkWritable = func(string) bool { return true }
	return srv, cfg
}

// wizardClient wraps an httptest server with a cookie jar so the session
// survives across requests.
func wizardClient(t *testing.T, srv *Server) (*httptest.Server, *http.Client) {
	t.Helper()
	ts := httptest.NewServer(srv.WizardMux())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return ts, client
}

func TestWelcomePage(t *testing.T) {
	srv, _ := testServer(t)
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Select Language")
	assert.NotEmpty(t, resp.Cookies(), "welcome should set the session cookie")
}

func TestSetLanguagePersistsProfile(t *testing.T) {
	srv, cfg := testServer(t)
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/lang/en")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/user", resp.Header.Get("Location"))

	profile := userconf.Load(cfg.UserConfPath())
	assert.Equal(t, "en", profile.Language)
}

func TestUserSave(t *testing.T) {
	srv, cfg := testServer(t)
	ts, client := wizardClient(t, srv)

	// Pick a language first so the session exists.
	resp, err := client.Get(ts.URL + "/lang/en")
	require.NoError(t, err)
	resp.Body.Close()

	form := url.Values{
		"callsign":    {"va2ops"},
		"grid_square": {"fn35at"},
		"name":        {"Sylvain"},
		"password":    {"hunter2"},
	}
	resp, err = client.PostForm(ts.URL+"/user", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/radio", resp.Header.Get("Location"))

	profile := userconf.Load(cfg.UserConfPath())
	assert.Equal(t, "VA2OPS", profile.Callsign)
	assert.Equal(t, "FN35AT", profile.Grid)
	assert.Equal(t, "hunter2", profile.WinlinkPasswd)

	// The Winlink client config picked up the credentials.
	data, err := os.ReadFile(cfg.PatConfPath())
	require.NoError(t, err)
	var pat map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &pat))
	assert.Equal(t, "VA2OPS", pat["mycall"])
}

func TestUserSaveRequiresCallsign(t *testing.T) {
	srv, _ := testServer(t)
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/lang/en")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.PostForm(ts.URL+"/user", url.Values{"callsign": {"  "}})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Callsign is required")
}

func TestRadioSelection(t *testing.T) {
	srv, cfg := testServer(t)
	ts, client := wizardClient(t, srv)

	profile := `{"manufacturer":"Icom","model":"IC-7300","notes":["Set DATA mode"]}`
	require.NoError(t, os.WriteFile(filepath.Join(cfg.RadiosDir(), "ic-7300.json"), []byte(profile), 0644))

	resp, err := client.Get(ts.URL + "/lang/en")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/radio")
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "Icom IC-7300")
	resp.Body.Close()

	resp, err = client.PostForm(ts.URL+"/radio", url.Values{"radio": {"ic-7300"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/radio/settings", resp.Header.Get("Location"))

	// Settings page exports the notes to Documents.
	resp, err = client.Get(ts.URL + "/radio/settings")
	require.NoError(t, err)
	body := readBody(t, resp)
	resp.Body.Close()
	assert.Contains(t, body, "Set DATA mode")
	_, err = os.Stat(filepath.Join(cfg.DocsDir(), "radio-settings-Icom-IC-7300.md"))
	assert.NoError(t, err, "notes markdown should be exported")
}

func TestRadioSelectionNone(t *testing.T) {
	srv, _ := testServer(t)
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/lang/fr")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.PostForm(ts.URL+"/radio", url.Values{"radio": {"none"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/internet", resp.Header.Get("Location"))
}

func TestDriveSelectRejectsUnwritable(t *testing.T) {
	srv, _ := testServer(t)
	srv.checkWritable = func(string) bool { return false }
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/lang/en")
	require.NoError(t, err)
	resp.Body.Close()

	form := url.Values{"drive_type": {"usb"}, "usb_path": {"/media/op/LOCKED"}}
	resp, err = client.PostForm(ts.URL+"/drive", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "read-only or write-protected")
}

func TestDriveSelectLocal(t *testing.T) {
	srv, cfg := testServer(t)
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/lang/en")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.PostForm(ts.URL+"/drive", url.Values{"drive_type": {"local"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/download/tiles", resp.Header.Get("Location"))

	// The local category directories were created.
	for _, dir := range []string{cfg.TilesetDir(), cfg.ExtractDir(), cfg.ZimDir()} {
		_, err := os.Stat(dir)
		assert.NoError(t, err, dir)
	}
}

func TestCompleteWritesMarker(t *testing.T) {
	srv, cfg := testServer(t)
	ts, client := wizardClient(t, srv)

	resp, err := client.Get(ts.URL + "/complete")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = os.Stat(cfg.MarkerPath())
	assert.NoError(t, err, "completion marker should exist")
}

func TestQuitEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	ts, client := wizardClient(t, srv)

	resp, err := client.Post(ts.URL+"/api/quit", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	select {
	case <-srv.Done():
	case <-time.After(time.Second):
		t.Fatal("Quit was not signalled")
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return sb.String()
}
