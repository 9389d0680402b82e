package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"etsetup/internal/catalog"
	"etsetup/internal/download"
	"etsetup/internal/i18n"
	"etsetup/internal/radios"
	"etsetup/internal/storage"
	"etsetup/internal/userconf"
)

// batchPlan resolves what a download step of the given kind would transfer
// and where.
func (srv *Server) batchPlan(s *Session, kind string) (items []download.Item, destDir string, timeout time.Duration, minBytes int64, err error) {
	dest := s.Destination()
	switch kind {
	case "tiles":
		for _, f := range srv.settings.Tiles.Files {
			items = append(items, download.Item{Name: f, URL: srv.settings.TileURL(f)})
		}
		return items, dest.Dir(srv.cfg, storage.Tiles), srv.settings.Downloads.TileTimeout.Std(), 0, nil
	case "regions":
		s.Update(func(s *Session) { items = append(items, s.Regions...) })
		return items, dest.Dir(srv.cfg, storage.Extracts), srv.settings.Downloads.LargeTimeout.Std(), srv.settings.Downloads.MinExtractBytes, nil
	case "archives":
		s.Update(func(s *Session) { items = append(items, s.Archives...) })
		return items, dest.Dir(srv.cfg, storage.Archives), srv.settings.Downloads.LargeTimeout.Std(), 0, nil
	}
	return nil, "", 0, 0, fmt.Errorf("unknown download kind %q", kind)
}

func (srv *Server) apiDrives(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"drives": srv.listCandidates(srv.cfg.MediaRoot()),
	})
}

func (srv *Server) apiDriveCheck(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	path := r.URL.Query().Get("path")
	if srv.checkWritable(path) {
		jsonResponse(w, http.StatusOK, map[string]interface{}{"writable": true})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"writable": false,
		"error":    i18n.T(s.Language(), "usb_read_only"),
	})
}

func (srv *Server) apiRegions(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	country := r.PathValue("country")
	src, ok := srv.settings.Regions[country]
	if !ok {
		errorResponse(w, http.StatusNotFound, fmt.Sprintf("unknown country %q", country))
		return
	}
	items, err := srv.fetcher.RegionExtracts(src)
	if err != nil {
		slog.Warn("region listing fetch failed", "country", country, "error", err)
		jsonResponse(w, http.StatusBadGateway, map[string]interface{}{
			"error":   err.Error(),
			"regions": []catalog.Item{},
		})
		return
	}
	catalog.MarkExisting(items, srv.existingDirs(s, storage.Extracts)...)
	jsonResponse(w, http.StatusOK, map[string]interface{}{"regions": items})
}

func (srv *Server) apiArchives(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	items, err := srv.fetcher.ArchiveFiles(srv.settings.Archives.ListingURL)
	if err != nil {
		slog.Warn("archive listing fetch failed", "error", err)
		jsonResponse(w, http.StatusBadGateway, map[string]interface{}{
			"error":    err.Error(),
			"archives": []catalog.Item{},
		})
		return
	}
	catalog.MarkExisting(items, srv.existingDirs(s, storage.Archives)...)
	jsonResponse(w, http.StatusOK, map[string]interface{}{"archives": items})
}

type selectRequest struct {
	Items []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"items"`
}

func (srv *Server) apiSelect(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	var req selectRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	items := make([]download.Item, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Name == "" || it.URL == "" {
			continue
		}
		items = append(items, download.Item{Name: it.Name, URL: it.URL})
	}

	kind := r.PathValue("kind")
	switch kind {
	case "regions":
		s.Update(func(s *Session) { s.Regions = items })
	case "archives":
		s.Update(func(s *Session) { s.Archives = items })
	default:
		errorResponse(w, http.StatusBadRequest, fmt.Sprintf("unknown selection kind %q", kind))
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"count": len(items)})
}

type startRequest struct {
	Kind string `json:"kind"`
}

func (srv *Server) apiDownloadStart(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	var req startRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	items, destDir, timeout, minBytes, err := srv.batchPlan(s, req.Kind)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	batch, err := s.BeginBatch(req.Kind, items)
	if err != nil {
		errorResponse(w, http.StatusConflict, err.Error())
		return
	}

	opts := download.Options{
		DestDir:  destDir,
		Timeout:  timeout,
		MinBytes: minBytes,
		Echo:     srv.echo,
		LogPath:  srv.transferLog,
	}
	go srv.runBatch(req.Kind, batch, opts)

	jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"started": true,
		"kind":    req.Kind,
		"total":   len(items),
	})
}

func (srv *Server) apiDownloadStatus(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	batch, kind := s.CurrentBatch()
	if batch == nil {
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"kind":   "",
			"status": download.Status{},
		})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"kind":   kind,
		"status": batch.Snapshot(),
	})
}

func (srv *Server) apiQuit(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{"quitting": true})
	srv.Quit()
}

// Applet endpoints.

type userSaveRequest struct {
	Callsign   string `json:"callsign"`
	GridSquare string `json:"grid_square"`
	Name       string `json:"name"`
	Password   string `json:"password"`
}

func (srv *Server) apiUserSave(w http.ResponseWriter, r *http.Request) {
	var req userSaveRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	profile := userconf.Load(srv.cfg.UserConfPath())
	profile.Callsign = req.Callsign
	profile.Grid = req.GridSquare
	profile.Name = req.Name
	if req.Password != "" {
		profile.WinlinkPasswd = req.Password
	}
	profile.Normalize()

	if err := profile.Validate(); err != nil {
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"error":   i18n.T(profile.Language, "callsign_required"),
		})
		return
	}
	if err := userconf.Save(srv.cfg.UserConfPath(), profile); err != nil {
		jsonResponse(w, http.StatusOK, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}
	if req.Password != "" {
		if err := userconf.SyncPat(srv.cfg.PatConfPath(), profile); err != nil {
			slog.Warn("failed to sync winlink client config", "error", err)
		}
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"callsign": profile.Callsign,
	})
}

type languageRequest struct {
	Language string `json:"language"`
}

func (srv *Server) apiSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	lang := i18n.Normalize(req.Language)
	profile := userconf.Load(srv.cfg.UserConfPath())
	profile.Language = lang
	if err := userconf.Save(srv.cfg.UserConfPath(), profile); err != nil {
		jsonResponse(w, http.StatusOK, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "language": lang})
}

type radioSelectRequest struct {
	Radio string `json:"radio"`
}

func (srv *Server) apiRadioSelect(w http.ResponseWriter, r *http.Request) {
	var req radioSelectRequest
	if err := parseJSONBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := radios.SetActive(srv.cfg.RadiosDir(), req.Radio); err != nil {
		jsonResponse(w, http.StatusOK, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "active": req.Radio})
}

func (srv *Server) apiRadios(w http.ResponseWriter, r *http.Request) {
	list, err := radios.List(srv.cfg.RadiosDir())
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	type radioInfo struct {
		ID           string         `json:"id"`
		Manufacturer string         `json:"manufacturer"`
		Model        string         `json:"model"`
		Notes        radios.Notes   `json:"notes,omitempty"`
		RigCtrl      radios.RigCtrl `json:"rigctrl"`
	}
	infos := make([]radioInfo, 0, len(list))
	for _, p := range list {
		infos = append(infos, radioInfo{
			ID:           p.ID,
			Manufacturer: p.Maker(),
			Model:        p.Model,
			Notes:        p.Notes,
			RigCtrl:      p.RigCtrl,
		})
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"radios": infos,
		"active": radios.ActiveID(srv.cfg.RadiosDir()),
	})
}
