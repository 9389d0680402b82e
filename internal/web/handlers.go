package web

import (
	"log/slog"
	"net/http"
	"strings"

	"etsetup/internal/download"
	"etsetup/internal/finalize"
	"etsetup/internal/i18n"
	"etsetup/internal/radios"
	"etsetup/internal/storage"
	"etsetup/internal/userconf"
)

func (srv *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	srv.render(w, "welcome.html", struct{ page }{newPage(s.Language(), 0)})
}

func (srv *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	lang := i18n.Normalize(r.PathValue("code"))
	s.Update(func(s *Session) { s.Lang = lang })

	// The language choice is part of the profile so the other tools see it.
	profile := userconf.Load(srv.cfg.UserConfPath())
	profile.Language = lang
	if err := userconf.Save(srv.cfg.UserConfPath(), profile); err != nil {
		slog.Warn("failed to persist language choice", "error", err)
	}
	http.Redirect(w, r, "/user", http.StatusSeeOther)
}

type userPage struct {
	page
	Profile     *userconf.Profile
	HasPassword bool
	Error       string
	Saved       bool
	// Applet switches the template between wizard step and standalone tool.
	Applet bool
}

func (srv *Server) handleUserForm(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	profile := userconf.Load(srv.cfg.UserConfPath())
	srv.render(w, "user.html", userPage{
		page:        newPage(s.Language(), 1),
		Profile:     profile,
		HasPassword: profile.WinlinkPasswd != "",
	})
}

func (srv *Server) handleUserSave(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	profile := userconf.Load(srv.cfg.UserConfPath())
	profile.Callsign = r.FormValue("callsign")
	profile.Grid = r.FormValue("grid_square")
	profile.Name = r.FormValue("name")
	if pw := strings.TrimSpace(r.FormValue("password")); pw != "" {
		profile.WinlinkPasswd = pw
	}
	profile.Language = s.Language()
	profile.Normalize()

	if err := profile.Validate(); err != nil {
		srv.render(w, "user.html", userPage{
			page:        newPage(s.Language(), 1),
			Profile:     profile,
			HasPassword: profile.WinlinkPasswd != "",
			Error:       i18n.T(s.Language(), "callsign_required"),
		})
		return
	}
	if err := userconf.Save(srv.cfg.UserConfPath(), profile); err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile.WinlinkPasswd != "" {
		if err := userconf.SyncPat(srv.cfg.PatConfPath(), profile); err != nil {
			slog.Warn("failed to sync winlink client config", "error", err)
		}
	}
	http.Redirect(w, r, "/radio", http.StatusSeeOther)
}

type radioPage struct {
	page
	Radios []*radios.Profile
	Active string
	Applet bool
	Saved  bool
}

func (srv *Server) handleRadioList(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	list, err := radios.List(srv.cfg.RadiosDir())
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	active := s.RadioID
	if active == "" {
		active = radios.ActiveID(srv.cfg.RadiosDir())
	}
	srv.render(w, "radio.html", radioPage{
		page:   newPage(s.Language(), 2),
		Radios: list,
		Active: active,
	})
}

func (srv *Server) handleRadioSelect(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	id := r.FormValue("radio")
	if err := radios.SetActive(srv.cfg.RadiosDir(), id); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	s.Update(func(s *Session) { s.RadioID = id })
	if id == "" || id == "none" {
		http.Redirect(w, r, "/internet", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/radio/settings", http.StatusSeeOther)
}

type radioSettingsPage struct {
	page
	Radio     *radios.Profile
	SavedFile string
}

func (srv *Server) handleRadioSettings(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	var radio *radios.Profile
	if id := s.RadioID; id != "" && id != "none" {
		radio, err = radios.ByID(srv.cfg.RadiosDir(), id)
		if err != nil {
			errorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if radio == nil {
		http.Redirect(w, r, "/internet", http.StatusSeeOther)
		return
	}

	savedFile, err := radios.ExportNotes(radio, srv.cfg.DocsDir())
	if err != nil {
		slog.Warn("failed to export radio notes", "error", err)
	}
	srv.render(w, "radio_settings.html", radioSettingsPage{
		page:      newPage(s.Language(), 2),
		Radio:     radio,
		SavedFile: savedFile,
	})
}

type internetPage struct {
	page
	Online bool
}

func (srv *Server) handleInternet(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	srv.render(w, "internet.html", internetPage{
		page:   newPage(s.Language(), 3),
		Online: srv.online(),
	})
}

type drivePage struct {
	page
	Candidates []storage.Candidate
	Error      string
}

func (srv *Server) handleDrive(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	srv.render(w, "drive.html", drivePage{
		page:       newPage(s.Language(), 4),
		Candidates: srv.listCandidates(srv.cfg.MediaRoot()),
	})
}

func (srv *Server) handleDriveSelect(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	dest := storage.Destination{}
	if r.FormValue("drive_type") == "usb" {
		mount := r.FormValue("usb_path")
		// Re-probe on every submit: drives get yanked between page load
		// and click.
		if !srv.checkWritable(mount) {
			srv.render(w, "drive.html", drivePage{
				page:       newPage(s.Language(), 4),
				Candidates: srv.listCandidates(srv.cfg.MediaRoot()),
				Error:      i18n.T(s.Language(), "usb_read_only"),
			})
			return
		}
		dest = storage.Destination{Removable: true, Mount: mount, Validated: true}
	}

	if err := storage.EnsureDirs(srv.cfg, dest); err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.Update(func(s *Session) { s.Drive = dest })
	http.Redirect(w, r, "/download/tiles", http.StatusSeeOther)
}

type selectionPage struct {
	page
}

func (srv *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	srv.render(w, "regions.html", selectionPage{newPage(s.Language(), 6)})
}

func (srv *Server) handleArchives(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	srv.render(w, "archives.html", selectionPage{newPage(s.Language(), 7)})
}

type downloadPage struct {
	page
	Kind  string
	Items []download.Item
	// Next is where the page goes once the batch resolves.
	Next string
}

func (srv *Server) handleDownloadPage(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	kind := r.PathValue("kind")
	items, _, _, _, err := srv.batchPlan(s, kind)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var step int
	var next string
	switch kind {
	case "tiles":
		step, next = 5, "/regions"
	case "regions":
		step, next = 6, "/archives"
	case "archives":
		step, next = 7, "/complete"
	}
	srv.render(w, "download.html", downloadPage{
		page:  newPage(s.Language(), step),
		Kind:  kind,
		Items: items,
		Next:  next,
	})
}

type completePage struct {
	page
	Actions []string
}

func (srv *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var actions []string
	if dest := s.Destination(); dest.Removable {
		actions, err = finalize.Relink(srv.cfg, dest.Mount)
		if err != nil {
			slog.Warn("failed to relink removable content", "error", err)
		}
	}
	if err := finalize.WriteMarker(srv.cfg.MarkerPath()); err != nil {
		slog.Error("failed to write completion marker", "error", err)
	}
	srv.render(w, "complete.html", completePage{
		page:    newPage(s.Language(), 8),
		Actions: actions,
	})
}

// Standalone applet pages.

func (srv *Server) handleUserApplet(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	profile := userconf.Load(srv.cfg.UserConfPath())
	srv.render(w, "user.html", userPage{
		page:        newPage(profile.Language, 0),
		Profile:     profile,
		HasPassword: profile.WinlinkPasswd != "",
		Applet:      true,
	})
}

func (srv *Server) handleRadioApplet(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	profile := userconf.Load(srv.cfg.UserConfPath())
	list, err := radios.List(srv.cfg.RadiosDir())
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	srv.render(w, "radio.html", radioPage{
		page:   newPage(profile.Language, 0),
		Radios: list,
		Active: radios.ActiveID(srv.cfg.RadiosDir()),
		Applet: true,
		Saved:  r.URL.Query().Get("saved") == "1",
	})
}

// existingDirs returns the directories to check for already-downloaded files.
func (srv *Server) existingDirs(s *Session, cat storage.Category) []string {
	dirs := []string{storage.Destination{}.Dir(srv.cfg, cat)}
	if dest := s.Destination(); dest.Removable {
		dirs = append(dirs, dest.Dir(srv.cfg, cat))
	}
	return dirs
}
