package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"WooCostAdjuster/internal/adjuster"
	"WooCostAdjuster/internal/bulk"
	"WooCostAdjuster/internal/cache"
	"WooCostAdjuster/internal/database/model/synclog"
	"WooCostAdjuster/internal/version"
	"WooCostAdjuster/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
)

const (
	defaultLogsLimit = 100
	maxLogsLimit     = 1000
	maxPayloadSize   = 1 << 20
)

var ErrUnauthorized = errors.New("You do not have permission to perform this action.")

type BulkJob interface {
	Start(ctx context.Context) (*bulk.Summary, error)
	Step(ctx context.Context) (*bulk.Progress, error)
}

type Notifier interface {
	Notify(text string)
}

type Handler struct {
	Job      BulkJob
	Adjuster *adjuster.Adjuster
	Settings cache.CacheSettings
	DB       *sqlx.DB
	Token    string
	Notifier Notifier
}

type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type message struct {
	Message string `json:"message"`
}

func (h *Handler) Router() *httprouter.Router {
	router := httprouter.New()

	router.GET("/", h.HandlerVersion)

	router.POST("/cost/bulk/start", h.auth(h.HandlerBulkStart))
	router.POST("/cost/bulk/progress", h.auth(h.HandlerBulkProgress))
	router.GET("/cost/bulk/progress", h.auth(h.HandlerBulkProgress))

	router.POST("/cost/adjust/product/:id", h.auth(h.HandlerAdjustProduct))
	router.POST("/cost/adjust/variation/:id", h.auth(h.HandlerAdjustVariation))
	router.POST("/cost/adjust/bulk/:id", h.auth(h.HandlerAdjustBulkPush))

	router.GET("/cost/logs", h.auth(h.HandlerLogs))
	router.DELETE("/cost/logs", h.auth(h.HandlerLogsClear))

	router.GET("/cost/settings", h.auth(h.HandlerSettings))
	router.POST("/cost/settings", h.auth(h.HandlerSettingsSave))

	return router
}

func (h *Handler) HandlerVersion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Debug("Start HandlerVersion")
	defer logger.Debug("End HandlerVersion")

	v := version.GetVersion()
	_, err := fmt.Fprintf(w, "Version %s", v.String())
	if err != nil {
		logger.Errorf("failed to send response, error: %v", err)
	}
}

// auth rejects requests whose token does not match the configured one. An
// empty configured token rejects everything.
func (h *Handler) auth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.FormValue("nonce")
		}
		if h.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.Token)) != 1 {
			logging.GetLogger().Warnf("Unauthorized request %s %s", r.Method, r.URL.Path)
			writeJSON(w, http.StatusForbidden, false, message{Message: ErrUnauthorized.Error()})
			return
		}
		next(w, r, ps)
	}
}

func (h *Handler) HandlerBulkStart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerBulkStart")
	defer logger.Info("End HandlerBulkStart")

	summary, err := h.Job.Start(r.Context())
	if err != nil {
		if errors.Is(err, bulk.ErrNoItemsFound) {
			writeJSON(w, http.StatusOK, false, message{Message: bulk.ErrNoItemsFound.Error()})
			return
		}
		errorText := fmt.Sprintf("Bulk cost update failed to start: %v", err)
		logger.Error(errorText)
		h.notify(errorText)
		writeJSON(w, http.StatusInternalServerError, false, message{Message: "Bulk cost update failed to start."})
		return
	}

	writeJSON(w, http.StatusOK, true, summary)
}

func (h *Handler) HandlerBulkProgress(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Debug("Start HandlerBulkProgress")
	defer logger.Debug("End HandlerBulkProgress")

	progress, err := h.Job.Step(r.Context())
	if err != nil {
		errorText := fmt.Sprintf("Bulk cost update step failed: %v", err)
		logger.Error(errorText)
		h.notify(errorText)
		writeJSON(w, http.StatusInternalServerError, false, message{Message: "Bulk cost update step failed."})
		return
	}

	writeJSON(w, http.StatusOK, true, progress)
}

type adjustFunc func(ctx context.Context, id int, payload adjuster.Payload) adjuster.Payload

func (h *Handler) HandlerAdjustProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.adjust(w, r, ps, h.Adjuster.AdjustProduct)
}

func (h *Handler) HandlerAdjustVariation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.adjust(w, r, ps, h.Adjuster.AdjustVariation)
}

func (h *Handler) HandlerAdjustBulkPush(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.adjust(w, r, ps, h.Adjuster.AdjustBulkPush)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, ps httprouter.Params, fn adjustFunc) {
	logger := logging.GetLogger()

	id, err := strconv.Atoi(ps.ByName("id"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, false, message{Message: fmt.Sprintf("Invalid product ID: %s", ps.ByName("id"))})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		logger.Errorf("failed io.ReadAll(r.Body): %v", err)
		writeJSON(w, http.StatusBadRequest, false, message{Message: "Could not read the payload."})
		return
	}
	logger.Debugf("Payload #%d: %s", id, string(body))

	payload := adjuster.Payload{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			writeJSON(w, http.StatusBadRequest, false, message{Message: "Payload must be a JSON object."})
			return
		}
	}

	writeJSON(w, http.StatusOK, true, fn(r.Context(), id, payload))
}

func (h *Handler) HandlerLogs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Debug("Start HandlerLogs")
	defer logger.Debug("End HandlerLogs")

	limit := defaultLogsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, false, message{Message: "limit must be a positive number"})
			return
		}
		limit = n
	}
	if limit > maxLogsLimit {
		limit = maxLogsLimit
	}

	logs, err := synclog.List(h.DB, limit, r.URL.Query().Get("status"))
	if err != nil {
		logger.Errorf("failed synclog.List: %v", err)
		writeJSON(w, http.StatusInternalServerError, false, message{Message: "Could not read the sync log."})
		return
	}
	if logs == nil {
		logs = []*synclog.SyncLog{}
	}

	writeJSON(w, http.StatusOK, true, map[string]interface{}{"logs": logs})
}

func (h *Handler) HandlerLogsClear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerLogsClear")
	defer logger.Info("End HandlerLogsClear")

	n, err := synclog.Clear(h.DB)
	if err != nil {
		logger.Errorf("failed synclog.Clear: %v", err)
		writeJSON(w, http.StatusInternalServerError, false, message{Message: "Could not clear the sync log."})
		return
	}

	writeJSON(w, http.StatusOK, true, map[string]interface{}{"deleted": n})
}

func (h *Handler) HandlerSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, true, h.Settings.Get())
}

type settingsSaved struct {
	cache.Settings
	Warning string `json:"warning,omitempty"`
}

func (h *Handler) HandlerSettingsSave(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerSettingsSave")
	defer logger.Info("End HandlerSettingsSave")

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, false, message{Message: "Could not read the form."})
		return
	}

	enabled, _ := strconv.ParseBool(r.PostFormValue("enabled"))
	if r.PostFormValue("enabled") == "yes" {
		enabled = true
	}

	s, warning, err := h.Settings.Save(enabled, r.PostFormValue("multiplier"))
	if err != nil {
		logger.Errorf("failed Settings.Save: %v", err)
		writeJSON(w, http.StatusInternalServerError, false, message{Message: "Could not save the settings."})
		return
	}

	writeJSON(w, http.StatusOK, true, settingsSaved{Settings: s, Warning: warning})
}

func (h *Handler) notify(text string) {
	if h.Notifier != nil {
		h.Notifier.Notify(text)
	}
}

func writeJSON(w http.ResponseWriter, status int, success bool, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response{Success: success, Data: data}); err != nil {
		logging.GetLogger().Errorf("failed to send response, error: %v", err)
	}
}
