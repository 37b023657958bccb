package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kinship/pkg/buildinfo"
	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/lineage"
)

// HeaderCache reports whether a response was served from cache.
const HeaderCache = "X-Cache"

type errorBody struct {
	Code    kerrors.Code `json:"code"`
	Message string       `json:"message"`
}

type healthBody struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type searchBody struct {
	Workflows []lineage.Node `json:"workflows"`
}

type relationsBody struct {
	Relations []lineage.Edge `json:"relations"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term, err := parseSearchQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	nodes, err := s.runner.Search(r.Context(), chi.URLParam(r, "project"), term)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if nodes == nil {
		nodes = []lineage.Node{}
	}
	writeJSON(w, http.StatusOK, searchBody{Workflows: nodes})
}

func (s *Server) handleRelations(w http.ResponseWriter, r *http.Request) {
	edges, err := s.runner.Relations(r.Context(), chi.URLParam(r, "project"), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if edges == nil {
		edges = []lineage.Edge{}
	}
	writeJSON(w, http.StatusOK, relationsBody{Relations: edges})
}

func (s *Server) handleLineage(w http.ResponseWriter, r *http.Request) {
	opts, err := parseLineageQuery(chi.URLParam(r, "project"), r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))

	res, err := s.runner.Lineage(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, res.CacheInfo.Hit())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.JSON)
}

func (s *Server) handleExport(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := parseLineageQuery(chi.URLParam(r, "project"), r.URL.Query())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{format}
		opts.Logger = s.logger.With("request_id", RequestID(r.Context()))

		res, err := s.runner.Lineage(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		setCacheHeader(w, res.CacheInfo.ArtifactHit)
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Artifacts[format])
	}
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
}

// writeError maps err to a status and JSON body. Internal failures are
// logged and reported without their cause.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := kerrors.GetCode(err)
	if r.Context().Err() != nil && code == "" {
		// Client went away; nobody reads the response.
		return
	}
	if code == "" {
		code = kerrors.ErrCodeInternal
	}
	status := kerrors.HTTPStatus(code)
	msg := kerrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "code", code, "error", err,
			"request_id", RequestID(r.Context()))
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
