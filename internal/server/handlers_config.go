package server

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/job-funnel/internal/configstore"
	"github.com/jonathan/job-funnel/internal/server/middleware"
	"github.com/jonathan/job-funnel/internal/types"
)

// knownConfigKeys are the documents the config API manages. Everything
// else is rejected so typos cannot create orphan documents.
var knownConfigKeys = map[string]bool{
	configstore.KeyKeywordSettings: true,
	configstore.KeyGeoFilters:      true,
	configstore.KeyAISettings:      true,
	configstore.KeyNotifications:   true,
	configstore.RulesetClient:      true,
	configstore.RulesetJob:         true,
	configstore.RulesetRisk:        true,
}

// handleLogin authenticates the operator and issues a JWT.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.OperatorUsername)) == 1
	passOK := s.passwordCfg.VerifyPassword(req.Password, s.cfg.OperatorPasswordHash)
	if !userOK || !passOK {
		err := &ErrInvalidCredentials{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	token, err := s.jwtService.GenerateToken(req.Username)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	s.jsonResponse(w, http.StatusOK, types.LoginResponse{Token: token})
}

// handleGetConfigDoc returns one stored configuration document.
func (s *Server) handleGetConfigDoc(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !knownConfigKeys[key] {
		s.errorResponse(w, http.StatusNotFound, "unknown config key: "+key)
		return
	}

	doc, found, err := s.cfgAdmin.RawDoc(r.Context(), key)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		s.errorResponse(w, http.StatusNotFound, "config not set: "+key)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// handlePutConfigDoc validates and stores a configuration document. The
// write is audited with the operator who made it.
func (s *Server) handlePutConfigDoc(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !knownConfigKeys[key] {
		s.errorResponse(w, http.StatusNotFound, "unknown config key: "+key)
		return
	}

	doc, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if err := s.cfgAdmin.UpsertDoc(r.Context(), key, doc); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	operator, _ := middleware.OperatorFromContext(r.Context())
	if err := s.store.Audit(r.Context(), "config_update", "config_doc", key, operator, nil); err != nil {
		log.Printf("failed to audit config update %s: %v", key, err)
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"key": key, "status": "updated"})
}

// handleListPromptTemplates returns the stored prompt templates.
func (s *Server) handleListPromptTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.cfgAdmin.ListPromptTemplates(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"templates": templates})
}

// handleSavePromptTemplate creates or updates a prompt template.
func (s *Server) handleSavePromptTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl configstore.PromptTemplate
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if tpl.Name == "" || tpl.Template == "" {
		s.errorResponse(w, http.StatusBadRequest, "name and template are required")
		return
	}
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}

	if err := s.cfgAdmin.SavePromptTemplate(r.Context(), &tpl); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	operator, _ := middleware.OperatorFromContext(r.Context())
	if err := s.store.Audit(r.Context(), "prompt_template_save", "prompt_template", tpl.ID, operator, nil); err != nil {
		log.Printf("failed to audit template save %s: %v", tpl.ID, err)
	}

	s.jsonResponse(w, http.StatusOK, tpl)
}

// handleListAudit returns recent audit entries.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	entries, err := s.store.ListAudit(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}
