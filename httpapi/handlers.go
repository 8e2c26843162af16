package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/skosovsky/toolreg"
)

type errorEnvelope struct {
	Error *toolreg.Failure `json:"error"`
}

type endpointInfo struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Method   string `json:"method"`
}

type allTools struct {
	Tools     []toolreg.ToolInfo `json:"tools"`
	Count     int                `json:"count"`
	Endpoints []endpointInfo     `json:"endpoints"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "tools": s.catalog.Len()})
}

// handleList serves GET /tools/list?tag=a&tag=b&where=<cel>.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var sel *toolreg.Selector
	if where := q.Get("where"); where != "" {
		var err error
		if sel, err = toolreg.CompileSelector(where); err != nil {
			s.writeError(w, &toolreg.ValidationError{Violations: []toolreg.Violation{{Parameter: "where", Reason: err.Error()}}})
			return
		}
	}
	tools := []toolreg.ToolInfo{}
	for d := range s.catalog.Select(sel, q["tag"]...) {
		tools = append(tools, d.Info())
	}
	s.writeJSON(w, http.StatusOK, tools)
}

func (s *Server) handleAll(w http.ResponseWriter, _ *http.Request) {
	out := allTools{Tools: []toolreg.ToolInfo{}, Endpoints: []endpointInfo{}}
	for d := range s.catalog.List() {
		out.Tools = append(out.Tools, d.Info())
		out.Endpoints = append(out.Endpoints, endpointInfo{Name: d.Name(), Endpoint: d.Endpoint(), Method: d.Method()})
	}
	out.Count = len(out.Tools)
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	d, err := s.catalog.Lookup(r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d.Info())
}

// handleInvoke serves POST /tools/{name}. The body is the arguments object; an empty body
// means no arguments. X-Request-ID, when sent, becomes the invocation ID and is echoed back.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, &toolreg.ValidationError{Tool: name, Violations: []toolreg.Violation{{Reason: "read body: " + err.Error()}}})
		return
	}
	res := s.dispatcher.InvokeRaw(r.Context(), toolreg.InvocationRequest{
		ID:   r.Header.Get("X-Request-ID"),
		Tool: name,
	}, body)
	w.Header().Set("X-Request-ID", res.ID)
	if res.Err != nil {
		s.writeError(w, res.Err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"result": res.Value})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorEnvelope{Error: toolreg.NewFailure(&toolreg.HandlerError{Err: err})})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	f := toolreg.NewFailure(err)
	s.writeJSON(w, statusFor(f), errorEnvelope{Error: f})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(f *toolreg.Failure) int {
	switch f.Kind {
	case toolreg.KindValidation:
		return http.StatusBadRequest
	case toolreg.KindNotFound:
		return http.StatusNotFound
	}
	if errors.Is(f, toolreg.ErrShutdown) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
