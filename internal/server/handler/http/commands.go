// Package http exposes the vault command boundary over HTTP. Every command
// is a POST /api/<command> with a JSON parameter object.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/atinyakov/xenon/internal/backend"
	"go.uber.org/zap"
)

// CommandHandler serves the backend commands.
type CommandHandler struct {
	// Backend executes the commands.
	Backend backend.Backend
	// Logger records failed commands. A nil Logger discards them.
	Logger *zap.Logger
}

// decode reads the JSON parameters. Unknown fields are rejected so that a
// misspelt parameter is not silently treated as empty.
func decode(r *http.Request) (backend.Request, error) {
	var req backend.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %v", backend.ErrBadRequest, err)
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail writes the error body for err. Internal errors are logged and their
// text is not sent to the client.
func (h *CommandHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, status := backend.Code(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		if h.Logger != nil {
			h.Logger.Error("command failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		msg = "internal error"
	}
	writeJSON(w, status, backend.ErrorResponse{Error: code, Message: msg})
}

// command adapts a typed command function to an http.HandlerFunc.
func (h *CommandHandler) command(fn func(r *http.Request, req backend.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decode(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		out, err := fn(r, req)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if out == nil {
			out = struct{}{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// Add handles POST /api/add and responds with the new entry id.
func (h *CommandHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.command(func(r *http.Request, req backend.Request) (any, error) {
		e := req.Entry()
		e.ID = ""
		id, err := h.Backend.Add(r.Context(), e, req.MasterPW)
		if err != nil {
			return nil, err
		}
		return backend.AddResponse{ID: id}, nil
	})(w, r)
}

// Delete handles POST /api/delete.
func (h *CommandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.command(func(r *http.Request, req backend.Request) (any, error) {
		if req.ID == "" {
			return nil, fmt.Errorf("%w: missing id", backend.ErrBadRequest)
		}
		return nil, h.Backend.Delete(r.Context(), req.ID, req.MasterPW)
	})(w, r)
}

// Edit handles POST /api/edit.
func (h *CommandHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.command(func(r *http.Request, req backend.Request) (any, error) {
		if req.ID == "" {
			return nil, fmt.Errorf("%w: missing id", backend.ErrBadRequest)
		}
		return nil, h.Backend.Edit(r.Context(), req.ID, req.Entry(), req.MasterPW)
	})(w, r)
}

// GetAll handles POST /api/get_all.
func (h *CommandHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	h.command(func(r *http.Request, req backend.Request) (any, error) {
		return h.Backend.GetAll(r.Context(), req.MasterPW)
	})(w, r)
}

// GetOnly handles POST /api/get_only.
func (h *CommandHandler) GetOnly(w http.ResponseWriter, r *http.Request) {
	h.command(func(r *http.Request, req backend.Request) (any, error) {
		return h.Backend.GetOnly(r.Context(), req.Filter, req.FilterType, req.MasterPW)
	})(w, r)
}

// GetRow handles POST /api/get_row.
func (h *CommandHandler) GetRow(w http.ResponseWriter, r *http.Request) {
	h.command(func(r *http.Request, req backend.Request) (any, error) {
		return h.Backend.GetRow(r.Context(), req.ID, req.MasterPW)
	})(w, r)
}

// ChangeMasterPassword handles POST /api/change_master_password. The old
// password travels in old_password and the new one in password.
func (h *CommandHandler) ChangeMasterPassword(w http.ResponseWriter, r *http.Request) {
	h.command(func(r *http.Request, req backend.Request) (any, error) {
		return nil, h.Backend.ChangeMasterPassword(r.Context(), req.OldPassword, req.Password)
	})(w, r)
}

// Print handles POST /api/print.
func (h *CommandHandler) Print(w http.ResponseWriter, r *http.Request) {
	h.command(func(r *http.Request, req backend.Request) (any, error) {
		return nil, h.Backend.Print(r.Context(), req.Msg)
	})(w, r)
}

// Login handles POST /api/login. A wrong password or code is a successful
// call with success=false.
func (h *CommandHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.command(func(r *http.Request, req backend.Request) (any, error) {
		ok, err := h.Backend.Login(r.Context(), req.Password, req.Code)
		if err != nil {
			return nil, err
		}
		return backend.LoginResponse{Success: ok}, nil
	})(w, r)
}

// Register handles POST /api/register.
func (h *CommandHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.command(func(r *http.Request, req backend.Request) (any, error) {
		reg, err := h.Backend.Register(r.Context(), req.Password)
		if err != nil {
			return nil, err
		}
		return reg, nil
	})(w, r)
}

// UnknownCommand answers paths that name no command.
func UnknownCommand(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, backend.ErrorResponse{
		Error:   backend.CodeBadRequest,
		Message: "unknown command " + r.URL.Path,
	})
}
