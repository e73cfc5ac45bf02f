package backend

import (
	"errors"
	"net/http"

	"github.com/atinyakov/xenon/internal/models"
)

// Command names as they appear in the HTTP path /api/<command>.
const (
	CmdAdd                  = "add"
	CmdDelete               = "delete"
	CmdEdit                 = "edit"
	CmdGetAll               = "get_all"
	CmdGetOnly              = "get_only"
	CmdGetRow               = "get_row"
	CmdChangeMasterPassword = "change_master_password"
	CmdPrint                = "print"
	CmdLogin                = "login"
	CmdRegister             = "register"
)

// Request carries the parameters of any command. Unused fields are omitted.
type Request struct {
	ID          string             `json:"id,omitempty"`
	Website     string             `json:"website,omitempty"`
	Username    string             `json:"username,omitempty"`
	Password    string             `json:"password,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	MasterPW    string             `json:"masterpw,omitempty"`
	Filter      string             `json:"filter,omitempty"`
	FilterType  models.FilterField `json:"ft,omitempty"`
	OldPassword string             `json:"old_password,omitempty"`
	Code        string             `json:"code,omitempty"`
	Msg         string             `json:"msg,omitempty"`
}

// Entry returns the entry fields of r.
func (r Request) Entry() models.Entry {
	return models.Entry{
		ID:       r.ID,
		Website:  r.Website,
		Username: r.Username,
		Password: r.Password,
		Notes:    r.Notes,
	}
}

// AddResponse is the result of CmdAdd.
type AddResponse struct {
	ID string `json:"id"`
}

// LoginResponse is the result of CmdLogin.
type LoginResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every failed command.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error codes carried in ErrorResponse.Error.
const (
	CodeUnauthorized       = "unauthorized"
	CodeNotFound           = "not_found"
	CodeEmptyPassword      = "empty_password"
	CodeUnknownFilterField = "unknown_filter_field"
	CodeBadRequest         = "bad_request"
	CodeInternal           = "internal"
)

var codes = []struct {
	err    error
	code   string
	status int
}{
	{ErrUnauthorized, CodeUnauthorized, http.StatusUnauthorized},
	{ErrNotFound, CodeNotFound, http.StatusNotFound},
	{ErrEmptyPassword, CodeEmptyPassword, http.StatusBadRequest},
	{models.ErrUnknownFilterField, CodeUnknownFilterField, http.StatusBadRequest},
}

// ErrBadRequest is returned for a malformed command.
var ErrBadRequest = errors.New("bad request")

// Code maps err to its wire code and HTTP status.
func Code(err error) (string, int) {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code, c.status
		}
	}
	if errors.Is(err, ErrBadRequest) {
		return CodeBadRequest, http.StatusBadRequest
	}
	return CodeInternal, http.StatusInternalServerError
}

// FromCode returns the sentinel error for a wire code, or nil if the code has none.
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	if code == CodeBadRequest {
		return ErrBadRequest
	}
	return nil
}
