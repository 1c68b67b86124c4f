package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/foldsnap/foldsnapbackend/taxonomy"
)

// error codes used across the API
const (
	CodeMissingName     = "missing_name"
	CodeMissingMediaIDs = "missing_media_ids"
	CodeMissingFolderID = "missing_folder_id"
	CodeInvalidArgument = "invalid_argument"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeServerError     = "server_error"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, httpStatus int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFolderError maps errors from the folder core onto the API's error
// vocabulary. Unknown errors are logged and reported as server_error without
// leaking internals.
func writeFolderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, taxonomy.ErrEmptyName):
		WriteAPIError(w, http.StatusBadRequest, CodeMissingName, "folder name is required")
	case errors.Is(err, taxonomy.ErrMediaIDsRequired):
		WriteAPIError(w, http.StatusBadRequest, CodeMissingMediaIDs, "at least one media id is required")
	case errors.Is(err, taxonomy.ErrFolderNotFound),
		errors.Is(err, taxonomy.ErrParentNotFound),
		errors.Is(err, taxonomy.ErrInvalidParent),
		errors.Is(err, taxonomy.ErrInvalidColor),
		errors.Is(err, taxonomy.ErrInvalidMediaID):
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidArgument, err.Error())
	default:
		log.Error().Err(err).Msg("unhandled folder operation error")
		WriteAPIError(w, http.StatusInternalServerError, CodeServerError, "an internal error occurred")
	}
}
