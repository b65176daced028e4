package tax

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noah-isme/backend-tax/internal/common"
)

// Handler exposes the tax computation endpoint.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

type computeBody struct {
	SubCategoryID json.RawMessage `json:"subCategoryId"`
	FilerStatus   *string         `json:"filerStatus"`
	GrossAmount   json.RawMessage `json:"grossAmount"`
}

// Calculate handles POST /api/calculate-tax.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "tax service not configured", nil)
		return
	}
	var body computeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.WriteError(w, common.BadRequest("", "invalid JSON body", err), "")
		return
	}

	req := Request{}
	var err error
	if req.SubcategoryID, err = scalar(body.SubCategoryID); err != nil {
		common.WriteError(w, invalid("subCategoryId", "subCategoryId must be a string or number"), "")
		return
	}
	if req.GrossAmount, err = scalar(body.GrossAmount); err != nil {
		common.WriteError(w, invalid("grossAmount", "grossAmount must be a number"), "")
		return
	}
	if body.FilerStatus != nil {
		req.FilerStatus = *body.FilerStatus
	}

	result, err := h.service.ComputeTax(r.Context(), req)
	if err != nil {
		common.WriteError(w, err, "failed to calculate tax")
		return
	}
	common.JSON(w, http.StatusOK, result)
}

var errNotScalar = errors.New("value is not a string or number")

// scalar returns a JSON string's contents or a JSON number's literal text.
// Absent and null values yield "".
func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	n, ok := v.(json.Number)
	if !ok {
		return "", errNotScalar
	}
	return n.String(), nil
}
