package taxonomy

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/noah-isme/backend-tax/internal/common"
)

// Sentinels classify taxonomy failures. Service errors wrap one of them inside
// a *common.AppError, so both errors.Is and transport mapping work.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

func invalidArgument(field, message string) error {
	return common.BadRequest(field, message, ErrInvalidArgument)
}

func notFound(message string) error {
	return common.NewAppError(common.CodeNotFound, message, http.StatusNotFound, ErrNotFound)
}

func storeUnavailable(cause error) error {
	return common.NewAppError(common.CodeStoreUnavailable, "tax reference data is temporarily unavailable",
		http.StatusServiceUnavailable, fmt.Errorf("%w: %w", ErrStoreUnavailable, cause))
}
