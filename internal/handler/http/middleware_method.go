package http

import (
	"net/http"

	"github.com/MKhiriev/go-journal-vault/internal/utils"
)

// methodNotAllowed answers a known path requested with an unsupported method
// in the same JSON error shape as every other failure.
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	utils.WriteError(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
