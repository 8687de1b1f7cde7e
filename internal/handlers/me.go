package handlers

import (
	"net/http"

	"github.com/diewo77/go-adopt/httpx"
	"github.com/diewo77/go-adopt/internal/policy"
)

type permissionsResponse struct {
	Role        string          `json:"role"`
	Permissions map[string]bool `json:"permissions"`
}

// MyPermissions reports, for every declared pair, whether the caller is
// allowed without looking at a particular record. Ownership rules report
// false here and are decided per record.
func MyPermissions(w http.ResponseWriter, r *http.Request) {
	c, ok := policy.CheckerFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, permissionsResponse{Permissions: map[string]bool{}})
		return
	}
	snap := c.Snapshot()
	out := permissionsResponse{Role: c.Role(), Permissions: make(map[string]bool, len(snap))}
	for p, allowed := range snap {
		out.Permissions[p.String()] = allowed
	}
	httpx.JSON(w, http.StatusOK, out)
}
