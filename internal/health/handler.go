package health

import (
	"encoding/json"
	"net/http"
)

type response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Handler serves the aggregated health status as JSON, answering 503
// when any check fails.
func (c *Checker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks := c.Check(r.Context())

		status := "ok"
		code := http.StatusOK
		for _, result := range checks {
			if result != "OK" {
				status = "degraded"
				code = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(response{Status: status, Checks: checks})
	})
}
