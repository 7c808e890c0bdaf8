package viewer

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

func withCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// allowGet writes CORS headers and reports whether the handler should go on.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	withCORS(w)
	if r.Method == http.MethodOptions {
		return false
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// parseIntQuery returns def for a missing, malformed or negative value and
// caps the result at max.
func parseIntQuery(r *http.Request, key string, def, max int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// relativeTo trims the longest matching root from filename.
func relativeTo(filename string, roots []string) string {
	best := filename
	for _, root := range roots {
		rel, err := filepath.Rel(root, filename)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if len(rel) < len(best) {
			best = rel
		}
	}
	return filepath.ToSlash(best)
}
