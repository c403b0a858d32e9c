package builder

import (
	"net/http"
	"strings"
)

// Assets serves files from dir under the URL prefix. Requests outside the
// prefix, or for files that do not exist, continue to next.
func Assets(dir, prefix string) func(http.Handler) http.Handler {
	root := http.Dir(dir)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, ok := strings.CutPrefix(r.URL.Path, prefix)
			if !ok || name == "" {
				next.ServeHTTP(w, r)
				return
			}

			f, err := root.Open("/" + name)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			defer f.Close()

			fi, err := f.Stat()
			if err != nil || fi.IsDir() {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Cache-Control", "no-cache")
			http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
		})
	}
}
