package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/dossier/internal/content"
)

// ArtifactSource supplies the encoded search index.
type ArtifactSource interface {
	Artifact(ctx context.Context) (content.Artifact, error)
}

// IndexArtifact serves the search index JSON with an ETag. A matching
// If-None-Match yields 304.
//
//	@Summary		Static search index consumed by the client search
//	@Tags			search
//	@Produce		json
//	@Success		200	{array}		models.SearchIndexEntry
//	@Success		304	"Not modified"
//	@Router			/search-index.json [get]
func IndexArtifact(src ArtifactSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		art, err := src.Artifact(r.Context())
		if err != nil {
			internalError(w, "search index", err)
			return
		}
		w.Header().Set("ETag", art.ETag)
		w.Header().Set("Cache-Control", "public, max-age=300")
		if etagMatches(r.Header.Get("If-None-Match"), art.ETag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(art.Data)
		}
	}
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		c := strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if c == "*" || c == etag {
			return true
		}
	}
	return false
}
