package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/xid"
)

// maxRequestIDLen bounds an id accepted from the client.
const maxRequestIDLen = 64

// RequestID tags each request with an id, echoes it in the X-Request-Id
// response header and stores it where chimiddleware.GetReqID finds it.
//
// WHY xid AND NOT chi's COUNTER?
// chi builds ids from the hostname plus a process-local counter, so two
// replicas restarted together hand out the same ids. An xid is 20
// characters, globally unique and sorts by creation time, which makes log
// lines from several instances easy to merge.
//
// An id sent by a proxy in X-Request-Id is kept so one request can be
// followed across services.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimiddleware.RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = xid.New().String()
		}

		w.Header().Set(chimiddleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
