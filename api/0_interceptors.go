package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fulldump/box"

	"github.com/fulldump/percoladb/cluster"
	"github.com/fulldump/percoladb/percolator"
	"github.com/fulldump/percoladb/service"
)

var ErrorMalformedRequest = errors.New("malformed request")

func RecoverFromPanic(next box.H) box.H {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				debug.PrintStack()
				box.SetError(ctx, fmt.Errorf("internal panic: %v", r))
			}
		}()
		next(ctx)
	}
}

func AccessLog(l *log.Logger) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			r := box.GetRequest(ctx)
			now := time.Now()
			defer func() {
				l.Println(now.UTC().Format(time.RFC3339Nano), formatRemoteAddr(r), r.Method, r.URL.String(), time.Since(now))
			}()

			next(ctx)
		}
	}
}

func formatRemoteAddr(r *http.Request) string {
	xorigin := strings.TrimSpace(strings.Split(
		r.Header.Get("X-Forwarded-For"), ",")[0])
	if xorigin != "" {
		return xorigin
	}

	i := strings.LastIndex(r.RemoteAddr, ":")
	if i < 0 {
		return r.RemoteAddr
	}
	return r.RemoteAddr[0:i]
}

func InterceptorUnavailable(c *cluster.Cluster) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {

			status := c.GetStatus()
			if status == cluster.StatusOpening {
				box.SetError(ctx, fmt.Errorf("temporary unavailable: opening"))
				return
			}
			if status == cluster.StatusClosing {
				box.SetError(ctx, fmt.Errorf("temporary unavailable: closing"))
				return
			}
			next(ctx)
		}
	}
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)

		writeError := func(status int, description string) {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{
					"message":     err.Error(),
					"description": description,
				},
			})
		}

		if errors.Is(err, service.ErrorIndexNotFound) {
			writeError(http.StatusNotFound, "the target index does not exist")
			return
		}

		if errors.Is(err, service.ErrorIndexAlreadyExists) {
			writeError(http.StatusConflict, "an index with that name already exists")
			return
		}

		if errors.Is(err, percolator.ErrCompile) {
			writeError(http.StatusBadRequest, "the query definition could not be compiled")
			return
		}

		if errors.Is(err, ErrorMalformedRequest) {
			writeError(http.StatusBadRequest, "the request body is not valid")
			return
		}

		if _, ok := err.(*json.SyntaxError); ok {
			writeError(http.StatusBadRequest, "malformed JSON")
			return
		}

		if err == box.ErrResourceNotFound {
			writeError(http.StatusNotFound, fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String()))
			return
		}

		if err == box.ErrMethodNotAllowed {
			writeError(http.StatusMethodNotAllowed, fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method))
			return
		}

		writeError(http.StatusInternalServerError, "unexpected error")
	}
}
