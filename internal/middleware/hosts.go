package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const ProcessTimeHeader = "X-Process-Time"

// TrustedHosts rejects requests whose Host header is not listed. Entries may
// be exact hosts or "*.domain" patterns; an empty list or "*" allows any host.
func TrustedHosts(hosts []string) gin.HandlerFunc {
	allowed := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "*" {
			allowed = nil
			break
		}
		if h != "" {
			allowed = append(allowed, h)
		}
	}
	return func(c *gin.Context) {
		if len(allowed) == 0 || hostAllowed(c.Request.Host, allowed) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid host header"})
	}
}

func hostAllowed(host string, allowed []string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	for _, pattern := range allowed {
		if pattern == host {
			return true
		}
		if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// ProcessTime reports handler time in seconds in the X-Process-Time header.
// The header is set just before the response head goes out.
func ProcessTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		pw := &processTimeWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Writer = pw
		c.Next()
		// bodiless responses are flushed by gin after the chain returns
		pw.stamp()
	}
}

type processTimeWriter struct {
	gin.ResponseWriter
	start time.Time
}

func (w *processTimeWriter) stamp() {
	if !w.Written() {
		w.Header().Set(ProcessTimeHeader, strconv.FormatFloat(time.Since(w.start).Seconds(), 'f', 6, 64))
	}
}

func (w *processTimeWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *processTimeWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *processTimeWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}
