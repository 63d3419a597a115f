package httpapi

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/wikidex/internal/logger"
)

// maxSignatureAge is the accepted clock skew for signed requests.
// Older timestamps are rejected to blunt replay attacks.
const maxSignatureAge = 5 * time.Minute

// verifySignature checks the Slack v0 request signature before passing
// the request on. The body is buffered and restored so handlers can
// read it again.
func (s *Server) verifySignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.skipVerify {
			logger.Warn("Slack signature verification skipped")
			next.ServeHTTP(w, r)
			return
		}

		signature := r.Header.Get("X-Slack-Signature")
		timestamp := r.Header.Get("X-Slack-Request-Timestamp")
		if signature == "" || timestamp == "" || s.signingSecret == "" {
			http.Error(w, "missing signature", http.StatusForbidden)
			return
		}

		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			http.Error(w, "bad timestamp", http.StatusForbidden)
			return
		}
		age := s.now().Sub(time.Unix(ts, 0))
		if age > maxSignatureAge || age < -maxSignatureAge {
			http.Error(w, "timestamp too old", http.StatusForbidden)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "unreadable body", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		mac := hmac.New(sha256.New, []byte(s.signingSecret))
		fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
		expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(expected), []byte(signature)) {
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
