package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/prasetyow/expense-reimbursement/internal/auth"
)

func TestMiddleware(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Transport Middleware Suite")
}

var _ = ginkgo.Describe("LoggingMiddleware", func() {
	var (
		logOutput *bytes.Buffer
		logger    *slog.Logger
	)

	ginkgo.BeforeEach(func() {
		logOutput = &bytes.Buffer{}
		logger = slog.New(slog.NewTextHandler(logOutput, nil))
	})

	serveThrough := func(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		LoggingMiddleware(logger)(handler).ServeHTTP(w, req)
		return w
	}

	ginkgo.It("should mask password fields in JSON request bodies", func() {
		// Given
		body := strings.NewReader(`{"username":"alice","password":"super_secret"}`)
		req := httptest.NewRequest(http.MethodPost, "/login", body)

		// When
		serveThrough(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}, req)

		// Then
		gomega.Expect(logOutput.String()).NotTo(gomega.ContainSubstring("super_secret"))
		gomega.Expect(logOutput.String()).To(gomega.ContainSubstring("[FILTERED]"))
	})

	ginkgo.It("should mask token fields in JSON response bodies", func() {
		// Given
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)

		// When
		serveThrough(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"abc123","expires_at":"2026-01-01T00:00:00Z"}`))
		}, req)

		// Then
		gomega.Expect(logOutput.String()).NotTo(gomega.ContainSubstring("abc123"))
	})

	ginkgo.It("should mask a bare JWT written as a plain-text response", func() {
		// Given
		tokenGen := auth.NewJWTTokenGenerator("logging-middleware-test-signing-secret", time.Hour)
		tokenString, _, err := tokenGen.GenerateAccessToken(1, "alice", auth.RoleEmployee)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/login", nil)

		// When
		serveThrough(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(tokenString))
		}, req)

		// Then
		gomega.Expect(logOutput.String()).NotTo(gomega.ContainSubstring(tokenString))
		gomega.Expect(logOutput.String()).To(gomega.ContainSubstring("[FILTERED]"))
	})

	ginkgo.It("should pass ordinary plain-text responses through", func() {
		// Given
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)

		// When
		serveThrough(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}, req)

		// Then
		gomega.Expect(logOutput.String()).To(gomega.ContainSubstring("pong"))
	})

	ginkgo.It("should mask the Authorization header", func() {
		// Given
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer some.token.value")

		// When
		serveThrough(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}, req)

		// Then
		gomega.Expect(logOutput.String()).NotTo(gomega.ContainSubstring("some.token.value"))
	})
})
