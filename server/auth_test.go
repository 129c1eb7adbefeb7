package server_test

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/existflow/toedo/server"
)

var _ = Describe("Auth", func() {
	var h *harness

	BeforeEach(func() {
		h = newHarness()
	})

	It("should report health", func() {
		rec := h.do(request{method: http.MethodGet, path: "/health"})

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"ok"`))
	})

	Describe("register", func() {
		It("should create the user and sign them in", func() {
			auth := h.register("Ada@Example.com ")

			Expect(auth.Token).To(HaveLen(64))
			Expect(auth.UserID).NotTo(BeEmpty())
			Expect(auth.Email).To(Equal("ada@example.com"))
			Expect(auth.ExpiresAt).NotTo(BeEmpty())
		})

		DescribeTable("should reject bad input",
			func(body map[string]string, status int) {
				rec := h.do(request{method: http.MethodPost, path: "/api/v1/register", body: body})
				Expect(rec.Code).To(Equal(status))
				Expect(errorOf(rec)).NotTo(BeEmpty())
			},
			Entry("missing email", map[string]string{"password": "secret123"}, http.StatusBadRequest),
			Entry("missing password", map[string]string{"email": "a@b.co"}, http.StatusBadRequest),
			Entry("short password", map[string]string{"email": "a@b.co", "password": "12345"}, http.StatusBadRequest),
			Entry("bad email", map[string]string{"email": "nope", "password": "secret123"}, http.StatusBadRequest),
		)

		It("should refuse a duplicate email", func() {
			h.register("ada@example.com")

			rec := h.do(request{
				method: http.MethodPost,
				path:   "/api/v1/register",
				body:   map[string]string{"email": "ADA@example.com", "password": "secret123"},
			})

			Expect(rec.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("login", func() {
		BeforeEach(func() {
			h.register("ada@example.com")
		})

		It("should return a fresh session", func() {
			rec := h.do(request{
				method: http.MethodPost,
				path:   "/api/v1/login",
				body:   map[string]string{"email": "ada@example.com", "password": "secret123"},
			})

			Expect(rec.Code).To(Equal(http.StatusOK))
			var auth server.AuthResponse
			decode(rec, &auth)
			Expect(auth.Token).NotTo(BeEmpty())
		})

		It("should refuse a wrong password", func() {
			rec := h.do(request{
				method: http.MethodPost,
				path:   "/api/v1/login",
				body:   map[string]string{"email": "ada@example.com", "password": "wrong-pass"},
			})

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(errorOf(rec)).To(Equal("invalid credentials"))
		})

		It("should refuse an unknown email", func() {
			rec := h.do(request{
				method: http.MethodPost,
				path:   "/api/v1/login",
				body:   map[string]string{"email": "who@example.com", "password": "secret123"},
			})

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("sessions", func() {
		It("should identify the caller", func() {
			auth := h.register("ada@example.com")

			rec := h.do(request{method: http.MethodGet, path: "/api/v1/me", token: auth.Token})

			Expect(rec.Code).To(Equal(http.StatusOK))
			var me map[string]string
			decode(rec, &me)
			Expect(me["id"]).To(Equal(auth.UserID))
			Expect(me["email"]).To(Equal("ada@example.com"))
		})

		It("should require a token", func() {
			rec := h.do(request{method: http.MethodGet, path: "/api/v1/me"})

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(errorOf(rec)).To(Equal("authorization required"))
		})

		It("should reject an unknown token", func() {
			rec := h.do(request{method: http.MethodGet, path: "/api/v1/me", token: "bogus"})

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(errorOf(rec)).To(Equal("invalid token"))
		})

		It("should end the session on logout", func() {
			auth := h.register("ada@example.com")

			rec := h.do(request{method: http.MethodPost, path: "/api/v1/logout", token: auth.Token})
			Expect(rec.Code).To(Equal(http.StatusNoContent))

			rec = h.do(request{method: http.MethodGet, path: "/api/v1/me", token: auth.Token})
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("magic links", func() {
		It("should not reveal unknown emails", func() {
			rec := h.do(request{method: http.MethodPost, path: "/api/v1/magic-link", body: map[string]string{"email": "who@example.com"}})

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body map[string]string
			decode(rec, &body)
			Expect(body).NotTo(HaveKey("token"))
		})

		It("should sign in once with the link token", func() {
			auth := h.register("ada@example.com")

			rec := h.do(request{method: http.MethodPost, path: "/api/v1/magic-link", body: map[string]string{"email": "ada@example.com"}})
			Expect(rec.Code).To(Equal(http.StatusOK))
			var body map[string]string
			decode(rec, &body)
			Expect(body["token"]).NotTo(BeEmpty())

			rec = h.do(request{method: http.MethodGet, path: "/api/v1/magic-link/" + body["token"]})
			Expect(rec.Code).To(Equal(http.StatusOK))
			var signedIn server.AuthResponse
			decode(rec, &signedIn)
			Expect(signedIn.UserID).To(Equal(auth.UserID))

			rec = h.do(request{method: http.MethodGet, path: "/api/v1/magic-link/" + body["token"]})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorOf(rec)).To(Equal("token already used"))
		})

		It("should reject an unknown link token", func() {
			rec := h.do(request{method: http.MethodGet, path: "/api/v1/magic-link/nope"})

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
