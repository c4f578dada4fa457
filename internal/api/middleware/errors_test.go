/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package middleware

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ErrorJsonifier", func() {
	var (
		recorder *httptest.ResponseRecorder
		router   *ErrorJsonifier
	)

	BeforeEach(func() {
		recorder = httptest.NewRecorder()
		router = NewErrorJsonifier(http.NewServeMux())
		router.HandleFunc("GET /known/{$}", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status": "OK"}`))
		})
	})

	It("passes JSON responses through untouched", func() {
		req := httptest.NewRequest(http.MethodGet, "/known/", nil)
		router.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(recorder.Body.String()).To(MatchJSON(`{"status": "OK"}`))
	})

	It("converts the plain text 404 of the mux to a JSON message", func() {
		req := httptest.NewRequest(http.MethodGet, "/missing/", nil)
		router.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusNotFound))
		Expect(recorder.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
		Expect(recorder.Body.String()).To(MatchJSON(`{"message": "404 page not found"}`))
	})

	It("converts the plain text 405 of the mux to a JSON message", func() {
		req := httptest.NewRequest(http.MethodPost, "/known/", nil)
		router.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusMethodNotAllowed))
		Expect(recorder.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
		Expect(recorder.Body.String()).To(MatchJSON(`{"message": "Method Not Allowed"}`))
	})
})

var _ = Describe("ChainHandlers", func() {
	tagger := func(tag string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add("X-Tag", tag)
				next.ServeHTTP(w, r)
			})
		}
	}

	It("wraps the base handler so the last middleware runs first", func() {
		base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		handler := ChainHandlers(base, tagger("inner"), tagger("outer"))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(recorder.Header().Values("X-Tag")).To(Equal([]string{"outer", "inner"}))
	})
})

var _ = Describe("WriteMessage", func() {
	It("writes the message envelope with the given status", func() {
		recorder := httptest.NewRecorder()
		WriteMessage(recorder, "something went wrong", http.StatusBadRequest)

		Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		Expect(recorder.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
		Expect(recorder.Body.String()).To(MatchJSON(`{"message": "something went wrong"}`))
	})
})
