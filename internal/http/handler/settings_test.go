package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/bugrelay/internal/http/handler"
	"basegraph.app/bugrelay/internal/service"
)

var _ = Describe("SettingsHandler", func() {
	var (
		settings *mockSettingsService
		router   *gin.Engine
	)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	BeforeEach(func() {
		settings = &mockSettingsService{
			getFn: func(ctx context.Context, websiteID string) (map[string]any, error) {
				return map[string]any{"github_repo": "acme/app"}, nil
			},
		}
		h := handler.NewSettingsHandler(settings)
		router = gin.New()
		router.GET("/settings/:website_id", h.Get)
		router.PUT("/settings/:website_id", h.Update)
		router.GET("/get-settings", h.GetByQuery)
		router.POST("/save-settings", h.Save)
	})

	Describe("Get", func() {
		It("returns the workspace settings", func() {
			w := get("/settings/w1")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"settings":{"github_repo":"acme/app"}}`))
			Expect(settings.lastGetWebsite).To(Equal("w1"))
		})

		It("reads the workspace from the query string", func() {
			w := get("/get-settings?website_id=w2")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(settings.lastGetWebsite).To(Equal("w2"))
		})

		It("requires a workspace", func() {
			w := get("/get-settings")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"missing website_id"}`))
		})

		It("answers empty settings when the lookup fails", func() {
			settings.getFn = func(ctx context.Context, websiteID string) (map[string]any, error) {
				return nil, errors.New("subscription not found")
			}
			w := get("/settings/w1")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"settings":{}}`))
		})
	})

	Describe("Update and Save", func() {
		put := func(path, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		It("saves by path parameter", func() {
			w := put("/settings/w1", `{"github_repo":"acme/app"}`)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"success":true}`))
			Expect(settings.lastSaveWebsite).To(Equal("w1"))
			Expect(settings.lastSaveRepo).To(Equal("acme/app"))
		})

		It("saves the widget form", func() {
			w := postJSON(router, "/save-settings", `{"website_id":"w3","settings":{"github_repo":"acme/web"}}`)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(settings.lastSaveWebsite).To(Equal("w3"))
			Expect(settings.lastSaveRepo).To(Equal("acme/web"))
		})

		It("answers 400 on validation errors", func() {
			settings.saveFn = func(ctx context.Context, websiteID, githubRepo string) error {
				return fmt.Errorf("%w: website_id and github_repo are required", service.ErrValidation)
			}
			w := postJSON(router, "/save-settings", `{"website_id":"w3","settings":{}}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)).To(HaveKey("error"))
		})

		It("answers 500 with the upstream message on store errors", func() {
			settings.saveFn = func(ctx context.Context, websiteID, githubRepo string) error {
				return errors.New("crisp: PATCH /plugins/subscription/w1/p/settings: status 403: plugin_not_subscribed")
			}
			w := put("/settings/w1", `{"github_repo":"acme/app"}`)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decode(w)).To(HaveKeyWithValue("error", ContainSubstring("plugin_not_subscribed")))
		})
	})
})
