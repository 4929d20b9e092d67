package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/bugrelay/internal/service"
)

var _ = Describe("SettingsService", func() {
	var (
		store    *mockSettingsStore
		settings service.SettingsService
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = &mockSettingsStore{
			getFn: func(ctx context.Context, websiteID string) (map[string]any, error) {
				return map[string]any{"github_repo": "acme/app"}, nil
			},
		}
		settings = service.NewSettingsService(store, time.Minute, "", discardLogger())
	})

	Describe("Get", func() {
		It("caches settings per workspace", func() {
			first, err := settings.Get(ctx, "w1")
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(HaveKeyWithValue("github_repo", "acme/app"))

			_, err = settings.Get(ctx, "w1")
			Expect(err).NotTo(HaveOccurred())
			Expect(store.getCalls).To(Equal(1))
		})

		It("returns an empty map when the workspace has none", func() {
			store.getFn = func(ctx context.Context, websiteID string) (map[string]any, error) {
				return nil, nil
			}
			got, err := settings.Get(ctx, "w1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got).To(BeEmpty())
		})

		It("requires a website id", func() {
			_, err := settings.Get(ctx, "")
			Expect(errors.Is(err, service.ErrValidation)).To(BeTrue())
		})
	})

	Describe("Save", func() {
		It("stores the repository and invalidates the cache", func() {
			_, err := settings.Get(ctx, "w1")
			Expect(err).NotTo(HaveOccurred())

			Expect(settings.Save(ctx, "w1", " acme/web ")).To(Succeed())
			Expect(store.lastUpdate).To(Equal(map[string]any{"github_repo": "acme/web"}))

			_, err = settings.Get(ctx, "w1")
			Expect(err).NotTo(HaveOccurred())
			Expect(store.getCalls).To(Equal(2))
		})

		It("rejects missing fields", func() {
			err := settings.Save(ctx, "w1", "")
			Expect(errors.Is(err, service.ErrValidation)).To(BeTrue())
			Expect(store.updateCalls).To(Equal(0))
		})

		It("rejects malformed repositories", func() {
			err := settings.Save(ctx, "w1", "acme")
			Expect(errors.Is(err, service.ErrInvalidRepository)).To(BeTrue())
			Expect(store.updateCalls).To(Equal(0))
		})

		It("passes store failures through", func() {
			store.updateFn = func(ctx context.Context, websiteID string, settings map[string]any) error {
				return errors.New("crisp says no")
			}
			Expect(settings.Save(ctx, "w1", "acme/app")).To(MatchError("crisp says no"))
		})
	})

	Describe("ResolveRepository", func() {
		It("prefers the requested repository", func() {
			repo, err := settings.ResolveRepository(ctx, "w1", "acme/override")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo).To(Equal("acme/override"))
			Expect(store.getCalls).To(Equal(0))
		})

		It("falls back to the workspace setting", func() {
			repo, err := settings.ResolveRepository(ctx, "w1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo).To(Equal("acme/app"))
		})

		It("falls back to the default when settings are unavailable", func() {
			store.getFn = func(ctx context.Context, websiteID string) (map[string]any, error) {
				return nil, errors.New("timeout")
			}
			settings = service.NewSettingsService(store, time.Minute, "acme/default", discardLogger())

			repo, err := settings.ResolveRepository(ctx, "w1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo).To(Equal("acme/default"))
		})

		It("fails validation when nothing is configured", func() {
			store.getFn = func(ctx context.Context, websiteID string) (map[string]any, error) {
				return map[string]any{}, nil
			}
			_, err := settings.ResolveRepository(ctx, "w1", "  ")
			Expect(errors.Is(err, service.ErrValidation)).To(BeTrue())
		})
	})
})
