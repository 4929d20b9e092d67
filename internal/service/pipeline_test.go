package service_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/bugrelay/common/llm"
	"basegraph.app/bugrelay/internal/crisp"
	"basegraph.app/bugrelay/internal/model"
	"basegraph.app/bugrelay/internal/service"
	"basegraph.app/bugrelay/internal/service/issue_tracker"
)

const stubAnalysis = `{"title":"Checkout button unresponsive","description":"Clicking checkout does nothing.","stepsToReproduce":["Add item","Click checkout"],"severity":"medium"}`

var _ = Describe("Pipeline", func() {
	var (
		source    *mockConversationSource
		completer *mockCompleter
		tracker   *mockTracker
		sender    *mockNoteSender
		store     *mockSettingsStore
		pipeline  *service.Pipeline
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		source = &mockConversationSource{
			getMessagesFn: func(ctx context.Context, websiteID, sessionID string) ([]crisp.ConversationMessage, error) {
				return []crisp.ConversationMessage{
					{Type: "text", From: "user", Content: []byte(`"checkout is broken"`), Timestamp: 1},
				}, nil
			},
		}
		completer = &mockCompleter{
			completeFn: func(ctx context.Context, req llm.CompletionRequest) (string, error) {
				return stubAnalysis, nil
			},
		}
		tracker = &mockTracker{
			createIssueFn: func(ctx context.Context, params issue_tracker.CreateIssueParams) (*model.Issue, error) {
				return &model.Issue{Number: 17, URL: "https://github.com/acme/app/issues/17", Title: params.Title}, nil
			},
		}
		sender = &mockNoteSender{}
		store = &mockSettingsStore{}

		log := discardLogger()
		pipeline = service.NewPipeline(service.PipelineDeps{
			Fetcher:  service.NewConversationFetcher(source, log),
			Analyzer: service.NewBugAnalyzer(completer, service.BugAnalyzerConfig{}, log),
			Filer:    service.NewIssueFiler(tracker, time.Second, log),
			Notifier: service.NewNotifier(sender, time.Second, log),
			Settings: service.NewSettingsService(store, time.Minute, "", log),
			AppURL:   "https://app.crisp.chat",
			Logger:   log,
		})
	})

	AfterEach(func() {
		Expect(pipeline.Drain(context.Background())).To(Succeed())
	})

	Describe("FileFromConversation", func() {
		It("files the issue for a fetched conversation", func() {
			result, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{
				SessionID:  "s1",
				WebsiteID:  "w1",
				GitHubRepo: "acme/app",
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.RunID).NotTo(BeZero())
			Expect(result.Issue).To(Equal(model.Issue{
				Number: 17,
				URL:    "https://github.com/acme/app/issues/17",
				Title:  "Checkout button unresponsive",
			}))

			body := tracker.lastParams.Body
			for _, h := range []string{"## Description", "## Steps to Reproduce", "## Suggested Severity", "## User Context", "## Reference"} {
				Expect(body).To(ContainSubstring(h))
			}
			Expect(strings.Count(body, "_Not provided_")).To(Equal(5))
			Expect(body).To(ContainSubstring("https://app.crisp.chat/website/w1/inbox/s1"))
			Expect(completer.lastReq.Prompt).To(ContainSubstring("[user]: checkout is broken"))

			Expect(pipeline.Drain(ctx)).To(Succeed())
			notes := sender.Sent()
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].websiteID).To(Equal("w1"))
			Expect(notes[0].sessionID).To(Equal("s1"))
			Expect(notes[0].content).To(Equal("🐛 Bug filed on GitHub: https://github.com/acme/app/issues/17\nTitle: Checkout button unresponsive"))
		})

		It("stops at an empty conversation without calling the model or the tracker", func() {
			source.getMessagesFn = func(ctx context.Context, websiteID, sessionID string) ([]crisp.ConversationMessage, error) {
				return []crisp.ConversationMessage{}, nil
			}

			_, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{
				SessionID: "s1", WebsiteID: "w1", GitHubRepo: "acme/app",
			})
			Expect(errors.Is(err, service.ErrEmptyConversation)).To(BeTrue())
			Expect(service.IsClientError(err)).To(BeTrue())
			Expect(completer.calls).To(Equal(0))
			Expect(tracker.calls).To(Equal(0))
		})

		It("succeeds even when the note cannot be posted", func() {
			sender.sendNoteFn = func(ctx context.Context, websiteID, sessionID, content string) error {
				return errors.New("crisp unavailable")
			}

			result, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{
				SessionID: "s1", WebsiteID: "w1", GitHubRepo: "acme/app",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Issue.Number).To(Equal(int64(17)))

			Expect(pipeline.Drain(ctx)).To(Succeed())
			Expect(sender.Sent()).To(HaveLen(1))
		})

		It("does not wait for the note before returning", func() {
			release := make(chan struct{})
			sender.sendNoteFn = func(ctx context.Context, websiteID, sessionID, content string) error {
				<-release
				return nil
			}

			done := make(chan error, 1)
			go func() {
				_, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{
					SessionID: "s1", WebsiteID: "w1", GitHubRepo: "acme/app",
				})
				done <- err
			}()

			Eventually(done).Should(Receive(BeNil()))
			close(release)
		})

		It("reports message fetch failures as upstream errors", func() {
			source.getMessagesFn = func(ctx context.Context, websiteID, sessionID string) ([]crisp.ConversationMessage, error) {
				return nil, errors.New("connection reset")
			}

			_, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{
				SessionID: "s1", WebsiteID: "w1", GitHubRepo: "acme/app",
			})
			Expect(errors.Is(err, service.ErrUpstreamFetch)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("connection reset"))

			var stageErr *service.StageError
			Expect(errors.As(err, &stageErr)).To(BeTrue())
			Expect(stageErr.Stage).To(Equal(service.StageReceived))
			Expect(completer.calls).To(Equal(0))
		})

		It("continues with empty metadata when the meta call fails", func() {
			source.getMetaFn = func(ctx context.Context, websiteID, sessionID string) (*crisp.ConversationMeta, error) {
				return nil, errors.New("meta unavailable")
			}

			_, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{
				SessionID: "s1", WebsiteID: "w1", GitHubRepo: "acme/app",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(tracker.lastParams.Body, "_Not provided_")).To(Equal(5))
		})

		It("uses the workspace setting when no repository is given", func() {
			store.getFn = func(ctx context.Context, websiteID string) (map[string]any, error) {
				return map[string]any{"github_repo": "acme/web"}, nil
			}

			_, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{SessionID: "s1", WebsiteID: "w1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(tracker.lastParams.Owner).To(Equal("acme"))
			Expect(tracker.lastParams.Repo).To(Equal("web"))
		})

		It("fails validation when the repository cannot be resolved", func() {
			_, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{SessionID: "s1", WebsiteID: "w1"})
			Expect(errors.Is(err, service.ErrValidation)).To(BeTrue())
			Expect(source.messageCalls).To(Equal(0))
		})

		It("rejects a malformed repository before fetching the conversation", func() {
			_, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{
				SessionID: "s1", WebsiteID: "w1", GitHubRepo: "acme",
			})
			Expect(errors.Is(err, service.ErrInvalidRepository)).To(BeTrue())

			var stageErr *service.StageError
			Expect(errors.As(err, &stageErr)).To(BeTrue())
			Expect(stageErr.Stage).To(Equal(service.StageReceived))

			Expect(source.messageCalls).To(Equal(0))
			Expect(source.metaCalls).To(Equal(0))
			Expect(completer.calls).To(Equal(0))
			Expect(tracker.calls).To(Equal(0))
		})

		It("requires both identifiers", func() {
			_, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{WebsiteID: "w1"})
			Expect(errors.Is(err, service.ErrValidation)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("session_id"))
			Expect(source.messageCalls).To(Equal(0))
		})

		It("aborts on analysis failures", func() {
			completer.completeFn = func(ctx context.Context, req llm.CompletionRequest) (string, error) {
				return "```json\n" + stubAnalysis + "\n```", nil
			}

			_, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{
				SessionID: "s1", WebsiteID: "w1", GitHubRepo: "acme/app",
			})
			Expect(errors.Is(err, service.ErrAnalysis)).To(BeTrue())
			Expect(tracker.calls).To(Equal(0))
			Expect(sender.Sent()).To(BeEmpty())
		})

		It("aborts on tracker failures without posting a note", func() {
			tracker.createIssueFn = func(ctx context.Context, params issue_tracker.CreateIssueParams) (*model.Issue, error) {
				return nil, &issue_tracker.APIError{Provider: "github", StatusCode: 404, Message: "Not Found"}
			}

			_, err := pipeline.FileFromConversation(ctx, service.FileFromConversationParams{
				SessionID: "s1", WebsiteID: "w1", GitHubRepo: "acme/app",
			})
			Expect(errors.Is(err, service.ErrIssueCreation)).To(BeTrue())

			var stageErr *service.StageError
			Expect(errors.As(err, &stageErr)).To(BeTrue())
			Expect(stageErr.Stage).To(Equal(service.StageAnalyzed))

			Expect(pipeline.Drain(ctx)).To(Succeed())
			Expect(sender.Sent()).To(BeEmpty())
		})
	})

	Describe("FileFromTranscript", func() {
		It("files from an embedded transcript without fetching", func() {
			result, err := pipeline.FileFromTranscript(ctx, service.FileFromTranscriptParams{
				SessionID:  "s1",
				WebsiteID:  "w1",
				GitHubRepo: "acme/app",
				Messages:   []model.Message{{Type: "text", From: "user", Content: "checkout is broken"}},
				Meta:       model.ConversationMeta{Email: s("ana@example.com")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Issue.Number).To(Equal(int64(17)))
			Expect(source.messageCalls).To(Equal(0))
			Expect(tracker.lastParams.Body).To(ContainSubstring("| Email | ana@example.com |"))
		})

		It("requires messages", func() {
			_, err := pipeline.FileFromTranscript(ctx, service.FileFromTranscriptParams{
				SessionID: "s1", WebsiteID: "w1", GitHubRepo: "acme/app",
			})
			Expect(errors.Is(err, service.ErrValidation)).To(BeTrue())
		})

		It("treats an empty transcript as an empty conversation", func() {
			_, err := pipeline.FileFromTranscript(ctx, service.FileFromTranscriptParams{
				SessionID: "s1", WebsiteID: "w1", GitHubRepo: "acme/app",
				Messages: []model.Message{},
			})
			Expect(errors.Is(err, service.ErrEmptyConversation)).To(BeTrue())
			Expect(completer.calls).To(Equal(0))
		})
	})

	Describe("Run", func() {
		It("runs an already resolved request", func() {
			result, err := pipeline.Run(ctx, service.PipelineRequest{
				WebsiteID:  "w1",
				SessionID:  "s1",
				Repository: "acme/app",
				Messages:   []model.Message{{Type: "text", From: "user", Content: "broken"}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Issue.Title).To(Equal("Checkout button unresponsive"))
		})
	})
})
