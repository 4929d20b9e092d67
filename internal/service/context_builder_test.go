package service_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/bugrelay/internal/model"
	"basegraph.app/bugrelay/internal/service"
)

func s(v string) *string { return &v }

var _ = Describe("BuildUserContext", func() {
	It("derives every field from a complete tree", func() {
		uc := service.BuildUserContext(model.ConversationMeta{
			Email: s("ana@example.com"),
			Device: &model.Device{
				Capabilities: []string{"desktop", "touch"},
				Geolocation:  &model.Geolocation{Country: s("BR"), City: s("Recife")},
				System: &model.System{
					OS:      &model.NamedVersion{Name: s("macOS"), Version: s("14.2")},
					Browser: &model.NamedVersion{Name: s("Firefox"), Version: s("121")},
				},
			},
		})

		Expect(uc.Email).To(HaveValue(Equal("ana@example.com")))
		Expect(uc.Device).To(HaveValue(Equal("desktop, touch")))
		Expect(uc.Country).To(HaveValue(Equal("BR")))
		Expect(uc.OS).To(HaveValue(Equal("macOS 14.2")))
		Expect(uc.Browser).To(HaveValue(Equal("Firefox 121")))
	})

	DescribeTable("never fails on partial metadata",
		func(meta model.ConversationMeta) {
			var uc model.UserContext
			Expect(func() { uc = service.BuildUserContext(meta) }).NotTo(Panic())
			for _, field := range []*string{uc.Email, uc.Device, uc.Browser, uc.OS, uc.Country} {
				if field != nil {
					Expect(*field).NotTo(BeEmpty())
					Expect(*field).NotTo(ContainSubstring("<nil>"))
				}
			}
		},
		Entry("empty meta", model.ConversationMeta{}),
		Entry("email only", model.ConversationMeta{Email: s("a@b.c")}),
		Entry("empty device", model.ConversationMeta{Device: &model.Device{}}),
		Entry("empty capability set", model.ConversationMeta{Device: &model.Device{Capabilities: []string{}}}),
		Entry("geolocation without country", model.ConversationMeta{Device: &model.Device{Geolocation: &model.Geolocation{City: s("Lisbon")}}}),
		Entry("system without software", model.ConversationMeta{Device: &model.Device{System: &model.System{}}}),
		Entry("blank email", model.ConversationMeta{Email: s("  ")}),
	)

	It("leaves capabilities absent when the set is empty", func() {
		uc := service.BuildUserContext(model.ConversationMeta{Device: &model.Device{Capabilities: []string{}}})
		Expect(uc.Device).To(BeNil())
	})

	DescribeTable("populates browser and os only when name and version are both present",
		func(nv *model.NamedVersion, want *string) {
			uc := service.BuildUserContext(model.ConversationMeta{
				Device: &model.Device{System: &model.System{OS: nv, Browser: nv}},
			})
			if want == nil {
				Expect(uc.OS).To(BeNil())
				Expect(uc.Browser).To(BeNil())
				return
			}
			Expect(uc.OS).To(HaveValue(Equal(*want)))
			Expect(uc.Browser).To(HaveValue(Equal(*want)))
		},
		Entry("name only", &model.NamedVersion{Name: s("Chrome")}, nil),
		Entry("version only", &model.NamedVersion{Version: s("120")}, nil),
		Entry("both present", &model.NamedVersion{Name: s("Chrome"), Version: s("120")}, s("Chrome 120")),
		Entry("absent", nil, nil),
	)
})
