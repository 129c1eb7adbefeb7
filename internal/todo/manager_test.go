package todo_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/notify"
	"github.com/existflow/toedo/internal/store/storetest"
	"github.com/existflow/toedo/internal/todo"
)

var _ = Describe("Manager", func() {
	var (
		ctx     context.Context
		mem     *storetest.Memory
		notices *notify.Recorder
		ownerID string
		wsA     model.Workspace
		wsB     model.Workspace
	)

	BeforeEach(func() {
		ctx = context.Background()
		mem = storetest.New()
		notices = &notify.Recorder{}
		ownerID = "user-1"
		wsA = mem.SeedWorkspace(model.Workspace{Name: model.String("A"), OwnerID: ownerID})
		wsB = mem.SeedWorkspace(model.Workspace{Name: model.String("B"), OwnerID: ownerID})
	})

	Context("on the owned route", func() {
		var mgr *todo.Manager

		BeforeEach(func() {
			mgr = todo.NewOwned(mem, ownerID, notices)
		})

		Describe("List", func() {
			It("should return the workspace's todos newest first", func() {
				older := mem.SeedTodo(model.Todo{Text: "older", OwnerID: &ownerID, WorkspaceID: wsA.ID})
				newer := mem.SeedTodo(model.Todo{Text: "newer", OwnerID: &ownerID, WorkspaceID: wsA.ID})
				mem.SeedTodo(model.Todo{Text: "elsewhere", OwnerID: &ownerID, WorkspaceID: wsB.ID})

				rows, err := mgr.List(ctx, wsA.ID)

				Expect(err).NotTo(HaveOccurred())
				Expect(rows).To(HaveLen(2))
				Expect(rows[0].ID).To(Equal(newer.ID))
				Expect(rows[1].ID).To(Equal(older.ID))

				f := mem.CallsOf(storetest.ListTodos)[0].TodoFilter
				Expect(*f.WorkspaceID).To(Equal(wsA.ID))
				Expect(*f.OwnerID).To(Equal(ownerID))
			})

			It("should refuse a missing workspace id without a store call", func() {
				_, err := mgr.List(ctx, 0)

				Expect(err).To(MatchError(todo.ErrInvalidWorkspace))
				Expect(mem.Calls()).To(BeEmpty())
			})
		})

		Describe("Add", func() {
			It("should ignore blank text", func() {
				t, err := mgr.Add(ctx, wsA.ID, "   ")

				Expect(err).NotTo(HaveOccurred())
				Expect(t).To(BeNil())
				Expect(mem.Calls()).To(BeEmpty())
				Expect(notices.Notices()).To(BeEmpty())
			})

			It("should store trimmed text with the owner", func() {
				t, err := mgr.Add(ctx, wsA.ID, "  buy milk ")

				Expect(err).NotTo(HaveOccurred())
				Expect(t.Text).To(Equal("buy milk"))
				Expect(t.Completed).To(BeFalse())
				Expect(t.WorkspaceID).To(Equal(wsA.ID))
				Expect(*t.OwnerID).To(Equal(ownerID))

				stored, ok := mem.Todo(t.ID)
				Expect(ok).To(BeTrue())
				Expect(stored.Text).To(Equal("buy milk"))
				n, _ := notices.Last()
				Expect(n.Kind).To(Equal(notify.Success))
			})

			It("should notify once on failure", func() {
				boom := errors.New("boom")
				mem.Fail(storetest.InsertTodo, boom)

				t, err := mgr.Add(ctx, wsA.ID, "x")

				Expect(err).To(MatchError(boom))
				Expect(t).To(BeNil())
				Expect(notices.Notices()).To(HaveLen(1))
				Expect(notices.Notices()[0].Kind).To(Equal(notify.Error))
			})
		})

		Describe("Toggle", func() {
			It("should scope the write by id and workspace", func() {
				t := mem.SeedTodo(model.Todo{Text: "a", OwnerID: &ownerID, WorkspaceID: wsA.ID})

				Expect(mgr.Toggle(ctx, t.ID, wsA.ID, false)).To(Succeed())

				calls := mem.CallsOf(storetest.UpdateTodos)
				Expect(calls).To(HaveLen(1))
				f := calls[0].TodoFilter
				Expect(*f.ID).To(Equal(t.ID))
				Expect(*f.WorkspaceID).To(Equal(wsA.ID))
				Expect(*f.OwnerID).To(Equal(ownerID))
				Expect(*calls[0].TodoUpdate.Completed).To(BeTrue())

				stored, _ := mem.Todo(t.ID)
				Expect(stored.Completed).To(BeTrue())
			})

			It("should not alter a todo of another workspace", func() {
				inB := mem.SeedTodo(model.Todo{Text: "b", OwnerID: &ownerID, WorkspaceID: wsB.ID})

				Expect(mgr.Toggle(ctx, inB.ID, wsA.ID, false)).To(Succeed())

				stored, _ := mem.Todo(inB.ID)
				Expect(stored.Completed).To(BeFalse())
			})

			It("should flip a completed todo back", func() {
				t := mem.SeedTodo(model.Todo{Text: "a", Completed: true, OwnerID: &ownerID, WorkspaceID: wsA.ID})

				Expect(mgr.Toggle(ctx, t.ID, wsA.ID, true)).To(Succeed())

				stored, _ := mem.Todo(t.ID)
				Expect(stored.Completed).To(BeFalse())
			})

			It("should reject a missing workspace before the store", func() {
				Expect(mgr.Toggle(ctx, 1, 0, false)).To(MatchError(todo.ErrInvalidWorkspace))
				Expect(mem.Calls()).To(BeEmpty())
			})
		})

		Describe("Remove", func() {
			It("should delete only within the workspace", func() {
				inA := mem.SeedTodo(model.Todo{Text: "a", OwnerID: &ownerID, WorkspaceID: wsA.ID})
				inB := mem.SeedTodo(model.Todo{Text: "b", OwnerID: &ownerID, WorkspaceID: wsB.ID})

				Expect(mgr.Remove(ctx, inB.ID, wsA.ID)).To(Succeed())
				_, ok := mem.Todo(inB.ID)
				Expect(ok).To(BeTrue())

				Expect(mgr.Remove(ctx, inA.ID, wsA.ID)).To(Succeed())
				_, ok = mem.Todo(inA.ID)
				Expect(ok).To(BeFalse())
			})

			It("should surface store failures", func() {
				boom := errors.New("boom")
				mem.Fail(storetest.DeleteTodos, boom)

				Expect(mgr.Remove(ctx, 1, wsA.ID)).To(MatchError(boom))
				n, _ := notices.Last()
				Expect(n.Kind).To(Equal(notify.Error))
			})
		})
	})

	Context("on the public route", func() {
		var mgr *todo.Manager

		BeforeEach(func() {
			mgr = todo.NewPublic(mem, notices)
		})

		It("should add todos without an owner", func() {
			t, err := mgr.Add(ctx, wsA.ID, "guest item")

			Expect(err).NotTo(HaveOccurred())
			Expect(t.OwnerID).To(BeNil())
			Expect(mem.CallsOf(storetest.InsertTodo)[0].TodoInsert.OwnerID).To(BeNil())
		})

		It("should list every todo of the workspace without an owner predicate", func() {
			mem.SeedTodo(model.Todo{Text: "mine", OwnerID: &ownerID, WorkspaceID: wsA.ID})
			mem.SeedTodo(model.Todo{Text: "guest", WorkspaceID: wsA.ID})

			rows, err := mgr.Fetcher(wsA.ID)(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			f := mem.CallsOf(storetest.ListTodos)[0].TodoFilter
			Expect(f.OwnerID).To(BeNil())
			Expect(*f.WorkspaceID).To(Equal(wsA.ID))
		})

		It("should still scope toggles by workspace", func() {
			t := mem.SeedTodo(model.Todo{Text: "guest", WorkspaceID: wsA.ID})

			Expect(mgr.Toggle(ctx, t.ID, wsA.ID, false)).To(Succeed())

			f := mem.CallsOf(storetest.UpdateTodos)[0].TodoFilter
			Expect(*f.ID).To(Equal(t.ID))
			Expect(*f.WorkspaceID).To(Equal(wsA.ID))
			Expect(f.OwnerID).To(BeNil())
		})
	})
})
