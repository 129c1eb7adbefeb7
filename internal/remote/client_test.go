package remote_test

import (
	"context"
	"errors"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/existflow/toedo/internal/gate"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/notify"
	"github.com/existflow/toedo/internal/remote"
	"github.com/existflow/toedo/internal/store"
	"github.com/existflow/toedo/internal/store/storetest"
	"github.com/existflow/toedo/internal/todo"
	"github.com/existflow/toedo/internal/workspace"
	"github.com/existflow/toedo/server"
)

type passwords map[int64]string

func (p passwords) Password(_ context.Context, id int64) (string, bool) {
	pw, ok := p[id]
	return pw, ok
}

func (p passwords) Get(_ context.Context, id int64) (string, bool, error) {
	pw, ok := p[id]
	return pw, ok, nil
}

func (p passwords) Put(_ context.Context, id int64, pw string) error {
	p[id] = pw
	return nil
}

var _ = Describe("Client", func() {
	var (
		ctx     context.Context
		backend *storetest.Backend
		ts      *httptest.Server
		owner   *remote.Client
		auth    *remote.AuthResult
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = storetest.NewBackend()
		ts = httptest.NewServer(server.New(backend, server.Config{ExposeMagicToken: true}).Router())
		DeferCleanup(ts.Close)

		owner = remote.New(ts.URL)
		var err error
		auth, err = owner.Register(ctx, "owner@example.com", "secret123")
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("auth", func() {
		It("should identify the signed-in user", func() {
			me, err := owner.Me(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(me.ID).To(Equal(auth.UserID))
			Expect(me.Email).To(Equal("owner@example.com"))
			Expect(auth.ExpiresAt).NotTo(BeZero())
		})

		It("should map a bad login to ErrUnauthorized", func() {
			_, err := remote.New(ts.URL).Login(ctx, "owner@example.com", "wrong-pass")

			Expect(remote.IsUnauthorized(err)).To(BeTrue())
			var apiErr *remote.Error
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Message).To(Equal("invalid credentials"))
		})

		It("should sign in through a magic link", func() {
			c := remote.New(ts.URL)
			token, err := c.RequestMagicLink(ctx, "owner@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())

			res, err := c.VerifyMagicLink(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.UserID).To(Equal(auth.UserID))

			me, err := c.Me(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.ID).To(Equal(auth.UserID))
		})

		It("should forget the token on logout", func() {
			Expect(owner.Logout(ctx)).To(Succeed())

			_, err := owner.Me(ctx)
			Expect(remote.IsUnauthorized(err)).To(BeTrue())
		})
	})

	Describe("as a store", func() {
		It("should drive the workspace manager", func() {
			mgr := workspace.NewManager(owner, auth.UserID, notify.Discard)

			rows, err := mgr.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].DisplayName()).To(Equal(model.PlaceholderName))

			ws, err := mgr.Create(ctx, "Second")
			Expect(err).NotTo(HaveOccurred())
			_, err = mgr.Rename(ctx, ws.ID, "Renamed")
			Expect(err).NotTo(HaveOccurred())

			rows, err = mgr.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[1].DisplayName()).To(Equal("Renamed"))

			Expect(mgr.Delete(ctx, ws.ID)).To(Succeed())
			Expect(mgr.Delete(ctx, rows[0].ID)).To(MatchError(workspace.ErrLastWorkspace))
		})

		It("should drive the owned todo manager", func() {
			ws, err := owner.InsertWorkspace(ctx, model.WorkspaceInsert{Name: model.String("list"), OwnerID: auth.UserID})
			Expect(err).NotTo(HaveOccurred())
			todos := todo.NewOwned(owner, auth.UserID, notify.Discard)

			t, err := todos.Add(ctx, ws.ID, " milk ")
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Text).To(Equal("milk"))
			Expect(*t.OwnerID).To(Equal(auth.UserID))

			Expect(todos.Toggle(ctx, t.ID, ws.ID, false)).To(Succeed())
			rows, err := todos.List(ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Completed).To(BeTrue())

			Expect(todos.Remove(ctx, t.ID, ws.ID)).To(Succeed())
			rows, _ = todos.List(ctx, ws.ID)
			Expect(rows).To(BeEmpty())
		})

		It("should refuse unscoped todo calls before sending", func() {
			_, err := owner.ListTodos(ctx, store.TodoFilter{})

			Expect(err).To(MatchError(store.ErrUnscoped))
		})
	})

	Describe("the public route", func() {
		var (
			ws      model.Workspace
			cache   passwords
			visitor *remote.Client
		)

		BeforeEach(func() {
			var err error
			ws, err = owner.InsertWorkspace(ctx, model.WorkspaceInsert{Name: model.String("shared"), OwnerID: auth.UserID})
			Expect(err).NotTo(HaveOccurred())
			Expect(owner.UpdateWorkspaces(ctx,
				store.WorkspaceFilter{ID: &ws.ID, OwnerID: &auth.UserID},
				model.WorkspaceUpdate{IsPublic: model.Bool(true), Password: model.String("x")},
			)).To(Succeed())

			cache = passwords{}
			visitor = remote.New(ts.URL, remote.WithCredentials(cache))
		})

		It("should gate the visitor and then allow todo access", func() {
			g := gate.New(visitor, cache, notify.Discard)

			out, err := g.Evaluate(ctx, gateAddress(ws.ID))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.State).To(Equal(gate.PasswordRequired))

			_, err = todo.NewPublic(visitor, notify.Discard).List(ctx, ws.ID)
			Expect(err).To(MatchError(store.ErrForbidden))

			out, err = g.VerifyPassword(ctx, "x")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.State).To(Equal(gate.Granted))

			todos := todo.NewPublic(visitor, notify.Discard)
			t, err := todos.Add(ctx, ws.ID, "from a guest")
			Expect(err).NotTo(HaveOccurred())
			Expect(t.OwnerID).To(BeNil())

			rows, err := todos.List(ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
		})

		It("should deny a private workspace", func() {
			Expect(owner.UpdateWorkspaces(ctx,
				store.WorkspaceFilter{ID: &ws.ID, OwnerID: &auth.UserID},
				model.WorkspaceUpdate{IsPublic: model.Bool(false)},
			)).To(Succeed())
			cache[ws.ID] = "x"

			out, err := gate.New(visitor, cache, notify.Discard).Evaluate(ctx, gateAddress(ws.ID))

			Expect(err).To(MatchError(gate.ErrNotPublic))
			Expect(out.Reason).To(Equal(gate.ReasonNotPublic))
		})

		It("should report a missing workspace", func() {
			_, err := gate.New(visitor, cache, notify.Discard).Evaluate(ctx, gateAddress(ws.ID+1000))

			Expect(err).To(MatchError(gate.ErrNotFound))
		})
	})
})
