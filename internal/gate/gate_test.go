package gate_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/existflow/toedo/internal/gate"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/notify"
	"github.com/existflow/toedo/internal/sharetoken"
	"github.com/existflow/toedo/internal/store/storetest"
)

type mapCache struct {
	values map[int64]string
	putErr error
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[int64]string)}
}

func (c *mapCache) Get(_ context.Context, id int64) (string, bool, error) {
	v, ok := c.values[id]
	return v, ok, nil
}

func (c *mapCache) Put(_ context.Context, id int64, pw string) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.values[id] = pw
	return nil
}

var _ = Describe("Gate", func() {
	var (
		ctx     context.Context
		mem     *storetest.Memory
		cache   *mapCache
		notices *notify.Recorder
		now     time.Time
		g       *gate.Gate
	)

	BeforeEach(func() {
		ctx = context.Background()
		mem = storetest.New()
		cache = newMapCache()
		notices = &notify.Recorder{}
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		g = gate.New(mem, cache, notices, gate.WithClock(func() time.Time { return now }))
	})

	seed := func(public *bool, password *string) model.Workspace {
		return mem.SeedWorkspace(model.Workspace{
			Name:     model.String("shared"),
			OwnerID:  "owner",
			IsPublic: public,
			Password: password,
		})
	}

	at := func(id int64) sharetoken.Address {
		return sharetoken.Address{WorkspaceID: id}
	}

	withToken := func(id int64, token string) sharetoken.Address {
		return sharetoken.Address{WorkspaceID: id, Token: token}
	}

	It("should start in Loading", func() {
		Expect(g.State()).To(Equal(gate.Loading))
	})

	Context("when the workspace does not exist", func() {
		It("should deny and redirect", func() {
			out, err := g.Evaluate(ctx, at(42))

			Expect(err).To(MatchError(gate.ErrNotFound))
			Expect(out.State).To(Equal(gate.Denied))
			Expect(out.Reason).To(Equal(gate.ReasonNotFound))
			Expect(out.Redirect).To(Equal(gate.DefaultRoute))
			Expect(out.RedirectAfter).To(Equal(gate.RedirectDelay))
			Expect(g.State()).To(Equal(gate.Denied))
			Expect(notices.Notices()).To(HaveLen(1))
		})
	})

	Context("when the workspace is private", func() {
		It("should deny even with a correct token and cached password", func() {
			ws := seed(model.Bool(false), model.String("x"))
			cache.values[ws.ID] = "x"
			token := sharetoken.Encode(ws.ID, "x", now)

			out, err := g.Evaluate(ctx, withToken(ws.ID, token))

			Expect(err).To(MatchError(gate.ErrNotPublic))
			Expect(out.State).To(Equal(gate.Denied))
			Expect(out.Reason).To(Equal(gate.ReasonNotPublic))
			n, _ := notices.Last()
			Expect(n.Kind).To(Equal(notify.Error))
			Expect(n.Duration).To(Equal(notify.DenialDuration))
		})

		It("should treat a null flag as private", func() {
			ws := seed(nil, nil)

			out, err := g.Evaluate(ctx, at(ws.ID))

			Expect(err).To(MatchError(gate.ErrNotPublic))
			Expect(out.State).To(Equal(gate.Denied))
		})
	})

	Context("when the store fails", func() {
		It("should deny with a load failure", func() {
			boom := errors.New("boom")
			mem.Fail(storetest.ListWorkspaces, boom)

			out, err := g.Evaluate(ctx, at(1))

			Expect(err).To(MatchError(gate.ErrLoadFailed))
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(out.State).To(Equal(gate.Denied))
			Expect(out.Reason).To(Equal(gate.ReasonLoadFailed))
		})
	})

	Context("when the workspace has no password", func() {
		It("should grant regardless of cache or token", func() {
			ws := seed(model.Bool(true), nil)
			cache.values[ws.ID] = "stale"

			out, err := g.Evaluate(ctx, withToken(ws.ID, "not-a-valid-token"))

			Expect(err).NotTo(HaveOccurred())
			Expect(out.State).To(Equal(gate.Granted))
			Expect(out.Workspace.ID).To(Equal(ws.ID))
		})

		It("should grant an empty password as no password", func() {
			ws := seed(model.Bool(true), model.String(""))

			out, _ := g.Evaluate(ctx, at(ws.ID))

			Expect(out.State).To(Equal(gate.Granted))
		})
	})

	Context("when the workspace is password protected", func() {
		var ws model.Workspace

		BeforeEach(func() {
			ws = seed(model.Bool(true), model.String("x"))
		})

		It("should grant with a matching cached password without prompting", func() {
			cache.values[ws.ID] = "x"

			out, err := g.Evaluate(ctx, at(ws.ID))

			Expect(err).NotTo(HaveOccurred())
			Expect(out.State).To(Equal(gate.Granted))
			Expect(notices.Notices()).To(BeEmpty())
		})

		It("should prompt when the cached password is stale", func() {
			cache.values[ws.ID] = "old"

			out, err := g.Evaluate(ctx, at(ws.ID))

			Expect(err).NotTo(HaveOccurred())
			Expect(out.State).To(Equal(gate.PasswordRequired))
		})

		It("should keep prompting after a wrong password and grant the right one", func() {
			out, _ := g.Evaluate(ctx, at(ws.ID))
			Expect(out.State).To(Equal(gate.PasswordRequired))

			out, err := g.VerifyPassword(ctx, "y")
			Expect(err).To(MatchError(gate.ErrWrongPassword))
			Expect(out.State).To(Equal(gate.PasswordRequired))
			Expect(g.State()).To(Equal(gate.PasswordRequired))
			n, _ := notices.Last()
			Expect(n.Kind).To(Equal(notify.Error))
			Expect(cache.values).NotTo(HaveKey(ws.ID))

			out, err = g.VerifyPassword(ctx, " x ")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.State).To(Equal(gate.Granted))
			Expect(cache.values[ws.ID]).To(Equal("x"))
			n, _ = notices.Last()
			Expect(n.Kind).To(Equal(notify.Success))
		})

		It("should compare case-sensitively", func() {
			_, _ = g.Evaluate(ctx, at(ws.ID))

			_, err := g.VerifyPassword(ctx, "X")

			Expect(err).To(MatchError(gate.ErrWrongPassword))
		})

		It("should refuse an empty submission", func() {
			_, _ = g.Evaluate(ctx, at(ws.ID))

			out, err := g.VerifyPassword(ctx, "   ")

			Expect(err).To(MatchError(gate.ErrEmptyPassword))
			Expect(out.State).To(Equal(gate.PasswordRequired))
		})

		It("should allow unlimited retries", func() {
			_, _ = g.Evaluate(ctx, at(ws.ID))
			for i := 0; i < 20; i++ {
				_, err := g.VerifyPassword(ctx, "nope")
				Expect(err).To(MatchError(gate.ErrWrongPassword))
			}

			out, err := g.VerifyPassword(ctx, "x")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.State).To(Equal(gate.Granted))
		})

		It("should move to Denied when the visitor leaves the prompt", func() {
			_, _ = g.Evaluate(ctx, at(ws.ID))

			out := g.Leave()

			Expect(out.State).To(Equal(gate.Denied))
			Expect(out.Reason).To(Equal(gate.ReasonLeft))
			_, err := g.VerifyPassword(ctx, "x")
			Expect(err).To(MatchError(gate.ErrNotAwaitingPassword))
		})

		Describe("share tokens", func() {
			It("should grant with a valid token, cache it and strip it", func() {
				token := sharetoken.Encode(ws.ID, "x", now.Add(-10*time.Minute))

				out, err := g.Evaluate(ctx, withToken(ws.ID, token))

				Expect(err).NotTo(HaveOccurred())
				Expect(out.State).To(Equal(gate.Granted))
				Expect(out.StripToken).To(BeTrue())
				Expect(out.Address.Token).To(BeEmpty())
				Expect(out.Address.String()).To(Equal(sharetoken.WorkspacePath(ws.ID)))
				Expect(*out.TokenStatus).To(Equal(sharetoken.Valid))
				Expect(cache.values[ws.ID]).To(Equal("x"))
			})

			It("should accept a token at exactly the 30 minute mark", func() {
				token := sharetoken.Encode(ws.ID, "x", now.Add(-sharetoken.TTL))

				out, _ := g.Evaluate(ctx, withToken(ws.ID, token))

				Expect(out.State).To(Equal(gate.Granted))
			})

			It("should fall through to the prompt for an expired token", func() {
				token := sharetoken.Encode(ws.ID, "x", now.Add(-sharetoken.TTL-time.Millisecond))

				out, err := g.Evaluate(ctx, withToken(ws.ID, token))

				Expect(err).NotTo(HaveOccurred())
				Expect(out.State).To(Equal(gate.PasswordRequired))
				Expect(out.StripToken).To(BeFalse())
				Expect(*out.TokenStatus).To(Equal(sharetoken.Expired))
				Expect(cache.values).NotTo(HaveKey(ws.ID))
				n, _ := notices.Last()
				Expect(n.Title).To(Equal("Link expired"))
			})

			It("should still grant an expired token when the cache matches", func() {
				cache.values[ws.ID] = "x"
				token := sharetoken.Encode(ws.ID, "x", now.Add(-time.Hour))

				out, _ := g.Evaluate(ctx, withToken(ws.ID, token))

				Expect(out.State).To(Equal(gate.Granted))
			})

			It("should fall through to the prompt for an invalid token", func() {
				out, err := g.Evaluate(ctx, withToken(ws.ID, "not-a-valid-token"))

				Expect(err).NotTo(HaveOccurred())
				Expect(out.State).To(Equal(gate.PasswordRequired))
				Expect(*out.TokenStatus).To(Equal(sharetoken.Invalid))
				n, _ := notices.Last()
				Expect(n.Title).To(Equal("Invalid link"))
			})

			It("should treat a token for another workspace as invalid", func() {
				token := sharetoken.Encode(ws.ID+100, "x", now)

				out, _ := g.Evaluate(ctx, withToken(ws.ID, token))

				Expect(out.State).To(Equal(gate.PasswordRequired))
				Expect(cache.values).NotTo(HaveKey(ws.ID))
			})

			It("should treat a token without a password as invalid", func() {
				token := sharetoken.Encode(ws.ID, "", now)

				out, _ := g.Evaluate(ctx, withToken(ws.ID, token))

				Expect(out.State).To(Equal(gate.PasswordRequired))
			})

			It("should grant even when caching the password fails", func() {
				cache.putErr = errors.New("disk full")
				token := sharetoken.Encode(ws.ID, "x", now)

				out, err := g.Evaluate(ctx, withToken(ws.ID, token))

				Expect(err).NotTo(HaveOccurred())
				Expect(out.State).To(Equal(gate.Granted))
			})
		})
	})

	Describe("Open", func() {
		It("should deny a non-numeric id without a store call", func() {
			out, err := g.Open(ctx, "/workspace/abc")

			Expect(err).To(MatchError(sharetoken.ErrInvalidWorkspaceID))
			Expect(out.State).To(Equal(gate.Denied))
			Expect(out.Reason).To(Equal(gate.ReasonInvalidID))
			Expect(out.RedirectAfter).To(Equal(gate.InvalidIDRedirectIn))
			Expect(mem.Calls()).To(BeEmpty())
		})

		It("should parse a full link", func() {
			ws := seed(model.Bool(true), nil)

			out, err := g.Open(ctx, sharetoken.PlainLink("https://toedo.app", ws.ID))

			Expect(err).NotTo(HaveOccurred())
			Expect(out.State).To(Equal(gate.Granted))
		})
	})

	It("should refuse to evaluate twice", func() {
		ws := seed(model.Bool(true), nil)
		_, _ = g.Evaluate(ctx, at(ws.ID))

		_, err := g.Evaluate(ctx, at(ws.ID))

		Expect(err).To(MatchError(gate.ErrAlreadyEvaluated))
	})
})
