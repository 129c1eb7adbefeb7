package server_test

import (
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/server"
)

var _ = Describe("Table API", func() {
	var (
		h     *harness
		alice server.AuthResponse
		bob   server.AuthResponse
	)

	BeforeEach(func() {
		h = newHarness()
		alice = h.register("alice@example.com")
		bob = h.register("bob@example.com")
	})

	createWorkspace := func(token, name string) model.Workspace {
		rec := h.do(request{method: http.MethodPost, path: "/rest/v1/workspace", token: token, body: map[string]any{"name": name}})
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		var ws model.Workspace
		decode(rec, &ws)
		return ws
	}

	patchWorkspace := func(token string, id int64, body map[string]any) int {
		return h.do(request{method: http.MethodPatch, path: fmt.Sprintf("/rest/v1/workspace?id=%d", id), token: token, body: body}).Code
	}

	listWorkspaces := func(token, query string) ([]model.Workspace, int) {
		rec := h.do(request{method: http.MethodGet, path: "/rest/v1/workspace" + query, token: token})
		if rec.Code != http.StatusOK {
			return nil, rec.Code
		}
		var rows []model.Workspace
		decode(rec, &rows)
		return rows, rec.Code
	}

	Describe("workspace", func() {
		It("should force inserts onto the caller", func() {
			ws := createWorkspace(alice.Token, "Groceries")

			Expect(ws.OwnerID).To(Equal(alice.UserID))
			Expect(ws.DisplayName()).To(Equal("Groceries"))
			Expect(ws.Public()).To(BeFalse())
		})

		It("should refuse inserts for another owner", func() {
			rec := h.do(request{method: http.MethodPost, path: "/rest/v1/workspace", token: alice.Token, body: map[string]any{"name": "x", "owner_id": bob.UserID}})

			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should require a session to insert", func() {
			rec := h.do(request{method: http.MethodPost, path: "/rest/v1/workspace", body: map[string]any{"name": "x"}})

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should list only the caller's workspaces", func() {
			createWorkspace(alice.Token, "a1")
			createWorkspace(bob.Token, "b1")
			createWorkspace(alice.Token, "a2")

			rows, code := listWorkspaces(alice.Token, "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].DisplayName()).To(Equal("a1"))
			Expect(rows[1].DisplayName()).To(Equal("a2"))

			rows, _ = listWorkspaces(alice.Token, "?owner_id="+alice.UserID)
			Expect(rows).To(HaveLen(2))
		})

		It("should return an empty array rather than null", func() {
			rec := h.do(request{method: http.MethodGet, path: "/rest/v1/workspace", token: alice.Token})

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(HavePrefix("[]"))
		})

		It("should refuse listing another owner's workspaces", func() {
			_, code := listWorkspaces(alice.Token, "?owner_id="+bob.UserID)

			Expect(code).To(Equal(http.StatusForbidden))
		})

		It("should require a session for owner listings", func() {
			_, code := listWorkspaces("", "")

			Expect(code).To(Equal(http.StatusUnauthorized))
		})

		It("should reject malformed filters", func() {
			_, code := listWorkspaces(alice.Token, "?id=abc")
			Expect(code).To(Equal(http.StatusBadRequest))

			_, code = listWorkspaces(alice.Token, "?owner_id=not-a-uuid")
			Expect(code).To(Equal(http.StatusBadRequest))
		})

		Describe("id lookups", func() {
			It("should return a public workspace to anyone", func() {
				ws := createWorkspace(alice.Token, "shared")
				Expect(patchWorkspace(alice.Token, ws.ID, map[string]any{"is_public": true, "password": "x"})).To(Equal(http.StatusNoContent))

				rows, code := listWorkspaces("", fmt.Sprintf("?id=%d", ws.ID))

				Expect(code).To(Equal(http.StatusOK))
				Expect(rows).To(HaveLen(1))
				Expect(rows[0].DisplayName()).To(Equal("shared"))
				Expect(*rows[0].Password).To(Equal("x"))
			})

			It("should strip a private workspace for strangers", func() {
				ws := createWorkspace(alice.Token, "secret plans")

				rows, code := listWorkspaces(bob.Token, fmt.Sprintf("?id=%d", ws.ID))

				Expect(code).To(Equal(http.StatusOK))
				Expect(rows).To(HaveLen(1))
				Expect(rows[0].ID).To(Equal(ws.ID))
				Expect(rows[0].Public()).To(BeFalse())
				Expect(rows[0].Name).To(BeNil())
				Expect(rows[0].OwnerID).To(BeEmpty())
			})

			It("should return the full private row to its owner", func() {
				ws := createWorkspace(alice.Token, "secret plans")

				rows, _ := listWorkspaces(alice.Token, fmt.Sprintf("?id=%d", ws.ID))

				Expect(rows[0].DisplayName()).To(Equal("secret plans"))
			})

			It("should return nothing for an unknown id", func() {
				rows, code := listWorkspaces("", "?id=999")

				Expect(code).To(Equal(http.StatusOK))
				Expect(rows).To(BeEmpty())
			})
		})

		Describe("writes", func() {
			var ws model.Workspace

			BeforeEach(func() {
				ws = createWorkspace(alice.Token, "mine")
			})

			It("should rename and clear the password", func() {
				Expect(patchWorkspace(alice.Token, ws.ID, map[string]any{"name": "renamed", "password": "pw"})).To(Equal(http.StatusNoContent))
				Expect(patchWorkspace(alice.Token, ws.ID, map[string]any{"clear_password": true})).To(Equal(http.StatusNoContent))

				stored, _ := h.backend.Memory.Workspace(ws.ID)
				Expect(stored.DisplayName()).To(Equal("renamed"))
				Expect(stored.Password).To(BeNil())
			})

			It("should leave another owner's workspace untouched", func() {
				Expect(patchWorkspace(bob.Token, ws.ID, map[string]any{"name": "hijacked"})).To(Equal(http.StatusNoContent))

				stored, _ := h.backend.Memory.Workspace(ws.ID)
				Expect(stored.DisplayName()).To(Equal("mine"))
			})

			It("should refuse an empty update", func() {
				Expect(patchWorkspace(alice.Token, ws.ID, map[string]any{})).To(Equal(http.StatusBadRequest))
			})

			It("should require an id filter", func() {
				rec := h.do(request{method: http.MethodDelete, path: "/rest/v1/workspace", token: alice.Token})

				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				_, ok := h.backend.Memory.Workspace(ws.ID)
				Expect(ok).To(BeTrue())
			})

			It("should delete the caller's workspace with its todos", func() {
				h.backend.SeedTodo(model.Todo{Text: "t", WorkspaceID: ws.ID})

				rec := h.do(request{method: http.MethodDelete, path: fmt.Sprintf("/rest/v1/workspace?id=%d", ws.ID), token: alice.Token})

				Expect(rec.Code).To(Equal(http.StatusNoContent))
				_, ok := h.backend.Memory.Workspace(ws.ID)
				Expect(ok).To(BeFalse())
				_, ok = h.backend.Todo(1)
				Expect(ok).To(BeFalse())
			})
		})
	})

	Describe("todo", func() {
		var ws model.Workspace

		BeforeEach(func() {
			ws = createWorkspace(alice.Token, "list")
		})

		todoPath := func(query string) string {
			return "/rest/v1/todo?workspace_id=" + fmt.Sprint(ws.ID) + query
		}

		insert := func(token, password string, body map[string]any) int {
			body["workspace_id"] = ws.ID
			return h.do(request{method: http.MethodPost, path: "/rest/v1/todo", token: token, password: password, body: body}).Code
		}

		It("should require a workspace predicate", func() {
			rec := h.do(request{method: http.MethodGet, path: "/rest/v1/todo", token: alice.Token})

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should let the owner add and list todos newest first", func() {
			Expect(insert(alice.Token, "", map[string]any{"text": " first ", "owner_id": alice.UserID})).To(Equal(http.StatusCreated))
			Expect(insert(alice.Token, "", map[string]any{"text": "second", "owner_id": alice.UserID})).To(Equal(http.StatusCreated))

			rec := h.do(request{method: http.MethodGet, path: todoPath(""), token: alice.Token})
			Expect(rec.Code).To(Equal(http.StatusOK))
			var rows []model.Todo
			decode(rec, &rows)
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].Text).To(Equal("second"))
			Expect(rows[1].Text).To(Equal("first"))
		})

		It("should reject blank text", func() {
			Expect(insert(alice.Token, "", map[string]any{"text": "   "})).To(Equal(http.StatusBadRequest))
		})

		It("should hide a private workspace's todos from others", func() {
			rec := h.do(request{method: http.MethodGet, path: todoPath(""), token: bob.Token})
			Expect(rec.Code).To(Equal(http.StatusForbidden))

			rec = h.do(request{method: http.MethodGet, path: todoPath("")})
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should 404 an unknown workspace", func() {
			rec := h.do(request{method: http.MethodGet, path: "/rest/v1/todo?workspace_id=999"})

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		Context("when the workspace is public", func() {
			BeforeEach(func() {
				Expect(patchWorkspace(alice.Token, ws.ID, map[string]any{"is_public": true})).To(Equal(http.StatusNoContent))
			})

			It("should let anonymous visitors add ownerless todos", func() {
				Expect(insert("", "", map[string]any{"text": "guest"})).To(Equal(http.StatusCreated))

				t, ok := h.backend.Todo(1)
				Expect(ok).To(BeTrue())
				Expect(t.OwnerID).To(BeNil())
			})

			It("should refuse visitors claiming another owner", func() {
				Expect(insert(bob.Token, "", map[string]any{"text": "x", "owner_id": alice.UserID})).To(Equal(http.StatusForbidden))
			})

			It("should scope toggles to the workspace", func() {
				other := createWorkspace(bob.Token, "bob's")
				foreign := h.backend.SeedTodo(model.Todo{Text: "bob's todo", WorkspaceID: other.ID})

				rec := h.do(request{method: http.MethodPatch, path: todoPath(fmt.Sprintf("&id=%d", foreign.ID)), body: map[string]any{"completed": true}})

				Expect(rec.Code).To(Equal(http.StatusNoContent))
				stored, _ := h.backend.Todo(foreign.ID)
				Expect(stored.Completed).To(BeFalse())
			})

			Context("and password protected", func() {
				BeforeEach(func() {
					Expect(patchWorkspace(alice.Token, ws.ID, map[string]any{"password": "x"})).To(Equal(http.StatusNoContent))
				})

				It("should require the password header", func() {
					rec := h.do(request{method: http.MethodGet, path: todoPath("")})
					Expect(rec.Code).To(Equal(http.StatusForbidden))

					rec = h.do(request{method: http.MethodGet, path: todoPath(""), password: "y"})
					Expect(rec.Code).To(Equal(http.StatusForbidden))

					rec = h.do(request{method: http.MethodGet, path: todoPath(""), password: "x"})
					Expect(rec.Code).To(Equal(http.StatusOK))
				})

				It("should not ask the owner for the password", func() {
					rec := h.do(request{method: http.MethodGet, path: todoPath(""), token: alice.Token})

					Expect(rec.Code).To(Equal(http.StatusOK))
				})

				It("should delete with the password", func() {
					t := h.backend.SeedTodo(model.Todo{Text: "t", WorkspaceID: ws.ID})

					rec := h.do(request{method: http.MethodDelete, path: todoPath(fmt.Sprintf("&id=%d", t.ID)), password: "x"})

					Expect(rec.Code).To(Equal(http.StatusNoContent))
					_, ok := h.backend.Todo(t.ID)
					Expect(ok).To(BeFalse())
				})
			})
		})
	})
})
