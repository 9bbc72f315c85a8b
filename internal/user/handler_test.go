package user_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/organization"
	rbacDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/rbac"
	"github.com/frahmantamala/projecthub/internal/core/store/storetest"
	"github.com/frahmantamala/projecthub/internal/rbac"
	rbacPostgres "github.com/frahmantamala/projecthub/internal/rbac/postgres"
	"github.com/frahmantamala/projecthub/internal/transport/middleware"
	"github.com/frahmantamala/projecthub/internal/user"
	userPostgres "github.com/frahmantamala/projecthub/internal/user/postgres"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

var _ = Describe("User Handler", func() {
	var (
		db       *gorm.DB
		router   *chi.Mux
		callerID int64
		targetID int64
	)

	// asCaller stands in for token authentication.
	asCaller := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := internal.ContextWithPrincipal(r.Context(), &internal.Principal{UserID: callerID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	BeforeEach(func() {
		var err error
		db, err = storetest.Open()
		Expect(err).NotTo(HaveOccurred())

		position := organization.Position{Name: "Engineer"}
		Expect(db.Create(&position).Error).To(Succeed())
		callerID = seedUser(db, position.ID, "caller@x.com", true)
		targetID = seedUser(db, position.ID, "target@x.com", true)

		lg := logger.Discard()
		handler := user.NewHandler(user.NewService(userPostgres.NewUserRepository(db), lg))
		permissions := rbac.NewService(rbacPostgres.NewRepository(db), nil, lg)

		router = chi.NewRouter()
		router.Group(func(r chi.Router) {
			r.Use(asCaller)
			r.Get("/users", handler.ListUsers)
			r.Get("/users/{id}", handler.GetUser)
			r.With(middleware.RequirePermission(permissions, rbac.PermManageUsers)).
				Patch("/users/{id}/active", handler.SetActive)
		})
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	grantManageUsers := func() {
		role := rbacDatamodel.Role{Name: rbac.RoleAdmin}
		perm := rbacDatamodel.Permission{Name: rbac.PermManageUsers}
		Expect(db.Create(&role).Error).To(Succeed())
		Expect(db.Create(&perm).Error).To(Succeed())
		Expect(db.Create(&rbacDatamodel.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error).To(Succeed())
		Expect(db.Create(&rbacDatamodel.UserRole{UserID: callerID, RoleID: role.ID}).Error).To(Succeed())
	}

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("should return a user by id", func() {
		rec := serve(http.MethodGet, "/users/"+strconv.FormatInt(targetID, 10), "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"email":"target@x.com"`))
		Expect(rec.Body.String()).NotTo(ContainSubstring("password"))
	})

	It("should reject a malformed id", func() {
		rec := serve(http.MethodGet, "/users/abc", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 404 for an unknown id", func() {
		rec := serve(http.MethodGet, "/users/9999", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring("USER_NOT_FOUND"))
	})

	It("should list users", func() {
		rec := serve(http.MethodGet, "/users?limit=1", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"total":2`))
		Expect(rec.Body.String()).To(ContainSubstring(`"limit":1`))
	})

	Describe("PATCH /users/{id}/active", func() {
		path := func() string { return "/users/" + strconv.FormatInt(targetID, 10) + "/active" }

		It("should forbid callers without manage_users", func() {
			rec := serve(http.MethodPatch, path(), `{"is_active":false}`)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(rec.Body.String()).To(ContainSubstring("INSUFFICIENT_PERMISSIONS"))
		})

		It("should deactivate the user when permitted", func() {
			grantManageUsers()

			rec := serve(http.MethodPatch, path(), `{"is_active":false}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"is_active":false`))
		})

		It("should require the flag", func() {
			grantManageUsers()

			rec := serve(http.MethodPatch, path(), `{}`)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("body.is_active"))
		})
	})
})
