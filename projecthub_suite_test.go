package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/projecthub/internal/auth"
	authPostgres "github.com/frahmantamala/projecthub/internal/auth/postgres"
	"github.com/frahmantamala/projecthub/internal/core/store/storetest"
	"github.com/frahmantamala/projecthub/internal/organization"
	orgPostgres "github.com/frahmantamala/projecthub/internal/organization/postgres"
	"github.com/frahmantamala/projecthub/internal/rbac"
	rbacPostgres "github.com/frahmantamala/projecthub/internal/rbac/postgres"
	"github.com/frahmantamala/projecthub/internal/seed"
	"github.com/frahmantamala/projecthub/internal/transport/rest"
	"github.com/frahmantamala/projecthub/internal/user"
	userPostgres "github.com/frahmantamala/projecthub/internal/user/postgres"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

func TestProjectHub(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ProjectHub Suite")
}

type response struct {
	Code    int
	Cookies []*http.Cookie
	Body    struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Code    string          `json:"code"`
	}
	Raw string
}

var _ = Describe("ProjectHub API", func() {
	var (
		db      *gorm.DB
		router  *chi.Mux
		adminID int64
	)

	BeforeEach(func() {
		var err error
		db, err = storetest.Open()
		Expect(err).NotTo(HaveOccurred())

		lg := logger.Discard()
		adminID, err = seed.Run(context.Background(), db, seed.Options{
			AdminName:     "Administrator",
			AdminEmail:    "admin@projecthub.local",
			AdminPassword: "password",
			BCryptCost:    bcrypt.MinCost,
		}, lg)
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		authService := auth.NewService(
			authPostgres.NewRepository(db),
			auth.NewBcryptHasher(bcrypt.MinCost),
			auth.NewJWTTokenService("e2e-secret", 24*time.Hour),
			nil,
			lg,
		)
		rbacService := rbac.NewService(rbacPostgres.NewRepository(db), nil, lg)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Dependencies{
			DB:            sqlx.NewDb(sqlDB, "sqlite3"),
			Dialect:       "sqlite",
			Logger:        lg,
			Authenticator: authService,
			Permissions:   rbacService,
			AuthHandler:   auth.NewHandler(authService, auth.CookieConfig{TTL: 24 * time.Hour}),
			UserHandler:   user.NewHandler(user.NewService(userPostgres.NewUserRepository(db), lg)),
			RBACHandler:   rbac.NewHandler(rbacService),
			OrganizationHandler: organization.NewHandler(
				organization.NewService(orgPostgres.NewRepository(db), lg)),
		})
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	call := func(method, path string, body any, token string) response {
		var reader io.Reader = http.NoBody
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		res := response{Code: rec.Code, Cookies: rec.Result().Cookies(), Raw: rec.Body.String()}
		if rec.Body.Len() > 0 {
			_ = json.Unmarshal(rec.Body.Bytes(), &res.Body)
		}
		return res
	}

	login := func(email, password string) string {
		res := call(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, "")
		Expect(res.Code).To(Equal(http.StatusOK), res.Raw)
		for _, c := range res.Cookies {
			if c.Name == auth.CookieName {
				return c.Value
			}
		}
		Fail("login did not set the token cookie")
		return ""
	}

	positionID := func(name string) int64 {
		var id int64
		Expect(db.Table("positions").Where("name = ?", name).Pluck("id", &id).Error).To(Succeed())
		return id
	}

	It("should register, log in and read the caller back", func() {
		res := call(http.MethodPost, "/api/v1/auth/register", map[string]any{
			"name":        "User A",
			"email":       "a@x.com",
			"password":    "secret1",
			"position_id": positionID("Software Engineer"),
		}, "")
		Expect(res.Code).To(Equal(http.StatusCreated), res.Raw)

		var registered user.User
		Expect(json.Unmarshal(res.Body.Data, &registered)).To(Succeed())

		loginRes := call(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "a@x.com", "password": "secret1"}, "")
		Expect(loginRes.Code).To(Equal(http.StatusOK))
		Expect(loginRes.Raw).NotTo(ContainSubstring("password_hash"))

		var token string
		for _, c := range loginRes.Cookies {
			if c.Name == auth.CookieName {
				token = c.Value
				Expect(c.HttpOnly).To(BeTrue())
				Expect(c.MaxAge).To(Equal(86400))
			}
		}
		Expect(token).NotTo(BeEmpty())

		me := call(http.MethodGet, "/api/v1/auth/me", nil, token)
		Expect(me.Code).To(Equal(http.StatusOK))

		var caller user.User
		Expect(json.Unmarshal(me.Body.Data, &caller)).To(Succeed())
		Expect(caller.ID).To(Equal(registered.ID))
		Expect(caller.Email).To(Equal("a@x.com"))
		Expect(me.Raw).NotTo(ContainSubstring("password"))
	})

	It("should keep the RBAC routes behind manage_roles", func() {
		res := call(http.MethodPost, "/api/v1/auth/register", map[string]any{
			"name": "User A", "email": "a@x.com", "password": "secret1",
			"position_id": positionID("Software Engineer"),
		}, "")
		Expect(res.Code).To(Equal(http.StatusCreated))
		var member user.User
		Expect(json.Unmarshal(res.Body.Data, &member)).To(Succeed())

		memberToken := login("a@x.com", "secret1")
		Expect(call(http.MethodGet, "/api/v1/roles", nil, memberToken).Code).To(Equal(http.StatusForbidden))
		Expect(call(http.MethodGet, "/api/v1/roles", nil, "").Code).To(Equal(http.StatusUnauthorized))

		adminToken := login("admin@projecthub.local", "password")
		roles := call(http.MethodGet, "/api/v1/roles", nil, adminToken)
		Expect(roles.Code).To(Equal(http.StatusOK))
		Expect(roles.Raw).To(ContainSubstring(`"total":3`))

		created := call(http.MethodPost, "/api/v1/roles", map[string]string{"name": "auditor"}, adminToken)
		Expect(created.Code).To(Equal(http.StatusCreated), created.Raw)
		var auditor rbac.Role
		Expect(json.Unmarshal(created.Body.Data, &auditor)).To(Succeed())

		assign := map[string]int64{"user_id": member.ID, "role_id": auditor.ID}
		Expect(call(http.MethodPost, "/api/v1/user-roles", assign, adminToken).Code).To(Equal(http.StatusCreated))

		dup := call(http.MethodPost, "/api/v1/user-roles", assign, adminToken)
		Expect(dup.Code).To(Equal(http.StatusConflict))
		Expect(dup.Body.Code).To(Equal("DUPLICATE_ASSIGNMENT"))

		listed := call(http.MethodGet, "/api/v1/user-roles?user_id="+strconv.FormatInt(member.ID, 10), nil, adminToken)
		Expect(listed.Code).To(Equal(http.StatusOK))
		Expect(listed.Raw).To(ContainSubstring(`"total":1`))

		me := call(http.MethodGet, "/api/v1/auth/me", nil, memberToken)
		Expect(me.Raw).To(ContainSubstring(`"roles":["auditor"]`))
	})

	It("should let the administrator deactivate a user, blocking login", func() {
		res := call(http.MethodPost, "/api/v1/auth/register", map[string]any{
			"name": "User A", "email": "a@x.com", "password": "secret1",
			"position_id": positionID("Designer"),
		}, "")
		Expect(res.Code).To(Equal(http.StatusCreated))
		var member user.User
		Expect(json.Unmarshal(res.Body.Data, &member)).To(Succeed())

		adminToken := login("admin@projecthub.local", "password")
		patch := call(http.MethodPatch, "/api/v1/users/"+strconv.FormatInt(member.ID, 10)+"/active",
			map[string]bool{"is_active": false}, adminToken)
		Expect(patch.Code).To(Equal(http.StatusOK), patch.Raw)

		blocked := call(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "a@x.com", "password": "secret1"}, "")
		Expect(blocked.Code).To(Equal(http.StatusForbidden))
		Expect(blocked.Body.Code).To(Equal("USER_INACTIVE"))

		admin := call(http.MethodGet, "/api/v1/users/"+strconv.FormatInt(adminID, 10), nil, adminToken)
		Expect(admin.Code).To(Equal(http.StatusOK))
		Expect(admin.Raw).To(ContainSubstring(`"roles":["admin"]`))
	})

	It("should let members read but not change the organization", func() {
		res := call(http.MethodPost, "/api/v1/auth/register", map[string]any{
			"name": "User A", "email": "a@x.com", "password": "secret1",
			"position_id": positionID("Designer"),
		}, "")
		Expect(res.Code).To(Equal(http.StatusCreated))
		memberToken := login("a@x.com", "secret1")

		Expect(call(http.MethodGet, "/api/v1/positions", nil, memberToken).Code).To(Equal(http.StatusOK))
		Expect(call(http.MethodPost, "/api/v1/positions", map[string]string{"name": "Intern"}, memberToken).Code).
			To(Equal(http.StatusForbidden))

		adminToken := login("admin@projecthub.local", "password")
		Expect(call(http.MethodPost, "/api/v1/positions", map[string]string{"name": "Intern"}, adminToken).Code).
			To(Equal(http.StatusCreated))

		inUse := call(http.MethodDelete, "/api/v1/positions/"+strconv.FormatInt(positionID("Designer"), 10), nil, adminToken)
		Expect(inUse.Code).To(Equal(http.StatusConflict))
		Expect(inUse.Body.Code).To(Equal("RESOURCE_IN_USE"))
	})

	It("should serve probes, the API document and enveloped 404s and 405s", func() {
		Expect(call(http.MethodGet, "/api/v1/ping", nil, "").Code).To(Equal(http.StatusOK))

		health := call(http.MethodGet, "/api/v1/health", nil, "")
		Expect(health.Code).To(Equal(http.StatusOK))
		Expect(health.Raw).To(ContainSubstring(`"healthy"`))

		doc := call(http.MethodGet, "/openapi.yml", nil, "")
		Expect(doc.Code).To(Equal(http.StatusOK))
		Expect(doc.Raw).To(ContainSubstring("openapi: 3.0.3"))

		missing := call(http.MethodGet, "/api/v1/nope", nil, "")
		Expect(missing.Code).To(Equal(http.StatusNotFound))
		Expect(missing.Body.Success).To(BeFalse())

		wrongMethod := call(http.MethodPut, "/api/v1/auth/login", nil, "")
		Expect(wrongMethod.Code).To(Equal(http.StatusMethodNotAllowed))
		Expect(wrongMethod.Body.Success).To(BeFalse())
		Expect(wrongMethod.Body.Message).To(Equal("Method not allowed"))
	})
})
