package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/projecthub/internal/auth"
	authPostgres "github.com/frahmantamala/projecthub/internal/auth/postgres"
	orgDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"github.com/frahmantamala/projecthub/internal/core/store/storetest"
	"github.com/frahmantamala/projecthub/internal/transport/middleware"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Errors  map[string]string `json:"errors"`
}

var _ = Describe("Auth Handler Integration", func() {
	var (
		db       *gorm.DB
		router   *chi.Mux
		position orgDatamodel.Position
		secure   bool
	)

	build := func() {
		lg := logger.Discard()
		service := auth.NewService(
			authPostgres.NewRepository(db),
			auth.NewBcryptHasher(bcrypt.MinCost),
			auth.NewJWTTokenService("test-secret", 24*time.Hour),
			nil,
			lg,
		)
		handler := auth.NewHandler(service, auth.CookieConfig{Secure: secure, TTL: 24 * time.Hour})

		router = chi.NewRouter()
		router.Post("/auth/register", handler.Register)
		router.Post("/auth/login", handler.Login)
		router.Post("/auth/logout", handler.Logout)
		router.With(middleware.Authenticate(service, auth.CookieName)).Get("/auth/me", handler.Me)
	}

	BeforeEach(func() {
		var err error
		db, err = storetest.Open()
		Expect(err).NotTo(HaveOccurred())

		position = orgDatamodel.Position{Name: "Engineer"}
		Expect(db.Create(&position).Error).To(Succeed())

		secure = false
		build()
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	do := func(method, path string, body any, mutate ...func(*http.Request)) (*httptest.ResponseRecorder, envelope) {
		var reader io.Reader = http.NoBody
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		for _, m := range mutate {
			m(req)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var env envelope
		if rec.Body.Len() > 0 {
			Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(Succeed())
		}
		return rec, env
	}

	register := func(email, password string) *httptest.ResponseRecorder {
		rec, _ := do(http.MethodPost, "/auth/register", map[string]any{
			"name":        "User A",
			"email":       email,
			"password":    password,
			"position_id": position.ID,
		})
		return rec
	}

	tokenCookie := func(rec *httptest.ResponseRecorder) *http.Cookie {
		for _, c := range rec.Result().Cookies() {
			if c.Name == auth.CookieName {
				return c
			}
		}
		return nil
	}

	countUsers := func(email string) int64 {
		var n int64
		Expect(db.Model(&userDatamodel.User{}).Where("email = ?", email).Count(&n).Error).To(Succeed())
		return n
	}

	Describe("POST /auth/register", func() {
		It("should return 201 with the safe view", func() {
			rec, env := do(http.MethodPost, "/auth/register", map[string]any{
				"name":        "User A",
				"email":       "a@x.com",
				"password":    "secret1",
				"hiring_date": "2024-01-15",
				"position_id": position.ID,
			})

			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(env.Success).To(BeTrue())
			Expect(string(env.Data)).To(ContainSubstring(`"email":"a@x.com"`))
			Expect(string(env.Data)).To(ContainSubstring(`"hiring_date":"2024-01-15T00:00:00Z"`))
			Expect(string(env.Data)).NotTo(ContainSubstring("password"))
		})

		It("should return 409 for a duplicate email and keep one row", func() {
			Expect(register("a@x.com", "secret1").Code).To(Equal(http.StatusCreated))

			rec, env := do(http.MethodPost, "/auth/register", map[string]any{
				"name": "Other", "email": "a@x.com", "password": "secret2", "position_id": position.ID,
			})

			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(env.Success).To(BeFalse())
			Expect(env.Code).To(Equal("DUPLICATE_EMAIL"))
			Expect(countUsers("a@x.com")).To(Equal(int64(1)))
		})

		It("should return 404 for a missing position and create nothing", func() {
			rec, env := do(http.MethodPost, "/auth/register", map[string]any{
				"name": "User A", "email": "a@x.com", "password": "secret1", "position_id": 999,
			})

			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(env.Code).To(Equal("POSITION_NOT_FOUND"))
			Expect(countUsers("a@x.com")).To(Equal(int64(0)))

			var joins int64
			Expect(db.Table("user_roles").Count(&joins).Error).To(Succeed())
			Expect(joins).To(BeZero())
		})

		It("should return 400 with field details", func() {
			rec, env := do(http.MethodPost, "/auth/register", map[string]any{"email": "nope"})

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Errors).To(HaveKey("body.email"))
			Expect(env.Errors).To(HaveKey("body.password"))
		})

		It("should return 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /auth/login", func() {
		BeforeEach(func() {
			Expect(register("a@x.com", "secret1").Code).To(Equal(http.StatusCreated))
		})

		It("should set the token cookie with strict flags", func() {
			rec, env := do(http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "secret1"})

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Success).To(BeTrue())

			c := tokenCookie(rec)
			Expect(c).NotTo(BeNil())
			Expect(c.Value).NotTo(BeEmpty())
			Expect(c.HttpOnly).To(BeTrue())
			Expect(c.Secure).To(BeFalse())
			Expect(c.SameSite).To(Equal(http.SameSiteStrictMode))
			Expect(c.Path).To(Equal("/"))
			Expect(c.MaxAge).To(Equal(86400))

			var data struct {
				Token string          `json:"token"`
				User  json.RawMessage `json:"user"`
			}
			Expect(json.Unmarshal(env.Data, &data)).To(Succeed())
			Expect(data.Token).To(Equal(c.Value))
			Expect(string(data.User)).NotTo(ContainSubstring("password"))
		})

		It("should mark the cookie secure in production", func() {
			secure = true
			build()

			rec, _ := do(http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "secret1"})

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(tokenCookie(rec).Secure).To(BeTrue())
		})

		It("should answer a wrong password and an unknown email identically", func() {
			wrong, wrongEnv := do(http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "bad"})
			unknown, unknownEnv := do(http.MethodPost, "/auth/login", map[string]string{"email": "b@x.com", "password": "secret1"})

			Expect(wrong.Code).To(Equal(http.StatusUnauthorized))
			Expect(unknown.Code).To(Equal(http.StatusUnauthorized))
			Expect(wrong.Body.String()).To(Equal(unknown.Body.String()))
			Expect(wrongEnv.Message).To(Equal("Invalid email or password"))
			Expect(unknownEnv.Message).To(Equal(wrongEnv.Message))
			Expect(tokenCookie(wrong)).To(BeNil())
		})

		It("should return 403 for an inactive account with the right password", func() {
			Expect(db.Model(&userDatamodel.User{}).Where("email = ?", "a@x.com").Update("is_active", false).Error).To(Succeed())

			rec, env := do(http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "secret1"})

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(env.Code).To(Equal("USER_INACTIVE"))
			Expect(tokenCookie(rec)).To(BeNil())
		})
	})

	Describe("POST /auth/logout", func() {
		It("should expire the cookie", func() {
			rec, env := do(http.MethodPost, "/auth/logout", nil)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Success).To(BeTrue())
			Expect(env.Message).NotTo(BeEmpty())
			Expect(rec.Header().Get("Set-Cookie")).To(ContainSubstring("token=;"))
			Expect(rec.Header().Get("Set-Cookie")).To(ContainSubstring("Max-Age=0"))
			Expect(rec.Header().Get("Set-Cookie")).To(ContainSubstring("HttpOnly"))
		})
	})

	Describe("GET /auth/me", func() {
		var token string

		BeforeEach(func() {
			Expect(register("a@x.com", "secret1").Code).To(Equal(http.StatusCreated))
			rec, _ := do(http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "secret1"})
			token = tokenCookie(rec).Value
		})

		It("should return 401 without a token", func() {
			rec, env := do(http.MethodGet, "/auth/me", nil)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(env.Success).To(BeFalse())
		})

		It("should return 401 for a forged token", func() {
			rec, env := do(http.MethodGet, "/auth/me", nil, func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token+"x")
			})

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(env.Code).To(Equal("INVALID_TOKEN"))
		})

		It("should accept the cookie and never include the hash", func() {
			rec, env := do(http.MethodGet, "/auth/me", nil, func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
			})

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(string(env.Data)).To(ContainSubstring(`"email":"a@x.com"`))
			Expect(string(env.Data)).NotTo(ContainSubstring("password_hash"))
			Expect(string(env.Data)).NotTo(ContainSubstring(`"password"`))
		})

		It("should accept a bearer token", func() {
			rec, _ := do(http.MethodGet, "/auth/me", nil, func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token)
			})

			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("should return 404 once the user is gone", func() {
			Expect(db.Where("email = ?", "a@x.com").Delete(&userDatamodel.User{}).Error).To(Succeed())

			rec, env := do(http.MethodGet, "/auth/me", nil, func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
			})

			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(env.Code).To(Equal("USER_NOT_FOUND"))
		})
	})
})
