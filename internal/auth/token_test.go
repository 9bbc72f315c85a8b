package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("JWTTokenService", func() {
	var (
		now     time.Time
		clock   func() time.Time
		service *JWTTokenService
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		clock = func() time.Time { return now }
		service = NewJWTTokenService("test-secret", 24*time.Hour).WithClock(clock)
	})

	ginkgo.It("should round-trip the claims", func() {
		token, err := service.Issue(Claims{UserID: 7, Email: "a@x.com", Roles: []string{"admin", "member"}})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		claims, err := service.Verify(token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(claims.UserID).To(gomega.Equal(int64(7)))
		gomega.Expect(claims.Email).To(gomega.Equal("a@x.com"))
		gomega.Expect(claims.Roles).To(gomega.Equal([]string{"admin", "member"}))
		gomega.Expect(claims.Subject).To(gomega.Equal("7"))
		gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("==", now.Add(24*time.Hour)))
	})

	ginkgo.It("should accept the token until just before a day has passed", func() {
		token, err := service.Issue(Claims{UserID: 1, Email: "a@x.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		now = now.Add(24*time.Hour - time.Second)
		_, err = service.Verify(token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.It("should fail with an expiry error once the clock passes one day", func() {
		token, err := service.Issue(Claims{UserID: 1, Email: "a@x.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		now = now.Add(24*time.Hour + time.Second)
		_, err = service.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
	})

	ginkgo.It("should reject a token signed with another secret", func() {
		other := NewJWTTokenService("other-secret", time.Hour).WithClock(clock)
		token, err := other.Issue(Claims{UserID: 1})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = service.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("should reject a tampered payload", func() {
		token, err := service.Issue(Claims{UserID: 1, Email: "a@x.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		forged, err := NewJWTTokenService("test-secret", time.Hour).WithClock(clock).
			Issue(Claims{UserID: 2, Email: "b@x.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		parts := strings.Split(token, ".")
		forgedParts := strings.Split(forged, ".")
		tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

		_, err = service.Verify(tampered)
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("should reject malformed input", func() {
		_, err := service.Verify("not.a.token")
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("should reject the none algorithm", func() {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UserID: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = service.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("should reject a token without an expiry", func() {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 1})
		token, err := raw.SignedString([]byte("test-secret"))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = service.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.Context("when the secret is missing", func() {
		ginkgo.It("should fail at first use", func() {
			unconfigured := NewJWTTokenService("", time.Hour)

			_, err := unconfigured.Issue(Claims{UserID: 1})
			gomega.Expect(err).To(gomega.MatchError(ErrMissingSecret))

			_, err = unconfigured.Verify("anything")
			gomega.Expect(err).To(gomega.MatchError(ErrMissingSecret))
		})
	})
})
