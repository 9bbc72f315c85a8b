package auth

import (
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("BcryptHasher", func() {
	var hasher *BcryptHasher

	ginkgo.BeforeEach(func() {
		hasher = NewBcryptHasher(bcrypt.MinCost)
	})

	ginkgo.It("should verify the original password", func() {
		hash, err := hasher.Hash("secret1")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		ok, err := hasher.Verify("secret1", hash)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue())
	})

	ginkgo.It("should salt every hash", func() {
		first, err := hasher.Hash("secret1")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		second, err := hasher.Hash("secret1")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(first).ToNot(gomega.Equal(second))
		gomega.Expect(first).ToNot(gomega.ContainSubstring("secret1"))
	})

	ginkgo.It("should report a mismatch without an error", func() {
		hash, err := hasher.Hash("secret1")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		ok, err := hasher.Verify("secret2", hash)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should surface a malformed stored hash as an error", func() {
		ok, err := hasher.Verify("secret1", "not-a-bcrypt-hash")
		gomega.Expect(err).To(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should reject passwords longer than 72 bytes", func() {
		_, err := hasher.Hash(strings.Repeat("a", 73))
		gomega.Expect(err).To(gomega.MatchError(ErrPasswordTooLong))
	})

	ginkgo.It("should not match input past 72 bytes even when the prefix matches", func() {
		stored := strings.Repeat("p", MaxPasswordBytes)
		hash, err := hasher.Hash(stored)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		ok, err := hasher.Verify(stored+"-not-the-password", hash)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())

		ok, err = hasher.Verify(stored, hash)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue())
	})

	ginkgo.It("should fall back to the default cost when out of range", func() {
		gomega.Expect(NewBcryptHasher(0).cost).To(gomega.Equal(DefaultBCryptCost))
		gomega.Expect(NewBcryptHasher(99).cost).To(gomega.Equal(DefaultBCryptCost))
	})
})
