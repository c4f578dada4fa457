/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package domain_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/feedlane/newsfeed/internal/domain"
	typederrors "github.com/feedlane/newsfeed/internal/typed-errors"
)

var _ = Describe("NewsfeedIDSpecification", func() {
	var specification *domain.NewsfeedIDSpecification

	BeforeEach(func() {
		specification = domain.NewNewsfeedIDSpecification(16)
	})

	It("accepts a short text id", func() {
		Expect(specification.Check("123")).To(Succeed())
	})

	It("accepts an id of exactly the maximum length", func() {
		Expect(specification.Check(strings.Repeat("x", 16))).To(Succeed())
	})

	It("rejects an id longer than the maximum", func() {
		err := specification.Check(strings.Repeat("x", 17))
		Expect(typederrors.IsNewsfeedIDTooLongError(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("too long"))
	})

	It("rejects an id that is not text", func() {
		err := specification.Check(string([]byte{0xff, 0xfe}))
		Expect(typederrors.IsInvalidNewsfeedIDError(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("type is invalid"))
	})
})
