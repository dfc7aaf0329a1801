/*
 * MIT License
 *
 * Copyright (c) 2022-2025  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/multierr"
)

type validationTestSuite struct {
	suite.Suite
}

func TestValidation(t *testing.T) {
	suite.Run(t, new(validationTestSuite))
}

func (s *validationTestSuite) TestChain() {
	s.Run("with fail fast", func() {
		err := New(FailFast()).
			AddAssertion(false, "first").
			AddAssertion(false, "second").
			Validate()
		s.Require().EqualError(err, "first")
	})
	s.Run("with all errors", func() {
		err := New(AllErrors()).
			AddAssertion(false, "first").
			AddAssertion(true, "ignored").
			AddValidator(NewEmptyStringValidator("name", " ")).
			Validate()
		s.Require().Error(err)
		s.Assert().Len(multierr.Errors(err), 2)
	})
	s.Run("with no violation", func() {
		s.Assert().NoError(New().AddAssertion(true, "").Validate())
	})
}

func (s *validationTestSuite) TestIDValidator() {
	errInvalid := errors.New("invalid id")
	s.Assert().NoError(NewIDValidator("node-1", errInvalid).Validate())
	s.Assert().NoError(NewIDValidator("reminder_local", errInvalid).Validate())
	s.Assert().ErrorIs(NewIDValidator("-node", errInvalid).Validate(), errInvalid)
	s.Assert().ErrorIs(NewIDValidator("node 1", errInvalid).Validate(), errInvalid)
	s.Assert().ErrorIs(NewIDValidator("", errInvalid).Validate(), errInvalid)
}

func (s *validationTestSuite) TestPositiveDurationValidator() {
	errInvalid := errors.New("invalid timeout")
	s.Assert().NoError(NewPositiveDurationValidator("stopTimeout", time.Second, errInvalid).Validate())
	err := NewPositiveDurationValidator("stopTimeout", 0, errInvalid).Validate()
	s.Assert().ErrorIs(err, errInvalid)
	s.Assert().Contains(err.Error(), "stopTimeout=0s")
}

func (s *validationTestSuite) TestTCPAddressValidator() {
	s.Assert().NoError(NewTCPAddressValidator("127.0.0.1:3222").Validate())
	s.Assert().NoError(NewTCPAddressValidator("127.0.0.1:0").Validate())
	s.Assert().Error(NewTCPAddressValidator("127.0.0.1:-1").Validate())
	s.Assert().Error(NewTCPAddressValidator("127.0.0.1:655387").Validate())
	s.Assert().Error(NewTCPAddressValidator(":3222").Validate())
	s.Assert().Error(NewTCPAddressValidator("localhost").Validate())
}
