/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package classifier

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/publicsuffix"
)

// PhoneValidator checks whether a value is a dialable phone number. A false verdict
// may carry a diagnostic error explaining the rejection.
type PhoneValidator interface {
	IsValidPhone(value, defaultRegion string) (bool, error)
}

// EmailValidator checks whether a value is a plausible email address. A false verdict
// may carry a diagnostic error explaining the rejection.
type EmailValidator interface {
	IsValidEmail(value string) (bool, error)
}

// LibPhoneValidator validates numbers against libphonenumber metadata.
type LibPhoneValidator struct{}

var _ PhoneValidator = LibPhoneValidator{}

// IsValidPhone parses value using defaultRegion for national-format numbers.
func (LibPhoneValidator) IsValidPhone(value, defaultRegion string) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &ValidationRejection{Validator: "phone", Value: value, Reason: "parser panic", Err: fmt.Errorf("%v", r)}
		}
	}()

	num, parseErr := phonenumbers.Parse(value, strings.ToUpper(defaultRegion))
	if parseErr != nil {
		return false, &ValidationRejection{Validator: "phone", Value: value, Reason: "unparseable number", Err: parseErr}
	}
	if !phonenumbers.IsValidNumber(num) {
		region := phonenumbers.GetRegionCodeForNumber(num)
		if region == "" || region == "ZZ" {
			region = defaultRegion
		}
		return false, &ValidationRejection{Validator: "phone", Value: value, Reason: "not a valid number for region " + region}
	}
	return true, nil
}

// SyntaxEmailValidator checks RFC 5322 syntax and that the domain ends in a known public suffix.
type SyntaxEmailValidator struct {
	validate *validator.Validate
}

var _ EmailValidator = (*SyntaxEmailValidator)(nil)

// NewSyntaxEmailValidator returns a validator that is safe for concurrent use.
func NewSyntaxEmailValidator() *SyntaxEmailValidator {
	return &SyntaxEmailValidator{validate: validator.New()}
}

// IsValidEmail rejects malformed addresses and domains without a registrable public suffix.
func (v *SyntaxEmailValidator) IsValidEmail(value string) (bool, error) {
	if err := v.validate.Var(value, "required,email"); err != nil {
		return false, &ValidationRejection{Validator: "email", Value: value, Reason: "invalid address syntax", Err: err}
	}

	domain := value[strings.LastIndex(value, "@")+1:]
	if _, err := publicsuffix.EffectiveTLDPlusOne(domain); err != nil {
		return false, &ValidationRejection{Validator: "email", Value: value, Reason: "domain is not registrable", Err: err}
	}
	suffix, icann := publicsuffix.PublicSuffix(domain)
	if !icann && !strings.Contains(suffix, ".") {
		return false, &ValidationRejection{Validator: "email", Value: value, Reason: "unknown top-level domain " + suffix}
	}
	return true, nil
}
