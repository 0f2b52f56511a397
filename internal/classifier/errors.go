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
)

// ValidationRejection is the diagnostic a validator returns alongside a false verdict.
// It is logged by the scorer and never returned from Classify.
type ValidationRejection struct {
	Validator string // "phone" or "email"
	Value     string
	Reason    string
	Err       error
}

func (e *ValidationRejection) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s rejected %q: %s: %v", e.Validator, e.Value, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s rejected %q: %s", e.Validator, e.Value, e.Reason)
}

func (e *ValidationRejection) Unwrap() error {
	return e.Err
}
