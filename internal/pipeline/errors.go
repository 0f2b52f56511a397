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
package pipeline

import (
	"fmt"
)

// ErrReadTable represents failures reading a source table
type ErrReadTable struct {
	Msg string
	Err error
}

// ErrWriteTable represents failures writing a relabeled table
type ErrWriteTable struct {
	Msg string
	Err error
}

// ErrDatabaseConnection represents errors that occur during database connection attempts
type ErrDatabaseConnection struct {
	Msg string
	Err error
}

// ErrQueryExecution represents errors that occur during query execution
type ErrQueryExecution struct {
	Msg string
	Err error
}

// ErrInvalidInput represents errors related to invalid input parameters
type ErrInvalidInput struct {
	Msg string
	Err error
}

// ErrTimeout represents timeout errors during operations
type ErrTimeout struct {
	Msg string
	Err error
}

// ErrCancelled represents errors when an operation is cancelled
type ErrCancelled struct {
	Msg string
	Err error
}

func format(kind, msg string, err error) string {
	if err == nil {
		return fmt.Sprintf("%s: %s", kind, msg)
	}
	return fmt.Sprintf("%s: %s: %v", kind, msg, err)
}

func (e *ErrReadTable) Error() string {
	return format("read table error", e.Msg, e.Err)
}

func (e *ErrReadTable) Unwrap() error {
	return e.Err
}

func (e *ErrWriteTable) Error() string {
	return format("write table error", e.Msg, e.Err)
}

func (e *ErrWriteTable) Unwrap() error {
	return e.Err
}

func (e *ErrDatabaseConnection) Error() string {
	return format("database connection error", e.Msg, e.Err)
}

func (e *ErrDatabaseConnection) Unwrap() error {
	return e.Err
}

func (e *ErrQueryExecution) Error() string {
	return format("query execution error", e.Msg, e.Err)
}

func (e *ErrQueryExecution) Unwrap() error {
	return e.Err
}

func (e *ErrInvalidInput) Error() string {
	return format("invalid input error", e.Msg, e.Err)
}

func (e *ErrInvalidInput) Unwrap() error {
	return e.Err
}

func (e *ErrTimeout) Error() string {
	return format("timeout error", e.Msg, e.Err)
}

func (e *ErrTimeout) Unwrap() error {
	return e.Err
}

func (e *ErrCancelled) Error() string {
	return format("operation cancelled", e.Msg, e.Err)
}

func (e *ErrCancelled) Unwrap() error {
	return e.Err
}
