// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import "fmt"

// ErrKind distinguishes business rejections (which surface as 204 No
// Content to the HTTP caller) from internal failures (which surface as 500s
// and get logged at error level).
type ErrKind int

const (
	// ErrReject covers an unknown host: the request is well-formed as HTTP
	// but the gateway declines to forward it. Missing required headers and
	// non-UTF-8 bodies are reported by NewRequest with their own error
	// types, which the HTTP layer also answers with 204.
	ErrReject ErrKind = iota
	// ErrInternal covers egress-send failures: something the caller cannot
	// fix by retrying differently.
	ErrInternal
)

// PushError is the error type returned by Store.Push and the HTTP layer's
// egress handoff.
type PushError struct {
	Kind ErrKind
	Msg  string
}

func (e *PushError) Error() string {
	return e.Msg
}

func rejectf(format string, args ...any) *PushError {
	return &PushError{Kind: ErrReject, Msg: fmt.Sprintf(format, args...)}
}

// InternalError constructs a PushError of kind ErrInternal. Exported so
// collaborators outside this package (the HTTP layer's egress handoff) can
// report internal failures using the same taxonomy Store.Push uses.
func InternalError(msg string) *PushError {
	return &PushError{Kind: ErrInternal, Msg: msg}
}
