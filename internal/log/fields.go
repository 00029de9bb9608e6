// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// CORS admission fields
	FieldOrigin        = "origin"
	FieldEchoedOrigin  = "echoed_origin"
	FieldAllowed       = "allowed"
	FieldAdmissionRule = "rule"

	// RAG pipeline fields
	FieldChapter    = "chapter"
	FieldCollection = "collection"
	FieldModel      = "model"

	// Path / network fields
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatus     = "status"
	FieldRemoteAddr = "remote_addr"
)
