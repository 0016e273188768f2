/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed element.schema.json
var elementSchemaJSON []byte

var (
	schemaOnce    sync.Once
	elementSchema *gojsonschema.Schema
	schemaErr     error
)

// ValidateDraftDocument validates a raw JSON element draft against the
// embedded schema. The storage backend runs it on every create so malformed
// bodies are rejected with a field-level message instead of a SQL error.
func ValidateDraftDocument(doc []byte) error {
	schemaOnce.Do(func() {
		elementSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(elementSchemaJSON))
	})
	if schemaErr != nil {
		return fmt.Errorf("load element schema: %w", schemaErr)
	}
	res, err := elementSchema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &ValidationError{Field: "body", Reason: err.Error()}
	}
	if !res.Valid() {
		first := res.Errors()[0]
		return &ValidationError{Field: first.Field(), Reason: first.Description()}
	}
	return nil
}
