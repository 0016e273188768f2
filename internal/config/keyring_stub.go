//go:build nokeyring

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import "errors"

// osKeyring is a no-op TokenStore for headless builds (CI containers without a
// secret service). Tokens are simply not persisted.
type osKeyring struct{}

var errNoKeyring = errors.New("keyring disabled in this build")

func (k *osKeyring) Get(string, string) (string, error) { return "", errNoKeyring }
func (k *osKeyring) Set(string, string, string) error   { return errNoKeyring }
func (k *osKeyring) Delete(string, string) error        { return errNoKeyring }
