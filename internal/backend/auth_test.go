/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := signToken("s3cret", "alice", RoleAdmin, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := verifyToken("s3cret", tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Sub != "alice" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	tok, _ := signToken("s3cret", "alice", RoleAdmin, time.Now().Add(time.Hour))
	if _, err := verifyToken("other", tok); err == nil {
		t.Fatalf("wrong secret must fail verification")
	}
	expired, _ := signToken("s3cret", "alice", RoleAdmin, time.Now().Add(-time.Minute))
	if _, err := verifyToken("s3cret", expired); err == nil {
		t.Fatalf("expired token must fail verification")
	}
}

func TestWithAuthAdminGuard(t *testing.T) {
	const secret = "s3cret"
	var called bool
	h := withAuth(secret, true, func(w http.ResponseWriter, r *http.Request, claims tokenClaims) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	// no token
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPut, "/api/admin/elements/1", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token must give 401, got %d", rec.Code)
	}

	// valid token, wrong role
	viewer, _ := signToken(secret, "bob", "viewer", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodPut, "/api/admin/elements/1", nil)
	req.Header.Set("Authorization", "Bearer "+viewer)
	rec = httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusForbidden || called {
		t.Fatalf("non-admin must give 403, got %d", rec.Code)
	}

	// admin passes through
	admin, _ := signToken(secret, "alice", RoleAdmin, time.Now().Add(time.Hour))
	req = httptest.NewRequest(http.MethodPut, "/api/admin/elements/1", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec = httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusNoContent || !called {
		t.Fatalf("admin must pass, got %d", rec.Code)
	}
}
