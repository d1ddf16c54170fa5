package router

import (
	"fmt"
	"net/http"
	"testing"
)

func TestSignupLoginFlow(t *testing.T) {
	s := newTestStack(t)

	w := doJSON(t, s.auth, http.MethodPost, "/signup", "",
		map[string]string{"username": "alice", "password": "secret1", "role": "user"})
	wantStatus(t, w, http.StatusCreated)
	if got := decode(t, w)["message"]; got != "User created successfully" {
		t.Fatalf("message = %q", got)
	}

	w = doJSON(t, s.auth, http.MethodPost, "/login", "",
		map[string]string{"username": "alice", "password": "secret1"})
	wantStatus(t, w, http.StatusOK)
	body := decode(t, w)
	tok, _ := body["token"].(string)
	if tok == "" {
		t.Fatal("login returned no token")
	}
	if body["role"] != "user" {
		t.Fatalf("role = %v", body["role"])
	}

	claims, err := s.jwter.Parse(tok)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Username != "alice" || claims.Role != "user" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestSignupValidation(t *testing.T) {
	s := newTestStack(t)

	// 缺字段
	w := doJSON(t, s.auth, http.MethodPost, "/signup", "",
		map[string]string{"username": "alice"})
	wantError(t, w, http.StatusUnprocessableEntity, "Missing required fields")

	// 非法角色
	w = doJSON(t, s.auth, http.MethodPost, "/signup", "",
		map[string]string{"username": "alice", "password": "secret1", "role": "root"})
	wantError(t, w, http.StatusUnprocessableEntity, "Role must be user or admin")

	// 撞名是 400（管理端建号撞名才是 409）
	in := map[string]string{"username": "alice", "password": "secret1", "role": "user"}
	wantStatus(t, doJSON(t, s.auth, http.MethodPost, "/signup", "", in), http.StatusCreated)
	w = doJSON(t, s.auth, http.MethodPost, "/signup", "", in)
	wantError(t, w, http.StatusBadRequest, "User already exists")
}

func TestLoginBadCredentials(t *testing.T) {
	s := newTestStack(t)
	wantStatus(t, doJSON(t, s.auth, http.MethodPost, "/signup", "",
		map[string]string{"username": "alice", "password": "secret1", "role": "user"}), http.StatusCreated)

	// 错密码和不存在的用户文案一致，不泄露用户是否存在
	for _, in := range []map[string]string{
		{"username": "alice", "password": "wrong"},
		{"username": "nobody", "password": "secret1"},
	} {
		w := doJSON(t, s.auth, http.MethodPost, "/login", "", in)
		wantError(t, w, http.StatusUnauthorized, "Invalid username or password")
	}
}

func TestAuthAdminGating(t *testing.T) {
	s := newTestStack(t)
	alice := s.seedUser(t, "alice", "user")
	userTok := s.token(t, alice.ID, "alice", "user")

	// 没带 token：历史契约是 422
	w := doJSON(t, s.auth, http.MethodGet, "/users", "", nil)
	wantError(t, w, http.StatusUnprocessableEntity, "Missing or invalid Authorization header")

	// 坏 token
	w = doJSON(t, s.auth, http.MethodGet, "/users", "not-a-token", nil)
	wantError(t, w, http.StatusUnprocessableEntity, "Invalid or expired token")

	// 普通用户
	w = doJSON(t, s.auth, http.MethodGet, "/users", userTok, nil)
	wantError(t, w, http.StatusForbidden, "Admin role required")
}

func TestAdminUserCRUD(t *testing.T) {
	s := newTestStack(t)
	admin := s.seedUser(t, "root", "admin")
	adminTok := s.token(t, admin.ID, "root", "admin")

	// 建号
	w := doJSON(t, s.auth, http.MethodPost, "/users", adminTok,
		map[string]string{"username": "bob", "password": "secret1", "role": "user"})
	wantStatus(t, w, http.StatusCreated)
	body := decode(t, w)
	bobID := uint(body["user_id"].(float64))
	if bobID == 0 {
		t.Fatal("no user_id in response")
	}

	// 短密码
	w = doJSON(t, s.auth, http.MethodPost, "/users", adminTok,
		map[string]string{"username": "carol", "password": "abc", "role": "user"})
	wantError(t, w, http.StatusUnprocessableEntity, "Password must be at least 6 characters")

	// 撞名走 409
	w = doJSON(t, s.auth, http.MethodPost, "/users", adminTok,
		map[string]string{"username": "bob", "password": "secret1", "role": "user"})
	wantError(t, w, http.StatusConflict, "Username already exists")

	// 用户列表包含两个账号
	w = doJSON(t, s.auth, http.MethodGet, "/users", adminTok, nil)
	wantStatus(t, w, http.StatusOK)
	users, _ := decode(t, w)["users"].([]any)
	if len(users) != 2 {
		t.Fatalf("users = %d, want 2", len(users))
	}

	// 不能删自己
	w = doJSON(t, s.auth, http.MethodDelete, fmt.Sprintf("/users/%d", admin.ID), adminTok, nil)
	wantError(t, w, http.StatusForbidden, "Cannot delete your own account")

	// 删 bob
	w = doJSON(t, s.auth, http.MethodDelete, fmt.Sprintf("/users/%d", bobID), adminTok, nil)
	wantStatus(t, w, http.StatusOK)

	// 再删已经不存在
	w = doJSON(t, s.auth, http.MethodDelete, fmt.Sprintf("/users/%d", bobID), adminTok, nil)
	wantError(t, w, http.StatusNotFound, "User not found")
}
