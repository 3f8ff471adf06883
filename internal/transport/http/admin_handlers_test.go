package http

import (
	"fmt"
	stdhttp "net/http"
	"testing"

	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/store"
)

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)

	userToken, target := env.register(t, "Usuario", "u@example.com")
	_, adminUser := env.register(t, "Admin", "a@example.com")
	adminToken := env.promote(t, adminUser.ID, store.RoleAdmin)

	// Regular users cannot reach moderation endpoints.
	resp := env.doJSON(t, stdhttp.MethodGet, "/api/admin/users", userToken, nil, nil)
	if resp.StatusCode != stdhttp.StatusForbidden {
		t.Fatalf("expected 403 for regular user, got %d", resp.StatusCode)
	}

	var users []UserResponse
	resp = env.doJSON(t, stdhttp.MethodGet, "/api/admin/users", adminToken, nil, &users)
	if resp.StatusCode != stdhttp.StatusOK || len(users) != 2 {
		t.Fatalf("expected 2 users, got status=%d n=%d", resp.StatusCode, len(users))
	}

	// Promote the target to moderator.
	rolePath := fmt.Sprintf("/api/admin/users/%d/role", target.ID)
	var updated UserResponse
	resp = env.doJSON(t, stdhttp.MethodPut, rolePath, adminToken, UpdateRoleRequest{Role: "moderator"}, &updated)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if updated.Role != "moderator" {
		t.Fatalf("expected moderator role, got %q", updated.Role)
	}

	// Only user/moderator are assignable.
	resp = env.doJSON(t, stdhttp.MethodPut, rolePath, adminToken, UpdateRoleRequest{Role: "admin"}, nil)
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("expected 400 for admin role, got %d", resp.StatusCode)
	}

	// Admins cannot change their own role.
	selfPath := fmt.Sprintf("/api/admin/users/%d/role", adminUser.ID)
	resp = env.doJSON(t, stdhttp.MethodPut, selfPath, adminToken, UpdateRoleRequest{Role: "user"}, nil)
	if resp.StatusCode != stdhttp.StatusForbidden {
		t.Fatalf("expected 403 for self role change, got %d", resp.StatusCode)
	}

	// Suspend and reactivate the target.
	statusPath := fmt.Sprintf("/api/admin/users/%d/status", target.ID)
	resp = env.doJSON(t, stdhttp.MethodPut, statusPath, adminToken, UpdateStatusRequest{Status: "suspended"}, &updated)
	if resp.StatusCode != stdhttp.StatusOK || updated.Status != "suspended" {
		t.Fatalf("expected suspended user, got status=%d %+v", resp.StatusCode, updated)
	}
	resp = env.doJSON(t, stdhttp.MethodPut, statusPath, adminToken, UpdateStatusRequest{Status: "banned"}, nil)
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.StatusCode)
	}

	// Admin accounts are shielded from moderation.
	adminStatusPath := fmt.Sprintf("/api/admin/users/%d/status", adminUser.ID)
	resp = env.doJSON(t, stdhttp.MethodPut, adminStatusPath, adminToken, UpdateStatusRequest{Status: "suspended"}, nil)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("expected 404 for admin target, got %d", resp.StatusCode)
	}
}

func TestModeratorPermissions(t *testing.T) {
	env := newTestEnv(t)

	sellerToken, seller := env.register(t, "Vendedor", "v@example.com")
	_, modUser := env.register(t, "Mod", "m@example.com")
	modToken := env.promote(t, modUser.ID, store.RoleModerator)

	resp := env.doJSON(t, stdhttp.MethodPost, "/api/products", sellerToken, ProductRequest{Name: "Mesa", Price: 50}, nil)
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("seed product: got %d", resp.StatusCode)
	}

	// Moderators cannot list users or assign roles.
	resp = env.doJSON(t, stdhttp.MethodGet, "/api/admin/users", modToken, nil, nil)
	if resp.StatusCode != stdhttp.StatusForbidden {
		t.Fatalf("expected 403 for moderator listing users, got %d", resp.StatusCode)
	}
	rolePath := fmt.Sprintf("/api/admin/users/%d/role", seller.ID)
	resp = env.doJSON(t, stdhttp.MethodPut, rolePath, modToken, UpdateRoleRequest{Role: "moderator"}, nil)
	if resp.StatusCode != stdhttp.StatusForbidden {
		t.Fatalf("expected 403 for moderator assigning roles, got %d", resp.StatusCode)
	}

	// Moderators can suspend accounts and moderate listings.
	statusPath := fmt.Sprintf("/api/admin/users/%d/status", seller.ID)
	resp = env.doJSON(t, stdhttp.MethodPut, statusPath, modToken, UpdateStatusRequest{Status: "suspended"}, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("expected 200 for moderator suspending user, got %d", resp.StatusCode)
	}

	var moderated ProductResponse
	resp = env.doJSON(t, stdhttp.MethodPut, "/api/admin/products/1/state", modToken, UpdateStateRequest{State: "oculto"}, &moderated)
	if resp.StatusCode != stdhttp.StatusOK || moderated.State != "oculto" {
		t.Fatalf("expected hidden product, got status=%d %+v", resp.StatusCode, moderated)
	}

	// Hidden products drop out of the public catalog.
	resp = env.doJSON(t, stdhttp.MethodGet, "/api/products/1", "", nil, nil)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("expected 404 for hidden product, got %d", resp.StatusCode)
	}

	resp = env.doJSON(t, stdhttp.MethodPut, "/api/admin/products/1/state", modToken, UpdateStateRequest{State: "quemado"}, nil)
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("expected 400 for unknown state, got %d", resp.StatusCode)
	}
}
