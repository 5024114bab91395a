package services

import (
	"testing"

	"github.com/codehive/server/internal/models"
)

func TestPermissionService_Owner(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	project := seedProject(t, db, owner.ID, "demo")

	perms := NewPermissionService(db)

	if !perms.CanView(owner.ID, project.ID) {
		t.Error("owner should have view access")
	}
	if !perms.CanEdit(owner.ID, project.ID) {
		t.Error("owner should have edit access")
	}
	if !perms.IsOwner(owner.ID, project.ID) {
		t.Error("IsOwner should be true for the owner")
	}
}

func TestPermissionService_ApprovedRoles(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	project := seedProject(t, db, owner.ID, "demo")

	admin := seedUser(t, db, "admin-member")
	editor := seedUser(t, db, "editor-member")
	viewer := seedUser(t, db, "viewer-member")
	seedMembership(t, db, project.ID, admin.ID, models.RoleAdmin, models.StatusApproved)
	seedMembership(t, db, project.ID, editor.ID, models.RoleEditor, models.StatusApproved)
	seedMembership(t, db, project.ID, viewer.ID, models.RoleViewer, models.StatusApproved)

	perms := NewPermissionService(db)

	cases := []struct {
		name    string
		userID  uint
		canView bool
		canEdit bool
	}{
		{"admin", admin.ID, true, true},
		{"editor", editor.ID, true, true},
		{"viewer", viewer.ID, true, false},
	}
	for _, tc := range cases {
		if got := perms.CanView(tc.userID, project.ID); got != tc.canView {
			t.Errorf("%s: CanView = %t, expected %t", tc.name, got, tc.canView)
		}
		if got := perms.CanEdit(tc.userID, project.ID); got != tc.canEdit {
			t.Errorf("%s: CanEdit = %t, expected %t", tc.name, got, tc.canEdit)
		}
	}
}

func TestPermissionService_PendingDenied(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	project := seedProject(t, db, owner.ID, "demo")

	pending := seedUser(t, db, "pending-user")
	seedMembership(t, db, project.ID, pending.ID, models.RoleEditor, models.StatusPending)

	perms := NewPermissionService(db)

	// A pending editor role grants nothing until approval.
	if perms.CanView(pending.ID, project.ID) {
		t.Error("pending member should not have view access")
	}
	if perms.CanEdit(pending.ID, project.ID) {
		t.Error("pending member should not have edit access")
	}
}

func TestPermissionService_StrangerDenied(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	project := seedProject(t, db, owner.ID, "demo")
	stranger := seedUser(t, db, "stranger")

	perms := NewPermissionService(db)

	if perms.CanView(stranger.ID, project.ID) {
		t.Error("stranger should not have view access")
	}
	if perms.CanEdit(stranger.ID, project.ID) {
		t.Error("stranger should not have edit access")
	}
}

func TestPermissionService_UnknownProjectDenied(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "someone")

	perms := NewPermissionService(db)

	if perms.CanView(user.ID, 9999) {
		t.Error("unknown project should deny view")
	}
	if perms.CanEdit(user.ID, 9999) {
		t.Error("unknown project should deny edit")
	}
}
