package services

import (
	"net/http"
	"testing"
)

func TestDocumentService_CreateStampsAuthor(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	project := seedProject(t, db, owner.ID, "demo")

	svc := NewDocumentService(db)

	doc, err := svc.Create(project.ID, owner.ID, &CreateDocumentRequest{
		Title:   "README",
		Content: "getting started",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if doc.LastUpdatedBy == nil || doc.LastUpdatedBy.Username != "owner" {
		t.Error("created document should carry its author as last updater")
	}
}

func TestDocumentService_UpdateStampsEditor(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	editor := seedUser(t, db, "editor")
	project := seedProject(t, db, owner.ID, "demo")

	svc := NewDocumentService(db)
	doc, _ := svc.Create(project.ID, owner.ID, &CreateDocumentRequest{Title: "README"})

	content := "updated body"
	updated, err := svc.Update(project.ID, doc.ID, editor.ID, &UpdateDocumentRequest{Content: &content})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Content != content {
		t.Errorf("content = %q", updated.Content)
	}
	if updated.Title != "README" {
		t.Errorf("title = %q, a content-only edit should not touch it", updated.Title)
	}
	if updated.LastUpdatedBy == nil || updated.LastUpdatedBy.Username != "editor" {
		t.Error("edit should restamp the last updater")
	}
}

func TestDocumentService_ScopedLookups(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	projectA := seedProject(t, db, owner.ID, "a")
	projectB := seedProject(t, db, owner.ID, "b")

	svc := NewDocumentService(db)
	doc, _ := svc.Create(projectA.ID, owner.ID, &CreateDocumentRequest{Title: "private"})

	_, err := svc.Get(projectB.ID, doc.ID)
	assertStatus(t, err, http.StatusNotFound)

	err = svc.Delete(projectB.ID, doc.ID)
	assertStatus(t, err, http.StatusNotFound)

	if err := svc.Delete(projectA.ID, doc.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	_, err = svc.Get(projectA.ID, doc.ID)
	assertStatus(t, err, http.StatusNotFound)
}
