package services

import (
	"net/http"
	"testing"
)

func TestAlertService_CreateAndCount(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	project := seedProject(t, db, owner.ID, "demo")

	svc := NewAlertService(db)

	line := 42
	alert, err := svc.Create(project.ID, owner.ID, &CreateAlertRequest{
		Message:    "possible SQL injection",
		LineNumber: &line,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if alert.Sender.Username != "owner" {
		t.Errorf("sender = %q, expected preloaded user", alert.Sender.Username)
	}
	if alert.IsResolved {
		t.Error("new alert should start unresolved")
	}

	count, err := svc.UnresolvedCount(project.ID)
	if err != nil {
		t.Fatalf("UnresolvedCount returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("unresolved count = %d, expected 1", count)
	}
}

func TestAlertService_ResolveIdempotent(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	project := seedProject(t, db, owner.ID, "demo")

	svc := NewAlertService(db)
	alert, _ := svc.Create(project.ID, owner.ID, &CreateAlertRequest{Message: "check this"})

	resolved, err := svc.Resolve(project.ID, alert.ID)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !resolved.IsResolved {
		t.Error("alert should be resolved")
	}

	// Resolving again changes nothing.
	resolved, err = svc.Resolve(project.ID, alert.ID)
	if err != nil {
		t.Fatalf("second Resolve returned error: %v", err)
	}
	if !resolved.IsResolved {
		t.Error("alert should stay resolved")
	}

	count, _ := svc.UnresolvedCount(project.ID)
	if count != 0 {
		t.Errorf("unresolved count = %d, expected 0", count)
	}
}

func TestAlertService_ResolveScopedToProject(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	projectA := seedProject(t, db, owner.ID, "a")
	projectB := seedProject(t, db, owner.ID, "b")

	svc := NewAlertService(db)
	alert, _ := svc.Create(projectA.ID, owner.ID, &CreateAlertRequest{Message: "scoped"})

	_, err := svc.Resolve(projectB.ID, alert.ID)
	assertStatus(t, err, http.StatusNotFound)
}

func TestAlertService_ListOrdersUnresolvedFirst(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	project := seedProject(t, db, owner.ID, "demo")

	svc := NewAlertService(db)
	first, _ := svc.Create(project.ID, owner.ID, &CreateAlertRequest{Message: "first"})
	svc.Create(project.ID, owner.ID, &CreateAlertRequest{Message: "second"})
	svc.Resolve(project.ID, first.ID)

	alerts, err := svc.List(project.ID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("list has %d alerts, expected 2", len(alerts))
	}
	if alerts[0].Message != "second" || alerts[0].IsResolved {
		t.Errorf("first entry = %q (resolved=%t), expected the unresolved alert", alerts[0].Message, alerts[0].IsResolved)
	}
}
