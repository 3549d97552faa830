package upload_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"debtwatch/internal/services/debtapi"
	"debtwatch/internal/upload"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestCheckConflictInsideWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -10)
	api := &fakeAPI{lastUpload: &last}
	pipe := upload.NewPipeline(upload.TypeUsage, api, upload.WithClock(fixedClock(now)))

	warning := pipe.CheckConflict(context.Background(), "Acme")
	if warning == nil {
		t.Fatal("expected overwrite warning for upload 10 days ago")
	}
	if warning.Type != "overwrite" {
		t.Fatalf("unexpected warning type %q", warning.Type)
	}
	want := "It has NOT been 30 days since the last upload (last upload: Aug 21, 2026). Do you want to overwrite?"
	if warning.Message != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", warning.Message, want)
	}
	if !warning.LastUpload.Equal(last) {
		t.Fatalf("unexpected last upload %v", warning.LastUpload)
	}
}

func TestCheckConflictOutsideWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -31)
	api := &fakeAPI{lastUpload: &last}
	pipe := upload.NewPipeline(upload.TypeUsage, api, upload.WithClock(fixedClock(now)))

	if warning := pipe.CheckConflict(context.Background(), "Acme"); warning != nil {
		t.Fatalf("expected no warning after 31 days, got %+v", warning)
	}
}

func TestCheckConflictNoPriorUpload(t *testing.T) {
	api := &fakeAPI{lastUpload: nil}
	pipe := upload.NewPipeline(upload.TypeUsage, api)

	if warning := pipe.CheckConflict(context.Background(), "Acme"); warning != nil {
		t.Fatalf("expected no warning without prior upload, got %+v", warning)
	}
}

func TestCheckConflictLookupFailureSwallowed(t *testing.T) {
	api := &fakeAPI{lastUploadErr: errors.New("backend down")}
	pipe := upload.NewPipeline(upload.TypeUsage, api)

	if warning := pipe.CheckConflict(context.Background(), "Acme"); warning != nil {
		t.Fatalf("lookup failure must be swallowed, got %+v", warning)
	}
}

func TestCheckConflictOnlyAppliesToUsage(t *testing.T) {
	last := time.Now().AddDate(0, 0, -1)
	api := &fakeAPI{lastUpload: &last}
	pipe := upload.NewPipeline(upload.TypeTickets, api)

	if warning := pipe.CheckConflict(context.Background(), "Acme"); warning != nil {
		t.Fatalf("tickets uploads never conflict, got %+v", warning)
	}
	_, _, lookups := api.calls()
	if lookups != 0 {
		t.Fatal("tickets conflict check must not hit the backend")
	}
}

func TestBlockPolicyRefusesConflictingUpload(t *testing.T) {
	now := time.Now()
	last := now.AddDate(0, 0, -5)
	api := &fakeAPI{result: &debtapi.UploadResult{Inserted: 1}, lastUpload: &last}
	pipe := upload.NewPipeline(upload.TypeUsage, api,
		upload.WithTimings(testTimings()),
		upload.WithConflictPolicy(upload.PolicyBlock))
	selectFixture(t, pipe, "usage.csv", 128)

	err := pipe.Start(context.Background(), "Acme", false)
	var blocked *upload.ConflictBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected ConflictBlockedError, got %v", err)
	}
	if blocked.Warning == nil || blocked.Warning.Type != "overwrite" {
		t.Fatalf("expected overwrite warning in error, got %+v", blocked.Warning)
	}
	_, usage, _ := api.calls()
	if usage != 0 {
		t.Fatal("blocked upload must not transmit")
	}
	if session := pipe.Snapshot(); session.Status != upload.StatusIdle {
		t.Fatalf("blocked upload must stay idle, got %q", session.Status)
	}
}

func TestBlockPolicyAllowsForcedUpload(t *testing.T) {
	now := time.Now()
	last := now.AddDate(0, 0, -5)
	api := &fakeAPI{result: &debtapi.UploadResult{Inserted: 11}, lastUpload: &last}
	pipe := upload.NewPipeline(upload.TypeUsage, api,
		upload.WithTimings(testTimings()),
		upload.WithConflictPolicy(upload.PolicyBlock))
	selectFixture(t, pipe, "usage.csv", 128)

	if err := pipe.Start(context.Background(), "Acme", true); err != nil {
		t.Fatalf("forced Start failed: %v", err)
	}
	session, err := pipe.Await(context.Background())
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if session.Status != upload.StatusComplete {
		t.Fatalf("expected complete, got %q", session.Status)
	}
}

func TestAdvisoryPolicyProceedsDespiteConflict(t *testing.T) {
	now := time.Now()
	last := now.AddDate(0, 0, -5)
	api := &fakeAPI{result: &debtapi.UploadResult{Inserted: 2}, lastUpload: &last}
	pipe := upload.NewPipeline(upload.TypeUsage, api, upload.WithTimings(testTimings()))
	selectFixture(t, pipe, "usage.csv", 128)

	if err := pipe.Start(context.Background(), "Acme", false); err != nil {
		t.Fatalf("advisory Start failed: %v", err)
	}
	session, err := pipe.Await(context.Background())
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if session.Status != upload.StatusComplete {
		t.Fatalf("expected complete, got %q", session.Status)
	}
}
