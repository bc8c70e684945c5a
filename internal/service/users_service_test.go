package service

import (
	"context"
	"testing"

	"bidtracker"
)

func TestMergeUsers_LastWriterWinsPreservingOrder(t *testing.T) {
	a := []bidtracker.AppUser{
		{ID: "admin", Name: "기본", Password: "1111"},
		{ID: "u1", Name: "하나"},
	}
	b := []bidtracker.AppUser{
		{ID: "u2", Name: "둘"},
		{ID: "admin", Name: "기본", Password: "9999"},
	}

	merged := MergeUsers(a, b)
	if len(merged) != 3 {
		t.Fatalf("got %d users, want 3", len(merged))
	}
	if merged[0].ID != "admin" || merged[1].ID != "u1" || merged[2].ID != "u2" {
		t.Fatalf("order not preserved: %v", []string{merged[0].ID, merged[1].ID, merged[2].ID})
	}
	if merged[0].Password != "9999" {
		t.Fatalf("later source did not win: password = %q", merged[0].Password)
	}
}

func TestMergeUsers_EmptySources(t *testing.T) {
	if got := MergeUsers(nil, nil); len(got) != 0 {
		t.Fatalf("MergeUsers(nil, nil) = %v, want empty", got)
	}
}

func TestBootstrap_KeepsLocalOverridesAndAddsNewDefaults(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	svc := NewUsersService(kv, &fakeGateway{})

	// A previously stored list where the admin already rotated their password.
	stored := `[{"id":"admin","name":"최철민","birthDate":"760112","password":"rotated","isAdmin":true}]`
	_ = kv.Set(ctx, "appUsers", stored)

	if err := svc.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	admin, ok := svc.Lookup(ctx, bidtracker.AdminUserID)
	if !ok || admin.Password != "rotated" {
		t.Fatalf("local override lost: %+v", admin)
	}
	if _, ok := svc.Lookup(ctx, "user_psi"); !ok {
		t.Fatal("bundled account missing after bootstrap merge")
	}
}

func TestBootstrap_CorruptBlobFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	_ = kv.Set(ctx, "appUsers", `{not json`)
	svc := NewUsersService(kv, &fakeGateway{})

	if err := svc.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if got := len(svc.Merged(ctx)); got != len(bidtracker.MasterUsers) {
		t.Fatalf("got %d users, want the %d bundled defaults", got, len(bidtracker.MasterUsers))
	}
}

func TestMerged_RemoteOverridesLocal(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		configured: true,
		users: []bidtracker.AppUser{
			{ID: bidtracker.AdminUserID, Name: "최철민", BirthDate: "760112", Password: "cloud", IsAdmin: true},
			{ID: "cloud_only", Name: "클라우드", BirthDate: "990101"},
		},
	}
	svc := NewUsersService(newFakeKV(), gw)

	merged := svc.Merged(ctx)
	byID := map[string]bidtracker.AppUser{}
	for _, u := range merged {
		byID[u.ID] = u
	}
	if byID[bidtracker.AdminUserID].Password != "cloud" {
		t.Fatalf("remote row did not override: %+v", byID[bidtracker.AdminUserID])
	}
	if _, ok := byID["cloud_only"]; !ok {
		t.Fatal("remote-only account missing from merge")
	}
}

func TestMerged_RemoteFailureFallsBackSilently(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{configured: true, fetchUsersErr: context.DeadlineExceeded}
	svc := NewUsersService(newFakeKV(), gw)

	if got := len(svc.Merged(ctx)); got != len(bidtracker.MasterUsers) {
		t.Fatalf("got %d users, want bundled defaults on remote failure", got)
	}
}

func TestCreate_ValidatesNameAndBirthDate(t *testing.T) {
	ctx := context.Background()
	svc := NewUsersService(newFakeKV(), &fakeGateway{})

	for _, tc := range []struct{ name, birth string }{
		{"", "850101"},
		{"홍길동", "8501"},
		{"홍길동", "85010a"},
	} {
		if _, err := svc.Create(ctx, tc.name, tc.birth, false); err == nil {
			t.Errorf("Create(%q, %q) succeeded, want validation error", tc.name, tc.birth)
		}
	}

	u, err := svc.Create(ctx, " 홍길동 ", "850101", false)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.ID == "" || u.Name != "홍길동" {
		t.Fatalf("created user = %+v", u)
	}
	if _, ok := svc.Lookup(ctx, u.ID); !ok {
		t.Fatal("created user not persisted locally")
	}
}

func TestCreate_BirthDateIsInitialPassword(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	gw := &fakeGateway{}
	users := NewUsersService(kv, gw)
	auth := NewAuthService(kv, users, gw, Options{SigningKey: "test-key"})

	created, err := users.Create(ctx, "홍길동", "850101", false)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Password != "850101" {
		t.Fatalf("initial password = %q, want the birthdate", created.Password)
	}

	u, token, err := auth.Login(ctx, "홍길동", "850101", "850101")
	if err != nil || u.ID != created.ID || token == "" {
		t.Fatalf("Login() = (%+v, %q, %v), want the new account", u, token, err)
	}
	// no change date recorded yet, so the first login forces a change
	if !auth.PasswordExpired(u) {
		t.Fatal("fresh account not pushed into the change-password flow")
	}
}

func TestCreate_SyncsToRemoteWhenConfigured(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{configured: true, syncUserOK: true}
	svc := NewUsersService(newFakeKV(), gw)

	u, err := svc.Create(ctx, "신입", "990101", false)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(gw.userCalls) != 1 || gw.userCalls[0].action != "createUser" || gw.userCalls[0].id != u.ID {
		t.Fatalf("remote calls = %+v, want one createUser", gw.userCalls)
	}
}

func TestDelete_BundledAdminIsProtected(t *testing.T) {
	ctx := context.Background()
	svc := NewUsersService(newFakeKV(), &fakeGateway{})

	if err := svc.Delete(ctx, bidtracker.AdminUserID); err != ErrAdminUndeletable {
		t.Fatalf("Delete(admin) error = %v, want ErrAdminUndeletable", err)
	}

	if err := svc.Delete(ctx, "user_psi"); err != nil {
		t.Fatalf("Delete(user_psi) error = %v", err)
	}
	if _, ok := svc.Lookup(ctx, "user_psi"); ok {
		t.Fatal("deleted user still present")
	}
}

func TestDelete_BundledAccountStaysDeleted(t *testing.T) {
	ctx := context.Background()
	svc := NewUsersService(newFakeKV(), &fakeGateway{})

	if err := svc.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if err := svc.Delete(ctx, "user_psi"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// the bundled defaults must not resurrect the account on later reads
	for _, u := range svc.Merged(ctx) {
		if u.ID == "user_psi" {
			t.Fatal("deleted bundled account resurfaced in merged list")
		}
	}
	if _, ok := svc.Lookup(ctx, "user_psi"); ok {
		t.Fatal("deleted bundled account resurfaced in lookup")
	}
	if _, ok := svc.Lookup(ctx, "user_sjw"); !ok {
		t.Fatal("unrelated bundled account lost")
	}
}

func TestUpdateLocal_ReplacesByID(t *testing.T) {
	ctx := context.Background()
	svc := NewUsersService(newFakeKV(), &fakeGateway{})

	u, _ := svc.Lookup(ctx, "user_sjw")
	u.Password = "newpw"
	if err := svc.UpdateLocal(ctx, u); err != nil {
		t.Fatalf("UpdateLocal() error = %v", err)
	}
	got, _ := svc.Lookup(ctx, "user_sjw")
	if got.Password != "newpw" {
		t.Fatalf("password = %q, want newpw", got.Password)
	}
}
