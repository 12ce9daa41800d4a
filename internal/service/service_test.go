package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/atinyakov/ProfileDesk/internal/models"
	"github.com/atinyakov/ProfileDesk/internal/service"
)

type mockUserRepo struct {
	UserExistsFunc func(ctx context.Context, userID string) (bool, error)
	CreateUserFunc func(ctx context.Context, user models.User) error
}

func (m *mockUserRepo) UserExists(ctx context.Context, userID string) (bool, error) {
	return m.UserExistsFunc(ctx, userID)
}
func (m *mockUserRepo) CreateUser(ctx context.Context, user models.User) error {
	return m.CreateUserFunc(ctx, user)
}

type mockProfileRepo struct {
	GetSectionsFunc   func(ctx context.Context, userID string, sections []models.Section) (map[models.Section][]byte, error)
	UpsertSectionFunc func(ctx context.Context, userID string, section models.Section, data []byte) error
	DeleteSectionFunc func(ctx context.Context, userID string, section models.Section) (bool, error)
}

func (m *mockProfileRepo) GetSections(ctx context.Context, userID string, sections []models.Section) (map[models.Section][]byte, error) {
	return m.GetSectionsFunc(ctx, userID, sections)
}
func (m *mockProfileRepo) UpsertSection(ctx context.Context, userID string, section models.Section, data []byte) error {
	return m.UpsertSectionFunc(ctx, userID, section, data)
}
func (m *mockProfileRepo) DeleteSection(ctx context.Context, userID string, section models.Section) (bool, error) {
	return m.DeleteSectionFunc(ctx, userID, section)
}

func existing() *mockUserRepo {
	return &mockUserRepo{UserExistsFunc: func(context.Context, string) (bool, error) { return true, nil }}
}

func TestRegister(t *testing.T) {
	var stored models.User
	repo := &mockUserRepo{CreateUserFunc: func(_ context.Context, u models.User) error {
		stored = u
		return nil
	}}
	svc := service.NewUserService(repo)

	user, err := svc.Register(context.Background(), models.RoleInfluencer)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" || user.Role != models.RoleInfluencer {
		t.Errorf("unexpected user %+v", user)
	}
	if stored != user {
		t.Errorf("stored %+v; want %+v", stored, user)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	svc := service.NewUserService(&mockUserRepo{})
	_, err := svc.Register(context.Background(), models.Role("root"))
	if !errors.Is(err, service.ErrInvalidRole) {
		t.Fatalf("Register error = %v; want ErrInvalidRole", err)
	}
}

func TestRegister_AdminRefused(t *testing.T) {
	repo := &mockUserRepo{CreateUserFunc: func(context.Context, models.User) error {
		t.Error("admin must not be stored")
		return nil
	}}
	svc := service.NewUserService(repo)

	_, err := svc.Register(context.Background(), models.RoleAdmin)
	if !errors.Is(err, service.ErrRoleNotAllowed) {
		t.Fatalf("Register error = %v; want ErrRoleNotAllowed", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	var created []models.User
	exists := false
	repo := &mockUserRepo{
		UserExistsFunc: func(_ context.Context, id string) (bool, error) { return exists, nil },
		CreateUserFunc: func(_ context.Context, u models.User) error {
			created = append(created, u)
			exists = true
			return nil
		},
	}
	svc := service.NewUserService(repo)

	for range 2 {
		admin, err := svc.EnsureAdmin(context.Background(), "ops")
		if err != nil {
			t.Fatalf("EnsureAdmin returned error: %v", err)
		}
		if admin != (models.User{ID: "ops", Role: models.RoleAdmin}) {
			t.Errorf("admin = %+v", admin)
		}
	}
	if len(created) != 1 {
		t.Errorf("created %d users; want 1", len(created))
	}

	if _, err := svc.EnsureAdmin(context.Background(), ""); err == nil {
		t.Error("expected error for empty admin ID")
	}
}

func TestRegister_RepoError(t *testing.T) {
	wantErr := errors.New("db down")
	svc := service.NewUserService(&mockUserRepo{CreateUserFunc: func(context.Context, models.User) error { return wantErr }})
	_, err := svc.Register(context.Background(), models.RoleVendor)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Register error = %v; want %v", err, wantErr)
	}
}

func TestProfile_Assembles(t *testing.T) {
	repo := &mockProfileRepo{
		GetSectionsFunc: func(_ context.Context, userID string, sections []models.Section) (map[models.Section][]byte, error) {
			if userID != "u-1" {
				t.Errorf("userID = %q", userID)
			}
			if !reflect.DeepEqual(sections, models.Sections()) {
				t.Errorf("sections = %v", sections)
			}
			return map[models.Section][]byte{
				models.SectionProfile:   []byte(`{"bio":"hi"}`),
				models.SectionPortfolio: []byte(`{"portfoliourl":"","filepaths":[{"filepath":"a.png"}]}`),
			}, nil
		},
	}
	svc := service.NewProfileService(repo, existing())

	rec, err := svc.Profile(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if rec.Profile[models.AttrBio] != "hi" {
		t.Errorf("bio = %v", rec.Profile[models.AttrBio])
	}
	if rec.Portfolio == nil || rec.Portfolio.FilePaths[0].FilePath != "a.png" {
		t.Errorf("portfolio = %+v", rec.Portfolio)
	}
	if rec.Social != nil || rec.Categories != nil || rec.Payment != nil {
		t.Errorf("expected absent sections, got %+v", rec)
	}
}

func TestProfile_UnknownUser(t *testing.T) {
	users := &mockUserRepo{UserExistsFunc: func(context.Context, string) (bool, error) { return false, nil }}
	svc := service.NewProfileService(&mockProfileRepo{}, users)

	_, err := svc.Profile(context.Background(), "ghost")
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("Profile error = %v; want ErrUserNotFound", err)
	}
}

func TestProfile_CorruptRow(t *testing.T) {
	repo := &mockProfileRepo{
		GetSectionsFunc: func(context.Context, string, []models.Section) (map[models.Section][]byte, error) {
			return map[models.Section][]byte{models.SectionSocial: []byte(`{"not":"a list"}`)}, nil
		},
	}
	svc := service.NewProfileService(repo, existing())

	if _, err := svc.Profile(context.Background(), "u-1"); err == nil {
		t.Fatal("expected error for corrupt row")
	}
}

func TestSaveSection_Normalizes(t *testing.T) {
	var gotSection models.Section
	var gotData []byte
	repo := &mockProfileRepo{
		UpsertSectionFunc: func(_ context.Context, _ string, section models.Section, data []byte) error {
			gotSection, gotData = section, data
			return nil
		},
	}
	svc := service.NewProfileService(repo, existing())

	err := svc.SaveSection(context.Background(), "u-1", models.SectionCategories, []byte(`[1, "2"]`))
	if err != nil {
		t.Fatalf("SaveSection returned error: %v", err)
	}
	if gotSection != models.SectionCategories {
		t.Errorf("section = %v", gotSection)
	}
	var ids []string
	if err := json.Unmarshal(gotData, &ids); err != nil || !reflect.DeepEqual(ids, []string{"1", "2"}) {
		t.Errorf("stored %s (%v)", gotData, err)
	}
}

func TestSaveSection_Invalid(t *testing.T) {
	svc := service.NewProfileService(&mockProfileRepo{}, existing())

	cases := map[string][]byte{
		"wrong shape": []byte(`"just a string"`),
		"null":        []byte(`null`),
		"not json":    []byte(`{`),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			err := svc.SaveSection(context.Background(), "u-1", models.SectionSocial, body)
			if !errors.Is(err, service.ErrInvalidSectionData) {
				t.Errorf("SaveSection error = %v; want ErrInvalidSectionData", err)
			}
		})
	}
}

func TestClearSection(t *testing.T) {
	found := true
	repo := &mockProfileRepo{
		DeleteSectionFunc: func(context.Context, string, models.Section) (bool, error) { return found, nil },
	}
	svc := service.NewProfileService(repo, existing())

	if err := svc.ClearSection(context.Background(), "u-1", models.SectionPayment); err != nil {
		t.Fatalf("ClearSection returned error: %v", err)
	}

	found = false
	err := svc.ClearSection(context.Background(), "u-1", models.SectionPayment)
	if !errors.Is(err, service.ErrSectionNotFound) {
		t.Errorf("ClearSection error = %v; want ErrSectionNotFound", err)
	}
}

func TestCompletion(t *testing.T) {
	repo := &mockProfileRepo{
		GetSectionsFunc: func(context.Context, string, []models.Section) (map[models.Section][]byte, error) {
			return map[models.Section][]byte{
				models.SectionSocial:  []byte(`[{"platform":"ig","handle":"x"}]`),
				models.SectionPayment: []byte(`{"paymentmethod":[{"method":"upi","paymentdetails":"id@bank"}]}`),
			}, nil
		},
	}
	svc := service.NewProfileService(repo, existing())

	state, err := svc.Completion(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Completion returned error: %v", err)
	}
	want := models.CompletionState{false, true, false, false, true}
	if state != want {
		t.Errorf("Completion = %v; want %v", state, want)
	}
}

func TestSaveSection_EmptyStaysIncomplete(t *testing.T) {
	stored := map[models.Section][]byte{}
	repo := &mockProfileRepo{
		UpsertSectionFunc: func(_ context.Context, _ string, section models.Section, data []byte) error {
			stored[section] = data
			return nil
		},
		GetSectionsFunc: func(context.Context, string, []models.Section) (map[models.Section][]byte, error) {
			return stored, nil
		},
	}
	svc := service.NewProfileService(repo, existing())

	if err := svc.SaveSection(context.Background(), "u-1", models.SectionSocial, []byte(`[]`)); err != nil {
		t.Fatalf("SaveSection returned error: %v", err)
	}
	if string(stored[models.SectionSocial]) != "[]" {
		t.Errorf("stored %s; want []", stored[models.SectionSocial])
	}

	state, err := svc.Completion(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Completion returned error: %v", err)
	}
	if state[models.SectionSocial] {
		t.Error("empty social section reported complete")
	}
}
