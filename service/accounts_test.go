package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kevinaaaquil/newsroom/logging"
	"github.com/kevinaaaquil/newsroom/memstore"
	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	u, err := f.engine.Accounts.Register(f.ctx, service.Registration{
		Username:  "nina",
		Email:     "  Nina@Example.com ",
		Role:      "Journalist",
		Password1: "s3cret-pass",
		Password2: "s3cret-pass",
	})
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != models.RoleJournalist || u.Email != "nina@example.com" || u.Password == "s3cret-pass" {
		t.Fatalf("registered = %+v", u)
	}

	for _, login := range []string{"nina", "NINA@example.com"} {
		got, err := f.engine.Accounts.Authenticate(f.ctx, login, "s3cret-pass")
		if err != nil {
			t.Fatalf("login %q: %v", login, err)
		}
		if got.ID != u.ID {
			t.Fatalf("login %q returned %s", login, got.ID)
		}
	}
	_, err = f.engine.Accounts.Authenticate(f.ctx, "nina", "wrong-pass")
	wantKind(t, err, service.ErrUnauthenticated)
	_, err = f.engine.Accounts.Authenticate(f.ctx, "nobody", "wrong-pass")
	wantKind(t, err, service.ErrUnauthenticated)
}

func TestRegistrationRules(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	registerReader(t, f, "taken", "long-enough")

	cases := []struct {
		name string
		in   service.Registration
		kind error
	}{
		{"unknown role", service.Registration{Username: "a", Email: "a@example.com", Role: "admin", Password1: "long-enough", Password2: "long-enough"}, service.ErrValidation},
		{"bad email", service.Registration{Username: "a", Email: "nope", Role: "reader", Password1: "long-enough", Password2: "long-enough"}, service.ErrValidation},
		{"mismatch", service.Registration{Username: "a", Email: "a@example.com", Role: "reader", Password1: "long-enough", Password2: "long-enouh"}, service.ErrValidation},
		{"short password", service.Registration{Username: "a", Email: "a@example.com", Role: "reader", Password1: "short", Password2: "short"}, service.ErrValidation},
		{"duplicate username", service.Registration{Username: "taken", Email: "b@example.com", Role: "reader", Password1: "long-enough", Password2: "long-enough"}, service.ErrConflict},
		{"duplicate email", service.Registration{Username: "other", Email: "taken@example.com", Role: "reader", Password1: "long-enough", Password2: "long-enough"}, service.ErrConflict},
	}
	for _, tc := range cases {
		_, err := f.engine.Accounts.Register(f.ctx, tc.in)
		if err == nil {
			t.Fatalf("%s: accepted", tc.name)
		}
		wantKind(t, err, tc.kind)
	}
}

func TestRegisterPublisher(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	p, editor, err := f.engine.Accounts.RegisterPublisher(f.ctx, service.PublisherRegistration{
		Name: "Gazette",
		Editor: service.Registration{
			Username: "gina", Email: "gina@example.com", Password1: "long-enough", Password2: "long-enough",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if editor.Role != models.RoleEditor || !p.HasEditor(editor.ID) {
		t.Fatalf("publisher %+v editor %+v", p, editor)
	}
	stored, _ := f.repo.PublishersByEditor(f.ctx, editor.ID)
	if len(stored) != 1 || stored[0].ID != p.ID {
		t.Fatalf("editor publishers = %+v", stored)
	}

	_, _, err = f.engine.Accounts.RegisterPublisher(f.ctx, service.PublisherRegistration{Name: "Gazette"})
	wantKind(t, err, service.ErrConflict)
}

func TestRegisterPublisherRollsBack(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, _, err := f.engine.Accounts.RegisterPublisher(f.ctx, service.PublisherRegistration{
		Name:   "Broken",
		Editor: service.Registration{Username: "b", Email: "bad", Password1: "long-enough", Password2: "long-enough"},
	})
	wantKind(t, err, service.ErrValidation)
	pubs, _ := f.repo.ListPublishers(f.ctx)
	if len(pubs) != 0 {
		t.Fatalf("publisher kept after failed editor: %+v", pubs)
	}
}

type failingMembership struct {
	*memstore.Store
}

func (failingMembership) AddPublisherEditor(context.Context, string, string) error {
	return errors.New("membership write failed")
}

func TestRegisterPublisherRemovesEditorWhenMembershipFails(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	engine, err := service.New(failingMembership{f.repo}, service.Options{Mailer: f.mailer, Logger: logging.Discard()})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = engine.Accounts.RegisterPublisher(f.ctx, service.PublisherRegistration{
		Name:   "Gazette",
		Editor: service.Registration{Username: "gina", Email: "gina@example.com", Password1: "long-enough", Password2: "long-enough"},
	})
	if err == nil {
		t.Fatal("registration succeeded without a membership")
	}
	if pubs, _ := f.repo.ListPublishers(f.ctx); len(pubs) != 0 {
		t.Fatalf("publisher kept: %+v", pubs)
	}
	if u, _ := f.repo.UserByUsername(f.ctx, "gina"); u != nil {
		t.Fatalf("orphan editor kept: %+v", u)
	}

	// The name and the account are free again.
	if _, _, err := f.engine.Accounts.RegisterPublisher(f.ctx, service.PublisherRegistration{
		Name:   "Gazette",
		Editor: service.Registration{Username: "gina", Email: "gina@example.com", Password1: "long-enough", Password2: "long-enough"},
	}); err != nil {
		t.Fatalf("retry: %v", err)
	}
}
