package services

import (
	"errors"
	"strings"
	"testing"

	"spacebudget/internal/models"
	"spacebudget/internal/testutil"
)

func TestCreateSpace(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		e := newEnv(t)
		user := testutil.NewUserID()

		space, err := e.spaces.CreateSpace(e.ctx, user, "  Family Budget ")
		testutil.AssertNoError(t, err)

		if space.Name != "Family Budget" {
			t.Errorf("expected trimmed name, got %q", space.Name)
		}
		if !strings.HasPrefix(space.Slug, "family-budget-") {
			t.Errorf("expected slug derived from name, got %q", space.Slug)
		}
		if space.OwnerID != user {
			t.Errorf("expected owner %s, got %s", user, space.OwnerID)
		}

		got, err := e.spaces.GetSpace(e.ctx, user, space.Slug)
		testutil.AssertNoError(t, err)
		if got.Role != models.MemberRoleOwner {
			t.Errorf("expected creator to be owner, got %s", got.Role)
		}
	})

	t.Run("blank_name", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.spaces.CreateSpace(e.ctx, e.owner, "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("retries_slug_collision", func(t *testing.T) {
		e := newEnv(t)
		calls := 0
		e.spaces.newSlug = func(string) (string, error) {
			calls++
			if calls < 3 {
				return e.space.Slug, nil
			}
			return "fresh-slug", nil
		}

		space, err := e.spaces.CreateSpace(e.ctx, e.owner, "Another")
		testutil.AssertNoError(t, err)
		if space.Slug != "fresh-slug" {
			t.Errorf("expected fresh-slug, got %s", space.Slug)
		}
		if calls != 3 {
			t.Errorf("expected 3 slug attempts, got %d", calls)
		}
	})

	t.Run("gives_up_after_max_attempts", func(t *testing.T) {
		e := newEnv(t)
		calls := 0
		e.spaces.newSlug = func(string) (string, error) {
			calls++
			return e.space.Slug, nil
		}

		_, err := e.spaces.CreateSpace(e.ctx, e.owner, "Another")
		testutil.AssertAppError(t, err, "SLUG_TAKEN")
		if calls != maxSlugAttempts {
			t.Errorf("expected %d attempts, got %d", maxSlugAttempts, calls)
		}

		var count int64
		e.db.Model(&models.Space{}).Count(&count)
		if count != 1 {
			t.Errorf("failed attempts must not leave spaces behind, found %d", count)
		}
	})

	t.Run("slug_generator_error", func(t *testing.T) {
		e := newEnv(t)
		e.spaces.newSlug = func(string) (string, error) { return "", errors.New("entropy exhausted") }

		_, err := e.spaces.CreateSpace(e.ctx, e.owner, "Another")
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
	})
}

func TestAssertSpaceAccess(t *testing.T) {
	e := newEnv(t)

	t.Run("member", func(t *testing.T) {
		id, err := e.spaces.AssertSpaceAccess(e.ctx, e.owner, e.space.Slug)
		testutil.AssertNoError(t, err)
		if id != e.space.ID {
			t.Errorf("expected space id %s, got %s", e.space.ID, id)
		}
	})

	t.Run("non_member", func(t *testing.T) {
		_, err := e.spaces.AssertSpaceAccess(e.ctx, testutil.NewUserID(), e.space.Slug)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("unknown_slug_looks_the_same", func(t *testing.T) {
		_, err := e.spaces.AssertSpaceAccess(e.ctx, e.owner, "no-such-space")
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := e.spaces.AssertSpaceAccess(e.ctx, "", e.space.Slug)
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})
}

func TestListMySpaces(t *testing.T) {
	e := newEnv(t)
	other := testutil.CreateTestSpace(t, e.db, testutil.NewUserID())
	testutil.AddTestMember(t, e.db, other.ID, e.owner, models.MemberRoleMember)
	testutil.CreateTestSpace(t, e.db, testutil.NewUserID())

	spaces, err := e.spaces.ListMySpaces(e.ctx, e.owner)
	testutil.AssertNoError(t, err)

	if len(spaces) != 2 {
		t.Fatalf("expected 2 spaces, got %d", len(spaces))
	}
	roles := map[string]models.MemberRole{}
	for _, s := range spaces {
		roles[s.Slug] = s.Role
	}
	if roles[e.space.Slug] != models.MemberRoleOwner {
		t.Errorf("expected owner role in own space, got %q", roles[e.space.Slug])
	}
	if roles[other.Slug] != models.MemberRoleMember {
		t.Errorf("expected member role in shared space, got %q", roles[other.Slug])
	}

	none, err := e.spaces.ListMySpaces(e.ctx, testutil.NewUserID())
	testutil.AssertNoError(t, err)
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil list, got %v", none)
	}
}

func TestUpdateSpace(t *testing.T) {
	t.Run("rename_and_reslug", func(t *testing.T) {
		e := newEnv(t)
		space, err := e.spaces.UpdateSpace(e.ctx, e.owner, e.space.Slug, UpdateSpaceInput{
			Name: testutil.Ptr("Household"),
			Slug: testutil.Ptr("household"),
		})
		testutil.AssertNoError(t, err)
		if space.Name != "Household" || space.Slug != "household" {
			t.Errorf("unexpected space after update: %+v", space)
		}

		_, err = e.spaces.AssertSpaceAccess(e.ctx, e.owner, "household")
		testutil.AssertNoError(t, err)
	})

	t.Run("member_cannot_update", func(t *testing.T) {
		e := newEnv(t)
		member := testutil.NewUserID()
		testutil.AddTestMember(t, e.db, e.space.ID, member, models.MemberRoleMember)

		_, err := e.spaces.UpdateSpace(e.ctx, member, e.space.Slug, UpdateSpaceInput{Name: testutil.Ptr("Mine")})
		testutil.AssertAppError(t, err, "NOT_OWNER")
	})

	t.Run("no_fields", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.spaces.UpdateSpace(e.ctx, e.owner, e.space.Slug, UpdateSpaceInput{})
		testutil.AssertAppError(t, err, "NO_FIELDS_TO_UPDATE")
	})

	t.Run("invalid_slug", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.spaces.UpdateSpace(e.ctx, e.owner, e.space.Slug, UpdateSpaceInput{Slug: testutil.Ptr("Not A Slug")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("slug_taken", func(t *testing.T) {
		e := newEnv(t)
		other := testutil.CreateTestSpace(t, e.db, testutil.NewUserID())

		_, err := e.spaces.UpdateSpace(e.ctx, e.owner, e.space.Slug, UpdateSpaceInput{Slug: &other.Slug})
		testutil.AssertAppError(t, err, "SLUG_TAKEN")
	})
}

func TestMembers(t *testing.T) {
	t.Run("add_and_list", func(t *testing.T) {
		e := newEnv(t)
		friend := testutil.NewUserID()

		member, err := e.spaces.AddMember(e.ctx, e.owner, e.space.Slug, friend, "")
		testutil.AssertNoError(t, err)
		if member.Role != models.MemberRoleMember {
			t.Errorf("expected member role, got %s", member.Role)
		}

		members, err := e.spaces.ListMembers(e.ctx, friend, e.space.Slug)
		testutil.AssertNoError(t, err)
		if len(members) != 2 {
			t.Errorf("expected 2 members, got %d", len(members))
		}
	})

	t.Run("add_twice", func(t *testing.T) {
		e := newEnv(t)
		friend := testutil.NewUserID()
		_, err := e.spaces.AddMember(e.ctx, e.owner, e.space.Slug, friend, models.MemberRoleMember)
		testutil.AssertNoError(t, err)

		_, err = e.spaces.AddMember(e.ctx, e.owner, e.space.Slug, friend, models.MemberRoleMember)
		testutil.AssertAppError(t, err, "MEMBER_EXISTS")
	})

	t.Run("add_second_owner", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.spaces.AddMember(e.ctx, e.owner, e.space.Slug, testutil.NewUserID(), models.MemberRoleOwner)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("add_requires_uuid", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.spaces.AddMember(e.ctx, e.owner, e.space.Slug, "bob", models.MemberRoleMember)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("member_cannot_add", func(t *testing.T) {
		e := newEnv(t)
		member := testutil.NewUserID()
		testutil.AddTestMember(t, e.db, e.space.ID, member, models.MemberRoleMember)

		_, err := e.spaces.AddMember(e.ctx, member, e.space.Slug, testutil.NewUserID(), models.MemberRoleMember)
		testutil.AssertAppError(t, err, "NOT_OWNER")
	})

	t.Run("remove", func(t *testing.T) {
		e := newEnv(t)
		member := testutil.NewUserID()
		testutil.AddTestMember(t, e.db, e.space.ID, member, models.MemberRoleMember)

		removed, err := e.spaces.RemoveMember(e.ctx, e.owner, e.space.Slug, member)
		testutil.AssertNoError(t, err)
		if removed == nil || *removed != member {
			t.Fatalf("expected removed member id, got %v", removed)
		}

		_, err = e.spaces.AssertSpaceAccess(e.ctx, member, e.space.Slug)
		testutil.AssertAppError(t, err, "FORBIDDEN")

		again, err := e.spaces.RemoveMember(e.ctx, e.owner, e.space.Slug, member)
		testutil.AssertNoError(t, err)
		if again != nil {
			t.Errorf("removing a non-member should return nil, got %v", *again)
		}
	})

	t.Run("leave", func(t *testing.T) {
		e := newEnv(t)
		member := testutil.NewUserID()
		testutil.AddTestMember(t, e.db, e.space.ID, member, models.MemberRoleMember)

		removed, err := e.spaces.RemoveMember(e.ctx, member, e.space.Slug, member)
		testutil.AssertNoError(t, err)
		if removed == nil {
			t.Fatal("expected member to leave")
		}
	})

	t.Run("member_cannot_remove_others", func(t *testing.T) {
		e := newEnv(t)
		a, b := testutil.NewUserID(), testutil.NewUserID()
		testutil.AddTestMember(t, e.db, e.space.ID, a, models.MemberRoleMember)
		testutil.AddTestMember(t, e.db, e.space.ID, b, models.MemberRoleMember)

		_, err := e.spaces.RemoveMember(e.ctx, a, e.space.Slug, b)
		testutil.AssertAppError(t, err, "NOT_OWNER")
	})

	t.Run("owner_cannot_be_removed", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.spaces.RemoveMember(e.ctx, e.owner, e.space.Slug, e.owner)
		testutil.AssertAppError(t, err, "OWNER_REMOVAL")
	})
}
