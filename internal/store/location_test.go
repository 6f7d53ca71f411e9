package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"roadbook/internal/models"
)

func TestLocationStoreCreateAndResolve(t *testing.T) {
	db := testDB(t)
	s := NewLocationStore(db)

	suffix := uuid.NewString()[:8]
	rootSlug := "test-country-" + suffix
	midSlug := "test-region-" + suffix
	leafSlug := "test-city-" + suffix
	t.Cleanup(func() { cleanLocations(t, db, leafSlug, midSlug, rootSlug) })

	root, err := s.Create(&models.Location{Name: "Country", Slug: rootSlug})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	mid, err := s.Create(&models.Location{Name: "Region", Slug: midSlug, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create mid: %v", err)
	}
	leaf, err := s.Create(&models.Location{Name: "City", Slug: leafSlug, ParentID: &mid.ID})
	if err != nil {
		t.Fatalf("create leaf: %v", err)
	}

	path, err := s.PathSlug(leaf.ID)
	if err != nil {
		t.Fatalf("PathSlug: %v", err)
	}
	want := rootSlug + "/" + midSlug + "/" + leafSlug
	if path != want {
		t.Errorf("path: got %q, want %q", path, want)
	}

	// Round-trip: the canonical path resolves back to the same node.
	resolved, err := s.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.ID != leaf.ID {
		t.Errorf("resolved ID: got %v, want %v", resolved.ID, leaf.ID)
	}

	// Trailing and leading slashes are tolerated.
	resolved, err = s.Resolve("/" + path + "/")
	if err != nil {
		t.Fatalf("Resolve with slashes: %v", err)
	}
	if resolved.ID != leaf.ID {
		t.Errorf("resolved ID with slashes: got %v, want %v", resolved.ID, leaf.ID)
	}
}

func TestLocationStoreResolveRejectsWrongPrefix(t *testing.T) {
	db := testDB(t)
	s := NewLocationStore(db)

	suffix := uuid.NewString()[:8]
	rootSlug := "test-root-" + suffix
	leafSlug := "test-leaf-" + suffix
	otherSlug := "test-other-" + suffix
	t.Cleanup(func() { cleanLocations(t, db, leafSlug, otherSlug, rootSlug) })

	root, err := s.Create(&models.Location{Name: "Root", Slug: rootSlug})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	if _, err := s.Create(&models.Location{Name: "Leaf", Slug: leafSlug, ParentID: &root.ID}); err != nil {
		t.Fatalf("create leaf: %v", err)
	}
	if _, err := s.Create(&models.Location{Name: "Other", Slug: otherSlug}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	// Correct last segment, wrong ancestry prefix: must not resolve.
	if _, err := s.Resolve(otherSlug + "/" + leafSlug); !errors.Is(err, ErrNotFound) {
		t.Errorf("wrong prefix: got %v, want ErrNotFound", err)
	}
	// Bare leaf slug without its real prefix: also a miss.
	if _, err := s.Resolve(leafSlug); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing prefix: got %v, want ErrNotFound", err)
	}
	if _, err := s.Resolve("no-such-slug-" + suffix); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown slug: got %v, want ErrNotFound", err)
	}
}

func TestLocationStoreDuplicateSlug(t *testing.T) {
	db := testDB(t)
	s := NewLocationStore(db)

	slug := "test-dup-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanLocations(t, db, slug) })

	parent, err := s.Create(&models.Location{Name: "Parent", Slug: slug})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Uniqueness is tree-wide: even under a different parent the slug is taken.
	_, err = s.Create(&models.Location{Name: "Child", Slug: slug, ParentID: &parent.ID})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("duplicate: got %v, want ErrDuplicateSlug", err)
	}
}

func TestLocationStoreBreadcrumbs(t *testing.T) {
	db := testDB(t)
	s := NewLocationStore(db)

	suffix := uuid.NewString()[:8]
	rootSlug := "test-bc-root-" + suffix
	leafSlug := "test-bc-leaf-" + suffix
	t.Cleanup(func() { cleanLocations(t, db, leafSlug, rootSlug) })

	root, err := s.Create(&models.Location{Name: "Root", Slug: rootSlug})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	leaf, err := s.Create(&models.Location{Name: "Leaf", Slug: leafSlug, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create leaf: %v", err)
	}

	crumbs, err := s.Breadcrumbs(leaf.ID)
	if err != nil {
		t.Fatalf("Breadcrumbs: %v", err)
	}
	if len(crumbs) != 2 {
		t.Fatalf("crumbs: got %d, want 2", len(crumbs))
	}
	if crumbs[0].URL != "/location/"+rootSlug {
		t.Errorf("root crumb URL: got %q", crumbs[0].URL)
	}
	if crumbs[1].URL != "/location/"+rootSlug+"/"+leafSlug {
		t.Errorf("leaf crumb URL: got %q", crumbs[1].URL)
	}
	if crumbs[1].Label != "Leaf" {
		t.Errorf("leaf crumb label: got %q", crumbs[1].Label)
	}
}

func TestLocationStoreDescendantsAndSelf(t *testing.T) {
	db := testDB(t)
	s := NewLocationStore(db)

	suffix := uuid.NewString()[:8]
	rootSlug := "test-sub-root-" + suffix
	aSlug := "test-sub-a-" + suffix
	bSlug := "test-sub-b-" + suffix
	t.Cleanup(func() { cleanLocations(t, db, aSlug, bSlug, rootSlug) })

	root, err := s.Create(&models.Location{Name: "Root", Slug: rootSlug})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	a, err := s.Create(&models.Location{Name: "A", Slug: aSlug, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := s.Create(&models.Location{Name: "B", Slug: bSlug, ParentID: &a.ID}); err != nil {
		t.Fatalf("create b: %v", err)
	}

	nodes, err := s.DescendantsAndSelf(root.ID)
	if err != nil {
		t.Fatalf("DescendantsAndSelf: %v", err)
	}
	if len(nodes) != 3 {
		t.Errorf("subtree size: got %d, want 3", len(nodes))
	}
}

func TestLocationStoreDeleteBlockedByPosts(t *testing.T) {
	db := testDB(t)
	s := NewLocationStore(db)
	authorID := testAuthorID(t, db)

	suffix := uuid.NewString()[:8]
	rootSlug := "test-del-root-" + suffix
	childSlug := "test-del-child-" + suffix
	postSlug := "test-del-post-" + suffix
	t.Cleanup(func() {
		cleanPosts(t, db, postSlug)
		cleanLocations(t, db, childSlug, rootSlug)
	})

	root, err := s.Create(&models.Location{Name: "Root", Slug: rootSlug})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	child, err := s.Create(&models.Location{Name: "Child", Slug: childSlug, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	_, err = NewPostStore(db).Create(&models.Post{
		Title: "Post", Slug: postSlug, AuthorID: authorID, LocationID: child.ID,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	// A post anywhere in the subtree blocks deleting the ancestor.
	if err := s.Delete(root.ID); !errors.Is(err, ErrLocationInUse) {
		t.Errorf("delete root: got %v, want ErrLocationInUse", err)
	}
	if err := s.Delete(child.ID); !errors.Is(err, ErrLocationInUse) {
		t.Errorf("delete child: got %v, want ErrLocationInUse", err)
	}

	db.Exec("DELETE FROM posts WHERE slug = $1", postSlug)

	if err := s.Delete(child.ID); err != nil {
		t.Errorf("delete empty child: %v", err)
	}
	if err := s.Delete(root.ID); err != nil {
		t.Errorf("delete empty root: %v", err)
	}
}

func TestLocationStorePathSlugs(t *testing.T) {
	db := testDB(t)
	s := NewLocationStore(db)

	suffix := uuid.NewString()[:8]
	rootSlug := "test-ps-root-" + suffix
	childSlug := "test-ps-child-" + suffix
	t.Cleanup(func() { cleanLocations(t, db, childSlug, rootSlug) })

	root, err := s.Create(&models.Location{Name: "PS Root", Slug: rootSlug})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	child, err := s.Create(&models.Location{Name: "PS Child", Slug: childSlug, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	paths, err := s.PathSlugs()
	if err != nil {
		t.Fatalf("PathSlugs: %v", err)
	}
	if got := paths[root.ID]; got != rootSlug {
		t.Errorf("root path: got %q, want %q", got, rootSlug)
	}
	if got := paths[child.ID]; got != rootSlug+"/"+childSlug {
		t.Errorf("child path: got %q, want %q", got, rootSlug+"/"+childSlug)
	}

	// The batch agrees with the per-node walk.
	single, err := s.PathSlug(child.ID)
	if err != nil {
		t.Fatalf("PathSlug: %v", err)
	}
	if paths[child.ID] != single {
		t.Errorf("batch path %q disagrees with PathSlug %q", paths[child.ID], single)
	}
}
