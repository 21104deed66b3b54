// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grouping

import (
	"fmt"
	"reflect"
	"testing"
)

func identity(name string) string { return name }

func buildNames(names ...string) Tree[string] {
	return Build(names, identity, DefaultDelimiter)
}

func folderNames(tree Tree[string]) []string {
	var names []string
	for _, folder := range tree.Folders {
		names = append(names, folder.Name)
	}
	return names
}

func displayNames(folder *Folder[string]) []string {
	var names []string
	for _, member := range folder.Members {
		names = append(names, member.Display)
	}
	return names
}

func TestBuildGroupsByFirstSegment(t *testing.T) {
	tree := buildNames("frontend/build", "frontend/lint", "backend/test")

	if len(tree.Ungrouped) != 0 {
		t.Errorf("Ungrouped = %v, want none", tree.Ungrouped)
	}
	if got := folderNames(tree); !reflect.DeepEqual(got, []string{"frontend", "backend"}) {
		t.Errorf("folders = %v, want [frontend backend]", got)
	}
	frontend, ok := tree.Folder("frontend")
	if !ok {
		t.Fatal("frontend folder missing")
	}
	if got := displayNames(frontend); !reflect.DeepEqual(got, []string{"build", "lint"}) {
		t.Errorf("frontend members = %v, want [build lint]", got)
	}
}

func TestBuildKeepsUngroupedOrder(t *testing.T) {
	tree := buildNames("deploy", "frontend/build", "test-all", "/weird", "trailing/")

	want := []string{"deploy", "test-all", "/weird", "trailing/"}
	if !reflect.DeepEqual(tree.Ungrouped, want) {
		t.Errorf("Ungrouped = %v, want %v", tree.Ungrouped, want)
	}
	if len(tree.Folders) != 1 {
		t.Errorf("len(Folders) = %d, want 1", len(tree.Folders))
	}
}

func TestBuildFolderOrderIsFirstOccurrence(t *testing.T) {
	tree := buildNames("zeta/a", "alpha/a", "zeta/b", "mid/a", "alpha/b")

	if got := folderNames(tree); !reflect.DeepEqual(got, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("folders = %v, want first-occurrence order [zeta alpha mid]", got)
	}
}

func TestBuildDotGithubFolder(t *testing.T) {
	tree := buildNames(".github/workflows/cleanup.yml", ".github/workflows/deploy.yml")

	if len(tree.Folders) != 1 {
		t.Fatalf("len(Folders) = %d, want 1", len(tree.Folders))
	}
	folder := tree.Folders[0]
	if folder.Name != ".github" {
		t.Errorf("folder name = %q, want .github", folder.Name)
	}
	want := []string{"workflows/cleanup.yml", "workflows/deploy.yml"}
	if got := displayNames(folder); !reflect.DeepEqual(got, want) {
		t.Errorf("members = %v, want %v", got, want)
	}
	if folder.Members[0].FullName != ".github/workflows/cleanup.yml" {
		t.Errorf("FullName = %q, want the unsplit name", folder.Members[0].FullName)
	}
}

func TestBuildZeroFolders(t *testing.T) {
	tree := buildNames("build", "test", "deploy")

	if !tree.Empty() {
		t.Fatalf("Empty() = false with folders %v", folderNames(tree))
	}
	if len(tree.Ungrouped) != 3 {
		t.Errorf("len(Ungrouped) = %d, want 3", len(tree.Ungrouped))
	}
}

func TestBuildEmptyInput(t *testing.T) {
	tree := buildNames()
	if !tree.Empty() || tree.Len() != 0 {
		t.Errorf("empty input produced %d items in %d folders", tree.Len(), len(tree.Folders))
	}
	if _, ok := tree.Folder("anything"); ok {
		t.Error("Folder lookup on an empty tree succeeded")
	}
}

func TestBuildSingleMemberFolder(t *testing.T) {
	tree := buildNames("publish/libs")
	if len(tree.Folders) != 1 || len(tree.Folders[0].Members) != 1 {
		t.Fatalf("want one folder with one member, got %d folders", len(tree.Folders))
	}
	if tree.Grouped() != 1 {
		t.Errorf("Grouped() = %d, want 1", tree.Grouped())
	}
}

// TestBuildPartitionsInput checks that every input item lands in
// exactly one place across a spread of generated name lists.
func TestBuildPartitionsInput(t *testing.T) {
	segments := []string{"", "a", "b", "ci", ".github"}
	delimiters := []string{"", "/", "//"}

	for size := 0; size < 40; size++ {
		type entry struct {
			id   int
			name string
		}
		var items []entry
		for index := 0; index < size; index++ {
			prefix := segments[(index*7+size)%len(segments)]
			delimiter := delimiters[(index*3+size)%len(delimiters)]
			suffix := segments[(index*5+size*2)%len(segments)]
			items = append(items, entry{id: index, name: prefix + delimiter + suffix})
		}

		tree := Build(items, func(item entry) string { return item.name }, DefaultDelimiter)

		seen := make(map[int]int)
		for _, item := range tree.Ungrouped {
			seen[item.id]++
		}
		for _, folder := range tree.Folders {
			for _, member := range folder.Members {
				seen[member.Item.id]++
			}
		}

		if tree.Len() != len(items) {
			t.Errorf("size %d: Len() = %d", size, tree.Len())
		}
		for _, item := range items {
			if seen[item.id] != 1 {
				t.Errorf("size %d: item %d (%q) placed %d times", size, item.id, item.name, seen[item.id])
			}
		}
	}
}

func TestBuildCallsNameOncePerItem(t *testing.T) {
	calls := make(map[string]int)
	names := []string{"a/1", "b", "a/2"}
	Build(names, func(name string) string {
		calls[name]++
		return name
	}, DefaultDelimiter)

	for _, name := range names {
		if calls[name] != 1 {
			t.Errorf("name(%q) called %d times, want 1", name, calls[name])
		}
	}
}

func ExampleBuild() {
	tree := Build([]string{"deploy", "frontend/build", "frontend/tests/unit"}, identity, DefaultDelimiter)
	for _, folder := range tree.Folders {
		fmt.Println(folder.Name, displayNames(folder))
	}
	fmt.Println("ungrouped:", tree.Ungrouped)
	// Output:
	// frontend [build tests/unit]
	// ungrouped: [deploy]
}
