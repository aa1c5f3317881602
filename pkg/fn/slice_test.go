package fn

import (
	"reflect"
	"testing"
)

func TestMap(t *testing.T) {
	got := Map([]int{1, 2, 3}, func(n int) int { return n * n })
	if !reflect.DeepEqual(got, []int{1, 4, 9}) {
		t.Fatalf("map: %v", got)
	}
}

func TestFilter(t *testing.T) {
	got := Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 })
	if !reflect.DeepEqual(got, []int{2, 4}) {
		t.Fatalf("filter: %v", got)
	}
	if got := Filter([]int{1, 3}, func(n int) bool { return n%2 == 0 }); got != nil {
		t.Fatalf("no matches yields nil: %v", got)
	}
}

func TestGroupBy(t *testing.T) {
	got := GroupBy([]string{"ant", "bee", "ape"}, func(s string) byte { return s[0] })
	if len(got['a']) != 2 || len(got['b']) != 1 {
		t.Fatalf("group: %v", got)
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"b", "a", "b", "c", "a"})
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("unique must preserve first-seen order: %v", got)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	for i := 0; i < 5; i++ {
		if got := SortedKeys(m); !reflect.DeepEqual(got, []string{"alpha", "mid", "zeta"}) {
			t.Fatalf("sorted keys: %v", got)
		}
	}
}
