package all

import (
	"reflect"
	"testing"

	"listingetl/internal/storage"
)

func TestAllBackendsRegistered(t *testing.T) {
	want := []string{"mssql", "mysql", "postgres", "sqlite"}
	if got := storage.ListKinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ListKinds() = %v, want %v", got, want)
	}
}
