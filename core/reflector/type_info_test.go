package reflector

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Name string
}

type generic[T any] struct{ v T }

const pkg = "github.com/codewandler/actr-go/core/reflector"

func TestTypeInfoOf(t *testing.T) {
	ti := TypeInfoOf(testStruct{Name: "test"})
	require.Equal(t, pkg+".testStruct", ti.Name)
	require.Equal(t, "testStruct", ti.Type.Name())
}

func TestTypeInfoOf_PointerUnwrapped(t *testing.T) {
	ti := TypeInfoOf(&testStruct{})
	require.Equal(t, pkg+".testStruct", ti.Name)
	require.NotEqual(t, reflect.Pointer, ti.Type.Kind())
}

func TestNameOf(t *testing.T) {
	require.Equal(t, "<nil>", NameOf(nil))
	require.Equal(t, "int", NameOf(42))
	require.Equal(t, "func()", NameOf(func() {}))
	require.Contains(t, NameOf(generic[int]{}), pkg+".generic[int]")
}

func TestTypeInfoForType_Nil(t *testing.T) {
	require.Equal(t, TypeInfo{}, TypeInfoForType(nil))
}

func TestTypeInfoOf_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = NameOf(testStruct{})
				_ = NameOf(&generic[string]{})
			}
		}()
	}
	wg.Wait()
}
