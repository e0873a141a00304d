package sparse

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBuilderBasic(t *testing.T) {
	b := NewBuilder(2, 3)
	b.Set(1, 2, 0.5)
	b.Set(0, 1, 1.5)
	b.Set(1, 0, 2.0)
	m := b.Build()

	r, c := m.Dims()
	if r != 2 || c != 3 {
		t.Fatalf("Dims = (%d, %d), want (2, 3)", r, c)
	}
	if m.NNZ() != 3 {
		t.Errorf("Expected 3 entries, got %d", m.NNZ())
	}

	want := mat.NewDense(2, 3, []float64{
		0, 1.5, 0,
		2.0, 0, 0.5,
	})
	if !mat.Equal(m, want) {
		t.Errorf("Matrix mismatch:\n got %v\nwant %v", mat.Formatted(m), mat.Formatted(want))
	}
}

func TestBuilderLastSetWins(t *testing.T) {
	b := NewBuilder(1, 2)
	b.Set(0, 1, 1)
	b.Set(0, 1, 3)
	m := b.Build()

	if m.NNZ() != 1 {
		t.Errorf("Duplicate coordinate should be stored once, got %d entries", m.NNZ())
	}
	if m.At(0, 1) != 3 {
		t.Errorf("Expected last value 3, got %f", m.At(0, 1))
	}
}

func TestGet(t *testing.T) {
	b := NewBuilder(2, 2)
	b.Set(0, 0, 4)
	m := b.Build()

	if v, ok := m.Get(0, 0); !ok || v != 4 {
		t.Errorf("Get(0,0) = %f, %v", v, ok)
	}
	if _, ok := m.Get(1, 1); ok {
		t.Error("Get(1,1) should report a missing entry")
	}
	if _, ok := m.Get(5, 0); ok {
		t.Error("Out of range Get should report a missing entry")
	}
}

func TestAtOutOfRangePanics(t *testing.T) {
	m := NewBuilder(1, 1).Build()

	defer func() {
		if recover() == nil {
			t.Error("At out of range should panic")
		}
	}()
	m.At(1, 0)
}

func TestSetOutOfRangePanics(t *testing.T) {
	b := NewBuilder(1, 1)

	defer func() {
		if recover() == nil {
			t.Error("Set out of range should panic")
		}
	}()
	b.Set(0, 1, 1)
}

func TestEmptyMatrix(t *testing.T) {
	m := NewBuilder(0, 0).Build()

	r, c := m.Dims()
	if r != 0 || c != 0 {
		t.Errorf("Expected 0x0, got %dx%d", r, c)
	}
	if m.NNZ() != 0 {
		t.Error("Empty matrix should have no entries")
	}

	calls := 0
	m.DoNonZero(func(i, j int, v float64) { calls++ })
	if calls != 0 {
		t.Error("DoNonZero on an empty matrix should not call fn")
	}
}

func TestDoNonZeroRowMajor(t *testing.T) {
	b := NewBuilder(3, 3)
	b.Set(2, 0, 1)
	b.Set(0, 2, 2)
	b.Set(0, 1, 3)
	m := b.Build()

	type coord struct{ i, j int }
	var got []coord
	m.DoNonZero(func(i, j int, v float64) {
		got = append(got, coord{i, j})
	})

	want := []coord{{0, 1}, {0, 2}, {2, 0}}
	if len(got) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(got))
	}
	for k := range want {
		if got[k] != want[k] {
			t.Errorf("Entry %d = %v, want %v", k, got[k], want[k])
		}
	}
}

func TestRowAndRowVector(t *testing.T) {
	b := NewBuilder(2, 4)
	b.Set(1, 3, 0.25)
	b.Set(1, 1, 0.75)
	m := b.Build()

	cols, vals := m.Row(1)
	if len(cols) != 2 || cols[0] != 1 || cols[1] != 3 {
		t.Errorf("Row columns = %v", cols)
	}
	if vals[0] != 0.75 || vals[1] != 0.25 {
		t.Errorf("Row values = %v", vals)
	}
	if m.RowNNZ(0) != 0 || m.RowNNZ(1) != 2 {
		t.Errorf("RowNNZ = %d, %d", m.RowNNZ(0), m.RowNNZ(1))
	}

	vec := m.RowVector(1)
	want := mat.NewVecDense(4, []float64{0, 0.75, 0, 0.25})
	if !mat.Equal(vec, want) {
		t.Errorf("RowVector = %v, want %v", mat.Formatted(vec.T()), mat.Formatted(want.T()))
	}
}

func TestTranspose(t *testing.T) {
	b := NewBuilder(2, 3)
	b.Set(0, 2, 7)
	m := b.Build()

	tr := m.T()
	r, c := tr.Dims()
	if r != 3 || c != 2 {
		t.Fatalf("Transpose dims = (%d, %d)", r, c)
	}
	if tr.At(2, 0) != 7 {
		t.Errorf("Transpose At(2,0) = %f", tr.At(2, 0))
	}
}

func TestGonumInterop(t *testing.T) {
	b := NewBuilder(2, 2)
	b.Set(0, 0, 1)
	b.Set(1, 1, 2)
	m := b.Build()

	var prod mat.Dense
	prod.Mul(m, m.T())

	want := mat.NewDense(2, 2, []float64{1, 0, 0, 4})
	if !mat.Equal(&prod, want) {
		t.Errorf("M*Mt = %v", mat.Formatted(&prod))
	}
}
