package lib

import (
	"testing"
)

func TestBiMap(t *testing.T) {
	var bm BiMap[int, string]

	if bm.Bind(12, "12") == false {
		t.Fatal("can't bind")
	}

	if b, _ := bm.GetB(12); b != "12" {
		t.Fatal("incorrect B")
	}

	if a, _ := bm.GetA("12"); a != 12 {
		t.Fatal("incorrect A")
	}

	// both sides are one-to-one
	if bm.Bind(12, "13") {
		t.Fatal("A is bound already")
	}
	if bm.Bind(13, "12") {
		t.Fatal("B is bound already")
	}
	if bm.Len() != 1 {
		t.Fatal("incorrect length")
	}

	la := bm.ListA()
	if len(la) != 1 || la[0] != 12 {
		t.Fatal("incorrect list A")
	}

	if b, found := bm.DeleteA(12); found == false || b != "12" {
		t.Fatal("must be deleted")
	}
	if _, found := bm.GetB(12); found {
		t.Fatal("found B after detele")
	}
	if _, found := bm.GetA("12"); found {
		t.Fatal("found A after delete")
	}

	bm.Bind(1, "1")
	if a, found := bm.DeleteB("1"); found == false || a != 1 {
		t.Fatal("must be deleted")
	}
	if _, found := bm.DeleteB("1"); found {
		t.Fatal("deleted twice")
	}

	bm.Bind(2, "2")
	bm.Reset()
	if bm.Len() != 0 {
		t.Fatal("must be empty after reset")
	}
}
